package printer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/units"
)

// Options holds configuration for the printed load sheet
type Options struct {
	Scale  float64 `json:"scale"`  // print size control, 1.0 is normal
	Title  string  `json:"title"`  // optional page heading
	QRBase string  `json:"qrBase"` // prefix of the QR payload; the order id is appended
}

const (
	pageW, pageH = 210.0, 297.0
	margin       = 12.0
	minScale     = 0.6
	maxScale     = 1.6
)

// column widths in mm at scale 1: Product, Code, Old Code, Packs, Output
var colWidths = []float64{74, 30, 30, 20, 32}
var colHeaders = []string{"Product", "Code", "Old Code", "Packs", "Output"}

var sizeSpaces = regexp.MustCompile(`(?i)\s*M3`)

// FormatTrailerInfo renders "TYPE | SIZE M3" from the optional trailer fields
func FormatTrailerInfo(trailerType, trailerSize string) string {
	t := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(trailerType), "_", ""))

	s := strings.TrimSpace(sizeSpaces.ReplaceAllString(trailerSize, " M3"))
	if s != "" && !strings.HasSuffix(strings.ToUpper(s), "M3") {
		s += " M3"
	}

	switch {
	case t != "" && s != "":
		return t + " | " + s
	case t != "":
		return t
	default:
		return s
	}
}

// GenerateOrdersPDF lays out one block per order: header, trailer info, QR code and product table
func GenerateOrdersPDF(orders []models.Order, idx *catalog.Index, opts Options) ([]byte, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < minScale {
		scale = minScale
	}
	if scale > maxScale {
		scale = maxScale
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	if opts.Title != "" {
		pdf.SetFont("Arial", "B", 16*scale)
		pdf.CellFormat(0, 9*scale, opts.Title, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	rowH := 6 * scale
	qrSize := 22 * scale

	for i, order := range orders {
		needed := 26*scale + rowH*float64(len(order.Products)+1)
		if pdf.GetY()+needed > pageH-margin && pdf.GetY() > margin+1 {
			pdf.AddPage()
		}
		top := pdf.GetY()

		// QR code of the order id, top right of the block
		qrPng, err := qrcode.Encode(opts.QRBase+order.ID, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("qr for order %s: %w", order.ID, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))
		pdf.ImageOptions(imgName, pageW-margin-qrSize, top, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetFont("Arial", "B", 14*scale)
		pdf.CellFormat(0, 8*scale, order.Destination+" - "+order.Time, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10*scale)
		if sub := headerDetails(order); sub != "" {
			pdf.CellFormat(0, 5*scale, sub, "", 1, "L", false, 0, "")
		}
		if trailer := FormatTrailerInfo(order.TrailerType, order.TrailerSize); trailer != "" {
			pdf.CellFormat(0, 5*scale, "Trailer: "+trailer, "", 1, "L", false, 0, "")
		}
		if y := top + qrSize + 2; pdf.GetY() < y {
			pdf.SetY(y)
		}

		drawTable(pdf, order, idx, scale, rowH)

		if i < len(orders)-1 {
			pdf.Ln(3 * scale)
			y := pdf.GetY()
			pdf.Line(margin, y, pageW-margin, y)
			pdf.Ln(4 * scale)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerDetails(order models.Order) string {
	var parts []string
	if order.ManifestNumber != "" {
		parts = append(parts, "Manifest: "+order.ManifestNumber)
	}
	if order.TransportCompany != "" {
		parts = append(parts, "Transport: "+order.TransportCompany)
	}
	return strings.Join(parts, ", ")
}

func drawTable(pdf *gofpdf.Fpdf, order models.Order, idx *catalog.Index, scale, rowH float64) {
	widths := make([]float64, len(colWidths))
	for i, w := range colWidths {
		widths[i] = w * scale
		if scale > 1 {
			// columns stretch only until the page width is used up
			widths[i] = w * (pageW - 2*margin) / sum(colWidths)
		}
	}

	pdf.SetFont("Arial", "B", 9*scale)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range colHeaders {
		pdf.CellFormat(widths[i], rowH, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	for _, line := range order.Products {
		if pdf.GetY()+rowH > pageH-margin {
			pdf.AddPage()
		}
		oldCode := ""
		if p, ok := idx.Lookup(line.ProductCode); ok {
			oldCode = p.OldCode
		}
		output := "-"
		if out, err := units.OutputFor(line, line.PacksOrdered, idx); err == nil {
			output = out.String()
		}

		pdf.SetFont("Arial", "", 9*scale)
		pdf.CellFormat(widths[0], rowH, fit(pdf, catalog.DisplayName(line, idx), widths[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowH, line.ProductCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowH, oldCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], rowH, line.PacksOrdered, "1", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "B", 9*scale)
		pdf.CellFormat(widths[4], rowH, output, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
}

// fit trims text with an ellipsis until it fits into width
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	r := []rune(text)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
