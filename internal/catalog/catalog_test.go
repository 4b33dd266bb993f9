package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Category,R-Value,NewCode,OldCode,PacksPerBale,Width
Wall,2.0,2006093,901217,5,430
Ceiling,2.5,,901254,6,580
,2.5,2006099,901255,6,580
Wall,2.0,2006094,901218,0,580
Board,N/A,4001111,900999,1,
`

func TestParseCSV_FiltersInvalidRows(t *testing.T) {
	products, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d products, want 3: %+v", len(products), products)
	}
	if products[0].NewCode != "2006093" || products[0].PacksPerBale != 5 || products[0].Width != "430" {
		t.Errorf("first product = %+v", products[0])
	}
	if products[1].NewCode != "" || products[1].OldCode != "901254" {
		t.Errorf("old-code-only product = %+v", products[1])
	}
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Category,NewCode\n"))
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Category", "R-Value", "NewCode", "OldCode", "PacksPerBale", "Width"},
		{"Wall", "2.0", "2006093", "901217", 5, "430"},
		{"Ceiling", "2.5", "2006098", "901254", 6, "430"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	products, err := Parse("catalog.XLSX", &buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(products) != 2 || products[1].PacksPerBale != 6 {
		t.Errorf("products = %+v", products)
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse("catalog.pdf", strings.NewReader("")); err == nil {
		t.Error("expected an error for .pdf")
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := NewIndex([]models.Product{
		{Category: "Wall", NewCode: "2006093", OldCode: "901217", PacksPerBale: 5},
		{Category: "Wall HD", NewCode: "4006279", OldCode: "4000001", PacksPerBale: 6},
	})

	tests := []struct {
		code string
		want string
		ok   bool
	}{
		{"2006093", "Wall", true},
		{"901217", "Wall", true},
		{" 2006093 ", "Wall", true},
		{"4006279", "Wall HD", true},
		{"4000001", "", false}, // "40" codes never match an old code
		{"999", "", false},
	}
	for _, tt := range tests {
		p, ok := idx.Lookup(tt.code)
		if ok != tt.ok || p.Category != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.code, p.Category, ok, tt.want, tt.ok)
		}
	}

	var nilIdx *Index
	if _, ok := nilIdx.Lookup("2006093"); ok {
		t.Error("nil index should find nothing")
	}
}

func TestFormatRValue(t *testing.T) {
	tests := map[string]string{
		"2.0":   "R2.0",
		"2.0HD": "R2.0HD",
		"N/A":   "",
		"":      "",
		"HD":    "",
	}
	for in, want := range tests {
		if got := FormatRValue(in); got != want {
			t.Errorf("FormatRValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	idx := NewIndex(Default())
	if got := DisplayName(models.OrderLine{ProductCode: "2006093"}, idx); got != "Wall 2.0 (430)" {
		t.Errorf("catalog name = %q", got)
	}
	manual := models.OrderLine{ProductCode: "1000", ManualDetails: &models.ManualDetails{Type: models.ManualTypeBoard, Description: "PIR 50mm"}}
	if got := DisplayName(manual, idx); got != "Board - PIR 50mm" {
		t.Errorf("manual name = %q", got)
	}
	if got := DisplayName(models.OrderLine{ProductCode: "1000"}, idx); got != "Unknown Product" {
		t.Errorf("unknown name = %q", got)
	}
}
