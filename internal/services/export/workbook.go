// Package export writes orders to spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/units"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Orders"

var headers = []string{
	"Destination", "Time", "Manifest Number", "Transport Company",
	"Product", "Code", "Old Code", "Packs", "Output",
}

var widths = []float64{20, 10, 15, 20, 30, 15, 15, 10, 15}

// FileName is the download name for an export made at t
func FileName(t time.Time) string {
	return "orders_" + t.Format("2006-01-02") + ".xlsx"
}

// OrdersWorkbook builds the export sheet. Order header fields appear on the first line only
// and a blank row separates orders.
func OrdersWorkbook(orders []models.Order, idx *catalog.Index) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "I1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, order := range orders {
		for i, line := range order.Products {
			values := make([]interface{}, len(headers))
			if i == 0 {
				values[0] = order.Destination
				values[1] = order.Time
				values[2] = order.ManifestNumber
				values[3] = order.TransportCompany
			}
			values[4] = catalog.DisplayName(line, idx)
			values[5] = line.ProductCode
			if p, ok := idx.Lookup(line.ProductCode); ok {
				values[6] = p.OldCode
			}
			values[7] = line.PacksOrdered

			out, err := units.OutputFor(line, line.PacksOrdered, idx)
			if err == nil {
				values[8] = out.String()
			}

			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return nil, err
			}
			if values[8] != nil {
				out := fmt.Sprintf("I%d", row)
				if err := f.SetCellStyle(SheetName, out, out, bold); err != nil {
					return nil, err
				}
			}
			row++
		}
		row++ // blank separator
	}

	return f, nil
}

// OrdersXLSX renders OrdersWorkbook to bytes
func OrdersXLSX(orders []models.Order, idx *catalog.Index) ([]byte, error) {
	f, err := OrdersWorkbook(orders, idx)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
