package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xuri/excelize/v2"
)

// Column headers of an uploaded catalog
const (
	ColCategory     = "Category"
	ColRValue       = "R-Value"
	ColNewCode      = "NewCode"
	ColOldCode      = "OldCode"
	ColPacksPerBale = "PacksPerBale"
	ColWidth        = "Width"
)

// ErrEmptyCatalog is returned when a file holds no usable products
var ErrEmptyCatalog = errors.New("catalog has no valid products")

// ParseCSV reads a catalog with a header row. Rows without a category, without any
// code, or without a positive PacksPerBale are dropped.
func ParseCSV(r io.Reader) ([]models.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRows(rows)
}

// ParseXLSX reads the first sheet of a workbook with the same columns as ParseCSV
func ParseXLSX(r io.Reader) ([]models.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return fromRows(rows)
}

// Parse picks the parser from the file name
func Parse(filename string, r io.Reader) ([]models.Product, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return ParseXLSX(r)
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"):
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported catalog file %q: use .csv or .xlsx", filename)
	}
}

func fromRows(rows [][]string) ([]models.Product, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyCatalog
	}
	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var products []models.Product
	for _, row := range rows[1:] {
		packs, _ := strconv.Atoi(get(row, ColPacksPerBale))
		p := models.Product{
			Category:     get(row, ColCategory),
			RValue:       get(row, ColRValue),
			NewCode:      get(row, ColNewCode),
			OldCode:      get(row, ColOldCode),
			PacksPerBale: packs,
			Width:        get(row, ColWidth),
		}
		if p.Category == "" || (p.NewCode == "" && p.OldCode == "") || p.PacksPerBale <= 0 {
			continue
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return products, nil
}
