package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC))
	if got != "orders_2026-03-09.xlsx" {
		t.Errorf("FileName = %q", got)
	}
}

func TestOrdersXLSX_Layout(t *testing.T) {
	idx := catalog.NewIndex([]models.Product{
		{Category: "Wall", RValue: "2.0", NewCode: "2006093", OldCode: "901217", PacksPerBale: 5, Width: "430"},
	})
	orders := []models.Order{
		{Destination: "BANYO", Time: "07:30", ManifestNumber: "M-1", Products: []models.OrderLine{
			{ProductCode: "2006093", PacksOrdered: "12"},
			{ProductCode: "2006093", PacksOrdered: "10"},
		}},
		{Destination: "MOONAH", Time: "05:00", Products: []models.OrderLine{
			{ProductCode: "555", PacksOrdered: "4"},
		}},
	}

	data, err := OrdersXLSX(orders, idx)
	if err != nil {
		t.Fatalf("OrdersXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	if rows[0][0] != "Destination" || rows[0][8] != "Output" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "BANYO" || rows[1][2] != "M-1" || rows[1][6] != "901217" || rows[1][8] != "2.4 Bales" {
		t.Errorf("first line = %v", rows[1])
	}
	if rows[2][0] != "" || rows[2][8] != "2 Bales" {
		t.Errorf("second line should omit order fields, got %v", rows[2])
	}
	if len(rows[3]) != 0 {
		t.Errorf("expected blank separator, got %v", rows[3])
	}
	if rows[4][0] != "MOONAH" || rows[4][4] != "Unknown Product" || rows[4][8] != "4 Units" {
		t.Errorf("unknown line = %v", rows[4])
	}

	w, _ := f.GetColWidth(SheetName, "E")
	if w != 30 {
		t.Errorf("product column width = %v", w)
	}
}
