package units

import (
	"errors"
	"testing"

	"github.com/xelth-com/loadboard/internal/models"
)

type mapCatalog map[string]models.Product

func (m mapCatalog) Lookup(code string) (models.Product, bool) {
	p, ok := m[code]
	return p, ok
}

func intPtr(v int) *int { return &v }

func testCatalog() mapCatalog {
	return mapCatalog{
		"2006093": {Category: "Wall", RValue: "2.0", NewCode: "2006093", PacksPerBale: 5},
		"4000001": {Category: "Board", NewCode: "4000001", PacksPerBale: 1},
		"2000000": {Category: "Broken", NewCode: "2000000", PacksPerBale: 0},
	}
}

func TestOutputFor_BalesExactMultiples(t *testing.T) {
	cat := testCatalog()
	line := models.OrderLine{ProductCode: "2006093"}

	for packs := 0; packs <= 100; packs += 5 {
		out, err := OutputFor(line, itoa(packs), cat)
		if err != nil {
			t.Fatalf("packs %d: unexpected error: %v", packs, err)
		}
		if out.Unit != Bales {
			t.Errorf("packs %d: unit = %s, want Bales", packs, out.Unit)
		}
		if out.Quantity != float64(packs/5) {
			t.Errorf("packs %d: quantity = %v, want %d", packs, out.Quantity, packs/5)
		}
	}
}

func TestOutputFor_FactorOneIsUnits(t *testing.T) {
	cat := testCatalog()
	line := models.OrderLine{ProductCode: "4000001"}

	for _, packs := range []int{0, 1, 7, 250} {
		out, err := OutputFor(line, itoa(packs), cat)
		if err != nil {
			t.Fatalf("packs %d: unexpected error: %v", packs, err)
		}
		if out.Unit != Units || out.Quantity != float64(packs) {
			t.Errorf("packs %d: got %s, want %d Units", packs, out, packs)
		}
	}
}

func TestOutputFor_FractionalBalesRoundToOneDecimal(t *testing.T) {
	out, err := OutputFor(models.OrderLine{ProductCode: "2006093"}, "7", testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Quantity != 1.4 {
		t.Errorf("quantity = %v, want 1.4", out.Quantity)
	}
	if out.String() != "1.4 Bales" {
		t.Errorf("String() = %q", out.String())
	}
}

func TestOutputFor_InvalidInput(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		name  string
		code  string
		packs string
	}{
		{"non-numeric", "2006093", "abc"},
		{"negative", "2006093", "-5"},
		{"decimal", "2006093", "2.5"},
		{"explicit sign", "2006093", "+5"},
		{"missing factor", "2000000", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputFor(models.OrderLine{ProductCode: tt.code}, tt.packs, cat)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestResolve_ManualDetails(t *testing.T) {
	tests := []struct {
		name   string
		md     *models.ManualDetails
		packs  string
		want   float64
		unit   Unit
		manual bool
	}{
		{"unknown type ignores factor", &models.ManualDetails{Type: models.ManualTypeUnknown, PacksPerBale: intPtr(4)}, "12", 12, Units, true},
		{"batt with factor", &models.ManualDetails{Type: models.ManualTypeBatt, PacksPerBale: intPtr(4)}, "12", 3, Bales, true},
		{"board without factor", &models.ManualDetails{Type: models.ManualTypeBoard}, "9", 9, Units, true},
		{"pallet counts as units", &models.ManualDetails{Type: models.ManualTypePallet}, "2", 2, Units, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := models.OrderLine{ProductCode: "1099999", ManualDetails: tt.md}
			out, err := OutputFor(line, tt.packs, testCatalog())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Quantity != tt.want || out.Unit != tt.unit {
				t.Errorf("got %s, want %v %s", out, tt.want, tt.unit)
			}
			if out.Unknown {
				t.Error("manual line must not be flagged unknown")
			}
		})
	}
}

func TestOutputFor_UnknownProductIsNotAnError(t *testing.T) {
	out, err := OutputFor(models.OrderLine{ProductCode: "1012345"}, "8", testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Quantity != 8 || out.Unit != Units {
		t.Errorf("got %s, want 8 Units", out)
	}
	if !out.Unknown {
		t.Error("expected line to be flagged unknown")
	}
}

func TestConversion_PacksForIsInverseOfOutput(t *testing.T) {
	conv := Conversion{Factor: 6, Unit: Bales}
	for u := -3; u <= 3; u++ {
		if got := conv.Output(conv.PacksFor(u)); got != float64(u) {
			t.Errorf("units %d: round trip gave %v", u, got)
		}
	}
}

func itoa(n int) string {
	return FormatQuantity(float64(n))
}
