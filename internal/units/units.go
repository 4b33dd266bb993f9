// Package units converts between packs ordered and the units a loader counts.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xelth-com/loadboard/internal/models"
)

// ErrInvalidInput marks malformed pack counts or packaging factors
var ErrInvalidInput = errors.New("invalid input")

// Unit is the display unit for a converted quantity
type Unit string

const (
	Bales Unit = "Bales"
	Units Unit = "Units"
)

// Catalog resolves product codes to catalog entries
type Catalog interface {
	Lookup(code string) (models.Product, bool)
}

// Conversion is the packaging factor and unit that apply to one order line
type Conversion struct {
	Factor  int
	Unit    Unit
	Manual  bool // resolved from manual details
	Unknown bool // neither catalog nor manual details; shown as "Unknown Product"
}

// Output is a converted quantity ready for display
type Output struct {
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
	Unknown  bool    `json:"unknown,omitempty"`
}

func (o Output) String() string {
	return FormatQuantity(o.Quantity) + " " + string(o.Unit)
}

// Resolve picks the conversion for a line: catalog first, then manual details, then 1:1 units.
// Pallet lines without a packaging factor count as Units.
func Resolve(line models.OrderLine, catalog Catalog) (Conversion, error) {
	if catalog != nil {
		if p, ok := catalog.Lookup(line.ProductCode); ok {
			if p.PacksPerBale < 1 {
				return Conversion{}, fmt.Errorf("%w: product %s has packaging factor %d", ErrInvalidInput, line.ProductCode, p.PacksPerBale)
			}
			unit := Units
			if p.PacksPerBale > 1 {
				unit = Bales
			}
			return Conversion{Factor: p.PacksPerBale, Unit: unit}, nil
		}
	}

	if md := line.ManualDetails; md != nil {
		switch {
		case md.Type == models.ManualTypeUnknown:
			// extraction cannot infer physical packaging, always count packs
			return Conversion{Factor: 1, Unit: Units, Manual: true}, nil
		case md.PacksPerBale != nil:
			if *md.PacksPerBale < 1 {
				return Conversion{}, fmt.Errorf("%w: manual packaging factor %d for %s", ErrInvalidInput, *md.PacksPerBale, line.ProductCode)
			}
			return Conversion{Factor: *md.PacksPerBale, Unit: Bales, Manual: true}, nil
		default:
			return Conversion{Factor: 1, Unit: Units, Manual: true}, nil
		}
	}

	return Conversion{Factor: 1, Unit: Units, Unknown: true}, nil
}

// Output converts a pack count into this conversion's unit
func (c Conversion) Output(packs int) float64 {
	factor := c.Factor
	if factor < 1 {
		factor = 1
	}
	if packs%factor == 0 {
		return float64(packs / factor)
	}
	return math.Round(float64(packs)/float64(factor)*10) / 10
}

// PacksFor converts a signed unit count back into packs
func (c Conversion) PacksFor(units int) int {
	factor := c.Factor
	if factor < 1 {
		factor = 1
	}
	return units * factor
}

// OutputFor converts the packs of a line into its display quantity
func OutputFor(line models.OrderLine, packs string, catalog Catalog) (Output, error) {
	conv, err := Resolve(line, catalog)
	if err != nil {
		return Output{}, err
	}
	n, err := ParsePacks(packs)
	if err != nil {
		return Output{}, err
	}
	return Output{Quantity: conv.Output(n), Unit: conv.Unit, Unknown: conv.Unknown}, nil
}

// ParsePacks parses a string-encoded pack count: plain digits only, zero allowed.
func ParsePacks(packs string) (int, error) {
	trimmed := strings.TrimSpace(packs)
	if strings.HasPrefix(trimmed, "+") {
		return 0, fmt.Errorf("%w: packs %q is not a whole number", ErrInvalidInput, packs)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: packs %q is not a whole number", ErrInvalidInput, packs)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: packs %d is negative", ErrInvalidInput, n)
	}
	return n, nil
}

// FormatQuantity renders whole numbers without decimals and others with one decimal place
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return strconv.FormatFloat(q, 'f', 1, 64)
}
