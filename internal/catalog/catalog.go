// Package catalog parses and indexes the product catalog.
package catalog

import (
	"strconv"
	"strings"

	"github.com/xelth-com/loadboard/internal/models"
)

// Index looks products up by either code
type Index struct {
	byNew map[string]models.Product
	byOld map[string]models.Product
	all   []models.Product
}

// NewIndex builds an index. The first product wins when codes repeat.
func NewIndex(products []models.Product) *Index {
	idx := &Index{
		byNew: make(map[string]models.Product, len(products)),
		byOld: make(map[string]models.Product, len(products)),
		all:   append([]models.Product(nil), products...),
	}
	for _, p := range products {
		if p.NewCode != "" {
			if _, dup := idx.byNew[p.NewCode]; !dup {
				idx.byNew[p.NewCode] = p
			}
		}
		if p.OldCode != "" {
			if _, dup := idx.byOld[p.OldCode]; !dup {
				idx.byOld[p.OldCode] = p
			}
		}
	}
	return idx
}

// Lookup matches the new code, or the old code unless the code is a "40" series new code
func (i *Index) Lookup(code string) (models.Product, bool) {
	if i == nil {
		return models.Product{}, false
	}
	code = strings.TrimSpace(code)
	if p, ok := i.byNew[code]; ok {
		return p, true
	}
	if strings.HasPrefix(code, "40") {
		return models.Product{}, false
	}
	p, ok := i.byOld[code]
	return p, ok
}

// Known reports whether either code matches, ignoring the "40" rule
func (i *Index) Known(code string) bool {
	if i == nil {
		return false
	}
	_, n := i.byNew[code]
	_, o := i.byOld[code]
	return n || o
}

// Products returns the indexed products
func (i *Index) Products() []models.Product {
	if i == nil {
		return nil
	}
	return append([]models.Product(nil), i.all...)
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.all)
}

// FormatRValue renders "R2.5" for numeric R-values and nothing otherwise
func FormatRValue(rValue string) string {
	rValue = strings.TrimSpace(rValue)
	if rValue == "" || rValue == "N/A" {
		return ""
	}
	if _, err := strconv.ParseFloat(numericPrefix(rValue), 64); err != nil {
		return ""
	}
	return "R" + rValue
}

// numericPrefix keeps the leading number of values like "2.0HD"
func numericPrefix(s string) string {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	return s[:end]
}

// DisplayName is the product name used on lists, prints and exports
func DisplayName(line models.OrderLine, idx *Index) string {
	if p, ok := idx.Lookup(line.ProductCode); ok {
		name := strings.TrimSpace(p.Category + " " + p.RValue)
		if p.Width != "" {
			name += " (" + p.Width + ")"
		}
		return name
	}
	if md := line.ManualDetails; md != nil {
		name := md.Category
		if name == "" {
			name = string(md.Type)
		}
		if md.Description != "" {
			name += " - " + md.Description
		}
		return name
	}
	return "Unknown Product"
}
