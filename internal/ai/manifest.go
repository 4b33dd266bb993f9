package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/timeorder"
	"github.com/xelth-com/loadboard/internal/units"
	"github.com/xelth-com/loadboard/internal/utils"
)

var (
	ErrNoJSON        = errors.New("no JSON object in model response")
	ErrNoDestination = errors.New("manifest has no destination")
	ErrNoProducts    = errors.New("no products found in manifest")
)

// FallbackTime is used when the manifest carries no readable time
const FallbackTime = "00:00"

var (
	productPrefixes = []string{"10", "20", "40"}
	parenthesized   = regexp.MustCompile(`\(([^)]+)\)`)
)

// KnownCodes reports whether a code exists in the catalog under either code
type KnownCodes interface {
	Known(code string) bool
}

// flexString accepts both JSON strings and numbers
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type rawManifest struct {
	Destination      flexString `json:"destination"`
	ManifestNumber   flexString `json:"manifestNumber"`
	TransportCompany flexString `json:"transportCompany"`
	TrailerType      flexString `json:"trailerType"`
	TrailerSize      flexString `json:"trailerSize"`
	Time             flexString `json:"time"`
	Products         []struct {
		ProductCode  flexString `json:"productCode"`
		PacksOrdered flexString `json:"packsOrdered"`
		Description  string     `json:"description"`
	} `json:"products"`
}

// ParseManifest turns model output into an unsaved order draft
func ParseManifest(text string, catalog KnownCodes) (*models.Order, error) {
	body := utils.ExtractJSONObject(text)
	if body == "" {
		return nil, ErrNoJSON
	}

	var raw rawManifest
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	dest := NormalizeDestination(string(raw.Destination))
	if dest == "" {
		return nil, ErrNoDestination
	}

	order := &models.Order{
		Destination:      dest,
		Time:             normalizeTime(string(raw.Time)),
		ManifestNumber:   strings.TrimSpace(string(raw.ManifestNumber)),
		TransportCompany: strings.TrimSpace(string(raw.TransportCompany)),
		TrailerType:      strings.TrimSpace(string(raw.TrailerType)),
		TrailerSize:      strings.TrimSpace(string(raw.TrailerSize)),
	}

	for _, p := range raw.Products {
		code := strings.TrimSpace(string(p.ProductCode))
		packs := strings.TrimSpace(string(p.PacksOrdered))
		if code == "" || packs == "" {
			continue
		}
		if !hasProductPrefix(code) {
			log.Printf("⚠️ Manifest: skipping product with invalid code format: %s", code)
			continue
		}
		if _, err := units.ParsePacks(packs); err != nil {
			log.Printf("⚠️ Manifest: skipping %s: %v", code, err)
			continue
		}

		line := models.OrderLine{ProductCode: code, PacksOrdered: packs}
		if catalog == nil || !catalog.Known(code) {
			log.Printf("⚠️ Manifest: unknown product code %s", code)
			line.ManualDetails = unknownDetails(p.Description)
		}
		order.Products = append(order.Products, line)
	}

	if len(order.Products) == 0 {
		return nil, ErrNoProducts
	}
	return order, nil
}

// NormalizeDestination upper-cases the destination and snaps it to a known depot it mentions
func NormalizeDestination(dest string) string {
	clean := strings.ToUpper(strings.TrimSpace(dest))
	for _, depot := range KnownDepots {
		if strings.Contains(clean, depot) {
			return depot
		}
	}
	return clean
}

func normalizeTime(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return FallbackTime
	}
	if !timeorder.Valid(t) {
		log.Printf("⚠️ Manifest: invalid time %q, using %s", t, FallbackTime)
		return FallbackTime
	}
	return t
}

func hasProductPrefix(code string) bool {
	for _, prefix := range productPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

func unknownDetails(description string) *models.ManualDetails {
	if strings.TrimSpace(description) == "" {
		description = "Unknown product"
	}
	secondary := ""
	if m := parenthesized.FindStringSubmatch(description); m != nil {
		secondary = strings.TrimSpace(m[1])
	}
	one := 1
	return &models.ManualDetails{
		Type:          models.ManualTypeUnknown,
		Category:      "Unknown Product",
		Description:   description,
		SecondaryCode: secondary,
		PacksPerBale:  &one,
	}
}
