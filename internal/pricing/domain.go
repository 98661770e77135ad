package pricing

import (
	"strings"

	"golang.org/x/text/cases"
)

// PricePoint is one observed price for a resource.
type PricePoint struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// TrendEntry is the append-only price history of a resource. Entries are
// keyed by resource code, description and unit, matched case-insensitively.
type TrendEntry struct {
	ResourceCode string       `json:"resource_code"`
	Description  string       `json:"item_description"`
	Unit         string       `json:"unit"`
	PriceHistory []PricePoint `json:"price_history"`
}

// LatestPoint returns the most recently appended observation, or false
// when the history is empty.
func (t TrendEntry) LatestPoint() (PricePoint, bool) {
	if len(t.PriceHistory) == 0 {
		return PricePoint{}, false
	}
	return t.PriceHistory[len(t.PriceHistory)-1], true
}

// LatestPrice returns the most recently appended price, or 0 with false
// when the history is empty.
func (t TrendEntry) LatestPrice() (float64, bool) {
	point, ok := t.LatestPoint()
	return point.Price, ok
}

var fold = cases.Fold()

// trendKey builds the case-folded map key a trend entry lives under.
func trendKey(code, description, unit string) string {
	return strings.Join([]string{fold.String(code), fold.String(description), fold.String(unit)}, "|")
}
