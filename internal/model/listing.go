package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Listing represents a single scraped property listing. Identity is the
// listing URL (or another opaque id from the source site). The matcher and
// estimator attach their derived blocks in place; a listing is never deleted,
// only exported once all passes have run.
type Listing struct {
	ID           string `json:"id" csv:"id"`
	Address      string `json:"address" csv:"address"`
	Suburb       string `json:"suburb" csv:"suburb"`
	PriceDisplay string `json:"price_display" csv:"price"`
	SaleMethod   string `json:"sale_method" csv:"sale_method"`
	PropertyType string `json:"property_type" csv:"property_type"`
	URL          string `json:"url" csv:"url"`
	Description  string `json:"description,omitempty" csv:"description"`

	Bedrooms  *int `json:"bedrooms,omitempty" csv:"bedrooms"`
	Bathrooms *int `json:"bathrooms,omitempty" csv:"bathrooms"`
	LandArea  *int `json:"land_area,omitempty" csv:"land_area"` // m²

	// Attached by the estimator when no explicit price is shown.
	EstimatedPrice *PriceRange `json:"estimated_price,omitempty" csv:"-"`

	// Attached by the matcher on a successful valuation lookup.
	Valuation *Valuation `json:"valuation,omitempty" csv:"-"`

	// Scoring outputs. OpportunityScore is the capped 0-10 total.
	RenovationScore  int      `json:"renovation_score" csv:"renovation_score"`
	RenovationFlags  []string `json:"renovation_flags,omitempty" csv:"-"`
	OpportunityScore int      `json:"opportunity_score" csv:"opportunity_score"`
}

// PriceRange is a price interval inferred from bracket appearances.
type PriceRange struct {
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Midpoint float64 `json:"midpoint"`
}

// Valuation holds the fields copied off a matched ValuationRecord plus the
// computed gap against the asking (or estimated midpoint) price.
type Valuation struct {
	TACode          int      `json:"ta_code"`
	CapitalValue    *int     `json:"capital_value,omitempty"`
	LandValue       *int     `json:"land_value,omitempty"`
	ImprovementsVal *int     `json:"improvements_value,omitempty"`
	LandAreaM2      *float64 `json:"land_area_m2,omitempty"`
	Condition       string   `json:"condition,omitempty"`
	AgeIndicator    string   `json:"age_indicator,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	FloorArea       *float64 `json:"floor_area,omitempty"`
	GapPercent      *float64 `json:"gap_percent,omitempty"`

	// MatchTier records which search tier produced the match ("exact",
	// "street", "cross_ta"). MatchConfidence is a string-similarity
	// diagnostic between the queried street and the matched record; it
	// plays no part in candidate selection.
	MatchTier       string  `json:"match_tier,omitempty"`
	MatchConfidence float64 `json:"match_confidence,omitempty"`
}

// HasExplicitPrice reports whether the display price carries an actual
// number (e.g. "$485,000") as opposed to a sale method ("Deadline Sale").
func (l *Listing) HasExplicitPrice() bool {
	return strings.Contains(l.PriceDisplay, "$") && strings.ContainsAny(l.PriceDisplay, "0123456789")
}

// AskingPrice returns the explicit price if present, else the estimated
// midpoint, else nil.
func (l *Listing) AskingPrice() *float64 {
	if p := ParsePrice(l.PriceDisplay); p != nil {
		return p
	}
	if l.EstimatedPrice != nil {
		mid := l.EstimatedPrice.Midpoint
		return &mid
	}
	return nil
}

// EstimatedRange formats the estimated price interval for export, or
// "Unknown" when no estimate was made.
func (l *Listing) EstimatedRange() string {
	if l.EstimatedPrice == nil {
		return "Unknown"
	}
	return fmt.Sprintf("$%d-$%d", l.EstimatedPrice.Min, l.EstimatedPrice.Max)
}

var priceNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParsePrice extracts the first numeric amount from a display price string.
// Returns nil when the string holds no number.
func ParsePrice(display string) *float64 {
	if display == "" {
		return nil
	}
	clean := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(display, "$", ""), ",", ""))
	m := priceNumber.FindString(clean)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseIntField pulls the digits out of a loosely formatted field ("649 m²",
// "3 beds"). Returns nil for empty or digit-free input.
func ParseIntField(raw string) *int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return nil
	}
	return &v
}
