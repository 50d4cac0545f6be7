package estimator

import (
	"math"

	"go.uber.org/zap"

	"github.com/propscan/propscan-cli/internal/model"
)

// Mapper accumulates bracket appearances per listing and turns them into
// price-range estimates. The estimate is deliberately the widest envelope
// over every observed bracket, not a narrowest intersection: lower
// precision, but a bracket the listing genuinely appeared in is never
// excluded, so a real opportunity cannot be hidden by a false narrowing.
type Mapper struct {
	appearances map[string]map[Bracket]struct{}
}

// NewMapper creates an empty Mapper.
func NewMapper() *Mapper {
	return &Mapper{appearances: make(map[string]map[Bracket]struct{})}
}

// RecordAppearance notes that a listing was returned when the price filter
// spanned [lo, hi). Duplicate calls are no-ops.
func (m *Mapper) RecordAppearance(listingID string, lo, hi int) {
	set, ok := m.appearances[listingID]
	if !ok {
		set = make(map[Bracket]struct{})
		m.appearances[listingID] = set
	}
	set[Bracket{Lo: lo, Hi: hi}] = struct{}{}
}

// Appearances returns the number of distinct brackets recorded for a listing.
func (m *Mapper) Appearances(listingID string) int {
	return len(m.appearances[listingID])
}

// Estimate computes a price range for the listing from its recorded
// appearances. It returns nil when the listing already shows an explicit
// price (an explicit price always wins) or when nothing was recorded.
// The result is recomputed from current state on every call.
func (m *Mapper) Estimate(l *model.Listing) *model.PriceRange {
	if l.HasExplicitPrice() {
		return nil
	}
	set := m.appearances[l.ID]
	if len(set) == 0 {
		return nil
	}

	first := true
	var min, max int
	for b := range set {
		if first {
			min, max = b.Lo, b.Hi
			first = false
			continue
		}
		if b.Lo < min {
			min = b.Lo
		}
		if b.Hi > max {
			max = b.Hi
		}
	}

	r := &model.PriceRange{Min: min, Max: max, Midpoint: float64(min+max) / 2}
	zap.L().Debug("estimated price range",
		zap.String("listing", l.ID),
		zap.Int("min", r.Min),
		zap.Int("max", r.Max),
		zap.Float64("midpoint", r.Midpoint),
	)
	return r
}

// GapPercent returns the signed valuation gap: (cv - asking) / cv * 100.
// Positive means the asking price undercuts the valuation. Nil unless both
// inputs are positive finite numbers.
func GapPercent(capitalValue, asking float64) *float64 {
	if capitalValue <= 0 || asking <= 0 {
		return nil
	}
	if math.IsInf(capitalValue, 0) || math.IsNaN(capitalValue) ||
		math.IsInf(asking, 0) || math.IsNaN(asking) {
		return nil
	}
	gap := (capitalValue - asking) / capitalValue * 100
	return &gap
}
