package estimator

import "strings"

// maxScore caps the opportunity total.
const maxScore = 10

// urgentMethods are sale methods that put buyers on a clock. Matched
// case-insensitively against the whole method field.
var urgentMethods = map[string]bool{
	"deadline sale": true,
	"tender":        true,
	"auction":       true,
}

// Breakdown itemizes an opportunity score. Raw is the uncapped sum of the
// three sub-scores; Capped is what gets exported.
type Breakdown struct {
	GapPoints       int `json:"gap_points"`       // 0-5
	UrgencyPoints   int `json:"urgency_points"`   // 0 or 3
	MotivatedPoints int `json:"motivated_points"` // 0 or 2
	Raw             int `json:"raw"`
	Capped          int `json:"capped"`
}

// ScoreOpportunity rates a listing 0-10 from its valuation gap and sale
// method. The sub-scores are additive and the total is capped after the
// sum, not per component.
func ScoreOpportunity(gapPercent *float64, saleMethod string) Breakdown {
	var b Breakdown

	if gapPercent != nil {
		switch gap := *gapPercent; {
		case gap > 20:
			b.GapPoints = 5
		case gap > 15:
			b.GapPoints = 4
		case gap > 10:
			b.GapPoints = 3
		case gap > 5:
			b.GapPoints = 2
		case gap > 0:
			b.GapPoints = 1
		}
	}

	method := strings.ToLower(strings.TrimSpace(saleMethod))
	if urgentMethods[method] {
		b.UrgencyPoints = 3
	}
	if strings.Contains(method, "negotiation") {
		b.MotivatedPoints = 2
	}

	b.Raw = b.GapPoints + b.UrgencyPoints + b.MotivatedPoints
	b.Capped = b.Raw
	if b.Capped > maxScore {
		b.Capped = maxScore
	}
	return b
}
