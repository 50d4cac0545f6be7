// Package scorer rates listings on renovation potential from their listing
// text. This is a coarse keyword screen over the scraped description; the
// valuation-gap opportunity score lives in the estimator and the two are
// reported side by side, never combined.
package scorer

import (
	"fmt"
	"strings"

	"github.com/propscan/propscan-cli/internal/model"
)

// Keywords holds the phrase lists the screen matches against. Injected so
// the lists can be tuned per deployment.
type Keywords struct {
	Renovation  []string
	Negotiation []string
	OlderHome   []string
	Decades     []string
}

// DefaultKeywords returns the stock phrase lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Renovation: []string{
			"renovator", "do-up", "doer upper", "fixer upper", "handyman",
			"tlc", "potential", "original condition", "add value",
			"cosmetic update", "blank canvas", "renovation", "update needed",
			"needs work", "needs some work", "needs love", "needs attention",
			"project", "investment opportunity", "bring your ideas", "do up",
		},
		Negotiation: []string{
			"deadline sale", "tender", "price by negotiation", "offers over",
			"by negotiation", "negotiation", "auction", "offers", "sale by tender",
			"deadline",
		},
		OlderHome: []string{
			"1950s", "1960s", "1970s", "1930s", "1940s", "character home",
			"original features", "vintage", "retro", "classic",
		},
		Decades: []string{"1950", "1960", "1970"},
	}
}

// Point values per signal. Only the first hit in each keyword list counts.
const (
	renovationPoints  = 3
	negotiationPoints = 2
	olderHomePoints   = 2
	urgentSalePoints  = 2
	noPricePoints     = 1
	decadePoints      = 2
)

// Result carries the renovation score and the human-readable flags that
// explain it.
type Result struct {
	Score int
	Flags []string
}

// Score screens a listing's address and description for renovation signals.
func (k Keywords) Score(l *model.Listing) Result {
	var res Result
	text := strings.ToLower(l.Address + " " + l.Description)

	if kw := firstMatch(text, k.Renovation); kw != "" {
		res.Score += renovationPoints
		res.Flags = append(res.Flags, "Renovation: "+kw)
	}
	if kw := firstMatch(text, k.Negotiation); kw != "" {
		res.Score += negotiationPoints
		res.Flags = append(res.Flags, "Negotiation: "+kw)
	}
	if kw := firstMatch(text, k.OlderHome); kw != "" {
		res.Score += olderHomePoints
		res.Flags = append(res.Flags, "Older home: "+kw)
	}

	method := strings.ToLower(l.SaleMethod)
	for _, urgent := range []string{"deadline", "tender", "auction"} {
		if strings.Contains(method, urgent) {
			res.Score += urgentSalePoints
			res.Flags = append(res.Flags, fmt.Sprintf("Urgent sale: %s", l.SaleMethod))
			break
		}
	}

	if l.PriceDisplay == "" {
		res.Score += noPricePoints
		res.Flags = append(res.Flags, "No price listed")
	}

	if firstMatch(text, k.Decades) != "" {
		res.Score += decadePoints
		res.Flags = append(res.Flags, "Likely older home")
	}

	return res
}

func firstMatch(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}
