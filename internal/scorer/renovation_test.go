package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/propscan/propscan-cli/internal/model"
)

func TestScoreRenovationKeyword(t *testing.T) {
	k := DefaultKeywords()
	l := &model.Listing{
		Address:      "12 Harold Holt Avenue, Flaxmere",
		Description:  "A solid do-up with great bones, bring your ideas.",
		PriceDisplay: "$420,000",
		SaleMethod:   "Fixed Price",
	}
	res := k.Score(l)
	assert.Equal(t, 3, res.Score)
	assert.Contains(t, res.Flags[0], "Renovation:")
}

func TestScoreStacksSignals(t *testing.T) {
	k := DefaultKeywords()
	l := &model.Listing{
		Address:     "8 Avondale Road, Taradale",
		Description: "1960s character home needing renovation, sale by deadline sale.",
		SaleMethod:  "Deadline Sale",
	}
	res := k.Score(l)
	// renovation(3) + negotiation keyword "deadline sale"(2) + older home
	// "1960s"(2) + urgent method(2) + no price(1) + decade "1960"(2) = 12.
	assert.Equal(t, 12, res.Score)
	assert.Len(t, res.Flags, 6)
}

func TestScoreOnlyFirstKeywordPerList(t *testing.T) {
	k := DefaultKeywords()
	l := &model.Listing{
		Description:  "renovator, do up, needs work, project",
		PriceDisplay: "$1",
	}
	res := k.Score(l)
	assert.Equal(t, 3, res.Score)
}

func TestScoreCleanListing(t *testing.T) {
	k := DefaultKeywords()
	l := &model.Listing{
		Address:      "4 Modern Way, Ahuriri",
		Description:  "Immaculate new build.",
		PriceDisplay: "$895,000",
		SaleMethod:   "Fixed Price",
	}
	res := k.Score(l)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Flags)
}
