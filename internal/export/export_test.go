package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscan/propscan-cli/internal/model"
)

const sampleCSV = `url,address,price,sale_method,bedrooms,bathrooms,land_area,property_type,description
https://x/1,"12 Oliphant Road, Hastings","$575,000",Deadline Sale,3 beds,1,649 m²,House,Solid home in need of renovation
https://x/2,"8 Marine Parade, Napier",Price by Negotiation,Negotiation,,,,Apartment,
`

func TestReadListings(t *testing.T) {
	listings, err := ReadListings(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	l := listings[0]
	assert.Equal(t, "https://x/1", l.ID)
	assert.Equal(t, "12 Oliphant Road, Hastings", l.Address)
	assert.Equal(t, "$575,000", l.PriceDisplay)
	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 3, *l.Bedrooms)
	require.NotNil(t, l.LandArea)
	assert.Equal(t, 649, *l.LandArea)

	assert.Nil(t, listings[1].Bedrooms)
	assert.Nil(t, listings[1].LandArea)
}

func TestReadListingsBadRow(t *testing.T) {
	_, err := ReadListings(strings.NewReader("url,address\nhttps://x/1\n"))
	assert.Error(t, err)
}

func TestReadAppearances(t *testing.T) {
	in := "url,bracket_min,bracket_max\nhttps://x/1,500000,550000\nhttps://x/1,550000,600000\n"
	apps, err := ReadAppearances(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, Appearance{ListingID: "https://x/1", Lo: 500000, Hi: 550000}, apps[0])
}

func matchedListing() *model.Listing {
	cv := 650_000
	gap := 11.5
	return &model.Listing{
		Address:          "12 Oliphant Road, Hastings",
		Suburb:           "hastings",
		PriceDisplay:     "$575,000",
		SaleMethod:       "Deadline Sale",
		URL:              "https://x/1",
		OpportunityScore: 6,
		RenovationScore:  3,
		RenovationFlags:  []string{"Renovation keyword: renovation"},
		Valuation: &model.Valuation{
			TACode:       62,
			CapitalValue: &cv,
			GapPercent:   &gap,
			MatchTier:    "exact",
		},
	}
}

func TestWriteRanked(t *testing.T) {
	var buf bytes.Buffer
	unmatched := &model.Listing{Address: "1 Nowhere Lane", PriceDisplay: "Auction"}
	require.NoError(t, WriteRanked(&buf, []*model.Listing{matchedListing(), unmatched}))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "address,"))
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[1], "650000")
	assert.Contains(t, lines[1], "11.5")
	assert.Contains(t, lines[2], "no")
	assert.Contains(t, lines[2], "Unknown")
}

func TestRenderTop(t *testing.T) {
	var buf bytes.Buffer
	RenderTop(&buf, []*model.Listing{matchedListing()}, 5)

	out := buf.String()
	assert.Contains(t, out, "12 Oliphant Road, Hastings")
	assert.Contains(t, out, "$650000")
	assert.Contains(t, out, "11.5")
}
