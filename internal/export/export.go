// Package export reads listing CSVs and writes the ranked opportunity
// report, as CSV for downstream analysis and as a console table for a
// quick scan.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/propscan/propscan-cli/internal/model"
)

// listingRow mirrors the scraper's CSV layout. Numeric columns arrive as
// loose strings ("649 m²", "3 beds") and are parsed after decoding.
type listingRow struct {
	URL          string `csv:"url"`
	Address      string `csv:"address"`
	Price        string `csv:"price"`
	SaleMethod   string `csv:"sale_method"`
	Bedrooms     string `csv:"bedrooms"`
	Bathrooms    string `csv:"bathrooms"`
	LandArea     string `csv:"land_area"`
	PropertyType string `csv:"property_type"`
	Description  string `csv:"description"`
}

// ReadListings decodes a scraper CSV into listings. The listing URL doubles
// as the id. Unknown columns are ignored; missing optional columns decode
// as empty strings.
func ReadListings(r io.Reader) ([]*model.Listing, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "export: read listings header")
	}
	var listings []*model.Listing
	for {
		var row listingRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "export: decode listing row")
		}
		listings = append(listings, &model.Listing{
			ID:           row.URL,
			Address:      row.Address,
			PriceDisplay: row.Price,
			SaleMethod:   row.SaleMethod,
			PropertyType: row.PropertyType,
			URL:          row.URL,
			Description:  row.Description,
			Bedrooms:     model.ParseIntField(row.Bedrooms),
			Bathrooms:    model.ParseIntField(row.Bathrooms),
			LandArea:     model.ParseIntField(row.LandArea),
		})
	}
	return listings, nil
}

// appearanceRow is one bracket-sighting record from a bracket-sweep CSV.
type appearanceRow struct {
	URL        string `csv:"url"`
	BracketMin int    `csv:"bracket_min"`
	BracketMax int    `csv:"bracket_max"`
}

// Appearance is a listing sighting inside one search bracket.
type Appearance struct {
	ListingID string
	Lo        int
	Hi        int
}

// ReadAppearances decodes a bracket-sweep CSV (url, bracket_min, bracket_max).
func ReadAppearances(r io.Reader) ([]Appearance, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "export: read appearances header")
	}

	var out []Appearance
	for {
		var row appearanceRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "export: decode appearance row")
		}
		out = append(out, Appearance{ListingID: row.URL, Lo: row.BracketMin, Hi: row.BracketMax})
	}
	return out, nil
}

// opportunityRow is the flattened per-listing report row.
type opportunityRow struct {
	Address          string `csv:"address"`
	Suburb           string `csv:"suburb"`
	Price            string `csv:"price"`
	EstimatedRange   string `csv:"estimated_range"`
	SaleMethod       string `csv:"sale_method"`
	PropertyType     string `csv:"property_type"`
	Bedrooms         string `csv:"bedrooms"`
	Bathrooms        string `csv:"bathrooms"`
	LandArea         string `csv:"land_area"`
	LINZMatch        string `csv:"linz_match"`
	MatchTier        string `csv:"match_tier"`
	CapitalValue     string `csv:"capital_value"`
	LandValue        string `csv:"land_value"`
	GapPercent       string `csv:"gap_percent"`
	OpportunityScore int    `csv:"opportunity_score"`
	RenovationScore  int    `csv:"renovation_score"`
	RenovationFlags  string `csv:"renovation_flags"`
	URL              string `csv:"url"`
}

func rowFor(l *model.Listing) opportunityRow {
	row := opportunityRow{
		Address:          l.Address,
		Suburb:           l.Suburb,
		Price:            l.PriceDisplay,
		EstimatedRange:   l.EstimatedRange(),
		SaleMethod:       l.SaleMethod,
		PropertyType:     l.PropertyType,
		Bedrooms:         intField(l.Bedrooms),
		Bathrooms:        intField(l.Bathrooms),
		LandArea:         intField(l.LandArea),
		LINZMatch:        "no",
		OpportunityScore: l.OpportunityScore,
		RenovationScore:  l.RenovationScore,
		RenovationFlags:  strings.Join(l.RenovationFlags, "; "),
		URL:              l.URL,
	}
	if v := l.Valuation; v != nil {
		row.LINZMatch = "yes"
		row.MatchTier = v.MatchTier
		row.CapitalValue = intField(v.CapitalValue)
		row.LandValue = intField(v.LandValue)
		if v.GapPercent != nil {
			row.GapPercent = fmt.Sprintf("%.1f", *v.GapPercent)
		}
	}
	return row
}

func intField(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

// WriteRanked writes the report CSV. Callers rank the slice first; rows are
// written in the order given.
func WriteRanked(w io.Writer, listings []*model.Listing) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	for _, l := range listings {
		if err := enc.Encode(rowFor(l)); err != nil {
			return eris.Wrap(err, "export: encode report row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush report")
}
