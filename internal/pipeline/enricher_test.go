package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscan/propscan-cli/internal/address"
	"github.com/propscan/propscan-cli/internal/estimator"
	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/model"
	"github.com/propscan/propscan-cli/internal/scorer"
	"github.com/propscan/propscan-cli/internal/store"
)

type rollStub struct {
	records map[string][]model.ValuationRecord
}

func (s *rollStub) QueryValuations(_ context.Context, q matcher.Query) ([]model.ValuationRecord, error) {
	return s.records[q.StreetContains], nil
}

type runLogStub struct {
	created   bool
	completed bool
	total     int
	matched   int
}

func (r *runLogStub) CreateRun(_ context.Context, source string) (*store.Run, error) {
	r.created = true
	return &store.Run{ID: "run-1", Source: source}, nil
}

func (r *runLogStub) CompleteRun(_ context.Context, _ string, total, matched, _ int) error {
	r.completed = true
	r.total = total
	r.matched = matched
	return nil
}

func intPtr(v int) *int { return &v }

func newTestEnricher(roll matcher.Querier, runLog RunLog) *Enricher {
	tables := address.DefaultTables()
	resolver := matcher.NewResolver(roll, tables, 0)
	mapper := estimator.NewMapper()
	return NewEnricher(resolver, mapper, scorer.DefaultKeywords(), tables, runLog, 0)
}

func TestRunEnrichesMatchedListing(t *testing.T) {
	roll := &rollStub{records: map[string][]model.ValuationRecord{
		"OLIPHANT RD": {{
			SituationNumber: "12",
			SituationName:   "OLIPHANT RD",
			TACode:          62,
			CapitalValue:    intPtr(650_000),
		}},
	}}
	log := &runLogStub{}
	e := newTestEnricher(roll, log)

	listings := []*model.Listing{{
		Address:      "12 Oliphant Road, Hastings",
		PriceDisplay: "$575,000",
		SaleMethod:   "Deadline Sale",
	}}

	summary, err := e.Run(context.Background(), "csv", listings)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Matched)
	assert.InDelta(t, 100.0, summary.MatchRate, 0.001)
	assert.Equal(t, "run-1", summary.RunID)
	assert.True(t, log.created)
	assert.True(t, log.completed)
	assert.Equal(t, 1, log.matched)

	l := listings[0]
	require.NotNil(t, l.Valuation)
	assert.Equal(t, 62, l.Valuation.TACode)
	require.NotNil(t, l.Valuation.GapPercent)
	assert.InDelta(t, 11.538, *l.Valuation.GapPercent, 0.001)
	// gap >10 gives 3 points, deadline sale adds 3.
	assert.Equal(t, 6, l.OpportunityScore)
	assert.Equal(t, "hastings", l.Suburb)
}

func TestRunCompletesWithNoMatches(t *testing.T) {
	e := newTestEnricher(&rollStub{}, nil)

	listings := []*model.Listing{
		{Address: "1 Nowhere Lane, Napier", PriceDisplay: "Auction"},
		{Address: "Lifestyle block"},
	}

	summary, err := e.Run(context.Background(), "csv", listings)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Zero(t, summary.Matched)
	assert.Zero(t, summary.MatchRate)
	for _, l := range listings {
		assert.Nil(t, l.Valuation)
	}
}

func TestRunUsesEstimatedMidpointForGap(t *testing.T) {
	roll := &rollStub{records: map[string][]model.ValuationRecord{
		"MARINE PDE": {{
			SituationNumber: "8",
			SituationName:   "MARINE PDE",
			TACode:          60,
			CapitalValue:    intPtr(700_000),
		}},
	}}
	e := newTestEnricher(roll, nil)

	listings := []*model.Listing{{
		ID:           "l1",
		Address:      "8 Marine Parade, Napier",
		PriceDisplay: "Price by Negotiation",
	}}
	e.mapper.RecordAppearance("l1", 500_000, 550_000)
	e.mapper.RecordAppearance("l1", 550_000, 600_000)

	summary, err := e.Run(context.Background(), "csv", listings)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Estimated)

	l := listings[0]
	require.NotNil(t, l.EstimatedPrice)
	assert.Equal(t, 500_000, l.EstimatedPrice.Min)
	assert.Equal(t, 600_000, l.EstimatedPrice.Max)
	require.NotNil(t, l.Valuation)
	require.NotNil(t, l.Valuation.GapPercent)
	// (700000 - 550000) / 700000 * 100
	assert.InDelta(t, 21.428, *l.Valuation.GapPercent, 0.001)
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEnricher(&rollStub{}, nil)
	_, err := e.Run(ctx, "csv", []*model.Listing{
		{Address: "1 Somewhere St, Napier"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank(t *testing.T) {
	gap := func(v float64) *model.Valuation { return &model.Valuation{GapPercent: &v} }
	a := &model.Listing{ID: "a", OpportunityScore: 3, Valuation: gap(5)}
	b := &model.Listing{ID: "b", OpportunityScore: 8, Valuation: gap(12)}
	c := &model.Listing{ID: "c", OpportunityScore: 8, Valuation: gap(22)}
	d := &model.Listing{ID: "d", OpportunityScore: 3}

	listings := []*model.Listing{a, b, c, d}
	Rank(listings)

	assert.Equal(t, []string{"c", "b", "a", "d"}, []string{
		listings[0].ID, listings[1].ID, listings[2].ID, listings[3].ID,
	})
}
