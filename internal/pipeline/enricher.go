// Package pipeline runs the batch enrichment pass: parse each listing's
// address, resolve it against the valuation roll, estimate a price range
// where no explicit price is shown, and score the result. Processing is
// strictly sequential; one outstanding roll request at a time.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/propscan/propscan-cli/internal/address"
	"github.com/propscan/propscan-cli/internal/estimator"
	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/model"
	"github.com/propscan/propscan-cli/internal/scorer"
	"github.com/propscan/propscan-cli/internal/store"
)

// RunLog is the slice of the store the enricher needs. Nil disables
// persistence.
type RunLog interface {
	CreateRun(ctx context.Context, source string) (*store.Run, error)
	CompleteRun(ctx context.Context, runID string, total, matched, estimated int) error
}

// Enricher wires the matcher, estimator and scorers into one batch pass.
type Enricher struct {
	resolver     *matcher.Resolver
	mapper       *estimator.Mapper
	keywords     scorer.Keywords
	tables       address.Tables
	runLog       RunLog
	listingDelay time.Duration
}

// NewEnricher builds an Enricher. runLog may be nil.
func NewEnricher(resolver *matcher.Resolver, mapper *estimator.Mapper, keywords scorer.Keywords, tables address.Tables, runLog RunLog, listingDelay time.Duration) *Enricher {
	return &Enricher{
		resolver:     resolver,
		mapper:       mapper,
		keywords:     keywords,
		tables:       tables,
		runLog:       runLog,
		listingDelay: listingDelay,
	}
}

// Summary reports the outcome of a batch run. A run that matches nothing is
// still a completed run.
type Summary struct {
	RunID     string  `json:"run_id,omitempty"`
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Estimated int     `json:"estimated"`
	MatchRate float64 `json:"match_rate"`
}

// Run enriches every listing in place and returns the summary. The only
// error path is context cancellation (or run-log failures); per-listing
// lookup failures degrade to unmatched listings, they never abort the batch.
func (e *Enricher) Run(ctx context.Context, source string, listings []*model.Listing) (*Summary, error) {
	summary := &Summary{Total: len(listings)}

	if e.runLog != nil {
		run, err := e.runLog.CreateRun(ctx, source)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		summary.RunID = run.ID
	}

	for i, l := range listings {
		if err := e.enrich(ctx, l); err != nil {
			return nil, err
		}
		if l.Valuation != nil {
			summary.Matched++
		}
		if l.EstimatedPrice != nil {
			summary.Estimated++
		}

		zap.L().Info("listing processed",
			zap.Int("n", i+1),
			zap.Int("of", len(listings)),
			zap.String("address", l.Address),
			zap.Bool("matched", l.Valuation != nil),
			zap.Int("opportunity_score", l.OpportunityScore),
		)

		// Courtesy pause between listings.
		if e.listingDelay > 0 && i < len(listings)-1 {
			timer := time.NewTimer(e.listingDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if summary.Total > 0 {
		summary.MatchRate = float64(summary.Matched) / float64(summary.Total) * 100
	}

	if e.runLog != nil {
		if err := e.runLog.CompleteRun(ctx, summary.RunID, summary.Total, summary.Matched, summary.Estimated); err != nil {
			return nil, eris.Wrap(err, "pipeline: complete run")
		}
	}

	zap.L().Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("matched", summary.Matched),
		zap.Int("estimated", summary.Estimated),
		zap.Float64("match_rate", summary.MatchRate),
	)
	return summary, nil
}

// enrich computes every derived field for one listing and assigns them
// together, so a listing never carries a half-applied pass.
func (e *Enricher) enrich(ctx context.Context, l *model.Listing) error {
	parsed := address.Parse(l.Address)
	if l.Suburb == "" {
		l.Suburb = parsed.Suburb
	}

	var valuation *model.Valuation
	if parsed.Number != "" && parsed.Street != "" {
		match, err := e.resolver.Resolve(ctx, parsed.Number, parsed.Street, e.tables.GuessTAs(parsed.Suburb))
		if err != nil {
			return eris.Wrap(err, "pipeline: resolve")
		}
		if match != nil {
			valuation = valuationFromMatch(match)
		}
	} else {
		zap.L().Debug("unparsable address", zap.String("address", l.Address))
	}

	estimated := e.mapper.Estimate(l)

	// Gap needs the asking price, which may be the estimated midpoint.
	var gap *float64
	asking := askingPrice(l, estimated)
	if valuation != nil && valuation.CapitalValue != nil && asking != nil {
		gap = estimator.GapPercent(float64(*valuation.CapitalValue), *asking)
	}
	if valuation != nil {
		valuation.GapPercent = gap
	}

	renovation := e.keywords.Score(l)
	opportunity := estimator.ScoreOpportunity(gap, l.SaleMethod)

	// Atomic per-listing update: nothing above mutated the listing.
	l.Valuation = valuation
	l.EstimatedPrice = estimated
	l.RenovationScore = renovation.Score
	l.RenovationFlags = renovation.Flags
	l.OpportunityScore = opportunity.Capped
	return nil
}

func askingPrice(l *model.Listing, estimated *model.PriceRange) *float64 {
	if p := model.ParsePrice(l.PriceDisplay); p != nil {
		return p
	}
	if estimated != nil {
		mid := estimated.Midpoint
		return &mid
	}
	return nil
}

func valuationFromMatch(m *matcher.Match) *model.Valuation {
	rec := m.Record
	return &model.Valuation{
		TACode:          rec.TACode,
		CapitalValue:    rec.CapitalValue,
		LandValue:       rec.LandValue,
		ImprovementsVal: rec.ImprovementsVal,
		LandAreaM2:      rec.LandAreaM2(),
		Condition:       rec.Condition,
		AgeIndicator:    rec.AgeIndicator,
		Bedrooms:        rec.Bedrooms,
		FloorArea:       rec.FloorArea,
		MatchTier:       m.Tier,
		MatchConfidence: m.Confidence,
	}
}

// Rank orders listings for export: opportunity score descending, then gap
// percent descending. Listings with no gap sort below any positive gap.
func Rank(listings []*model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.OpportunityScore != b.OpportunityScore {
			return a.OpportunityScore > b.OpportunityScore
		}
		return gapOrZero(a) > gapOrZero(b)
	})
}

func gapOrZero(l *model.Listing) float64 {
	if l.Valuation == nil || l.Valuation.GapPercent == nil {
		return 0
	}
	return *l.Valuation.GapPercent
}
