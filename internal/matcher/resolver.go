// Package matcher resolves parsed addresses against the district valuation
// roll using a tiered fallback search. Abbreviation mismatches are assumed
// more likely than jurisdiction misassignment, so every street variant is
// tried within a TA before the TA set is broadened.
package matcher

import (
	"context"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/propscan/propscan-cli/internal/address"
	"github.com/propscan/propscan-cli/internal/model"
)

// Query is the structured predicate handed to a Querier: street-number
// equality (empty = no number filter), case-insensitive street-name
// substring match, and TA-code membership (OR across codes).
type Query struct {
	StreetNumber   string
	StreetContains string
	TACodes        []int
}

// Querier fetches candidate valuation records for a predicate. Implementations
// return an empty slice for "no candidates" and an error only for transport
// failures (timeout, bad response); the resolver treats both the same way
// for an individual attempt.
type Querier interface {
	QueryValuations(ctx context.Context, q Query) ([]model.ValuationRecord, error)
}

// Tier names, in search order.
const (
	TierExact   = "exact"
	TierStreet  = "street"
	TierCrossTA = "cross_ta"
)

// Match is a successful resolution. Confidence is the Jaro-Winkler
// similarity between the queried street variant and the matched record's
// situation name; it is diagnostic only and never drives selection.
type Match struct {
	Record     model.ValuationRecord
	Tier       string
	Variant    string
	TACode     int
	Confidence float64
}

// Resolver runs the three-tier search against a Querier.
type Resolver struct {
	querier Querier
	tables  address.Tables

	// limiter enforces the courtesy delay between external attempts.
	// It applies unconditionally, success or failure; it is not a backoff.
	limiter *rate.Limiter
}

// NewResolver creates a Resolver. attemptDelay is the fixed pause between
// consecutive roll queries; zero disables it.
func NewResolver(q Querier, tables address.Tables, attemptDelay time.Duration) *Resolver {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if attemptDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(attemptDelay), 1)
	}
	return &Resolver{querier: q, tables: tables, limiter: limiter}
}

// attemptResult is the typed outcome of a single roll query. Transport
// errors are carried, logged, and treated as "no match for this attempt";
// they never abort the tier loop.
type attemptResult struct {
	records []model.ValuationRecord
	err     error
}

// Resolve executes the tiered search for a street number and name, scoped by
// the TA hints. It returns nil (with a nil error) when every tier exhausts
// without a match; the only error path is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, streetNumber, streetName string, taHints []int) (*Match, error) {
	if streetNumber == "" || streetName == "" {
		return nil, nil
	}
	variants := r.tables.Variants(streetName)

	log := zap.L().With(
		zap.String("street_number", streetNumber),
		zap.String("street_name", streetName),
	)

	// Tier 1: exact number + street variant, per hinted TA.
	for _, variant := range variants {
		for _, ta := range taHints {
			res := r.attempt(ctx, Query{StreetNumber: streetNumber, StreetContains: variant, TACodes: []int{ta}})
			if res.err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Debug("exact tier attempt failed", zap.String("variant", variant), zap.Int("ta", ta), zap.Error(res.err))
				continue
			}
			if len(res.records) > 0 {
				log.Debug("exact match", zap.String("variant", variant), zap.Int("ta", ta))
				return r.match(res.records[0], TierExact, variant), nil
			}
		}
	}

	// Tier 2: street variant only, preferring an exact situation number
	// among the candidates, else the first returned record.
	for _, variant := range variants {
		for _, ta := range taHints {
			res := r.attempt(ctx, Query{StreetContains: variant, TACodes: []int{ta}})
			if res.err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Debug("street tier attempt failed", zap.String("variant", variant), zap.Int("ta", ta), zap.Error(res.err))
				continue
			}
			if len(res.records) == 0 {
				continue
			}
			for _, rec := range res.records {
				if rec.SituationNumber == streetNumber {
					log.Debug("street match with number", zap.String("variant", variant), zap.Int("ta", ta))
					return r.match(rec, TierStreet, variant), nil
				}
			}
			log.Debug("street match, different number", zap.String("variant", variant), zap.Int("ta", ta))
			return r.match(res.records[0], TierStreet, variant), nil
		}
	}

	// Tier 3: exact number again, one query per variant, TA filter OR'd
	// across every known TA rather than just the hints.
	for _, variant := range variants {
		res := r.attempt(ctx, Query{StreetNumber: streetNumber, StreetContains: variant, TACodes: r.tables.KnownTAs})
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug("cross-TA attempt failed", zap.String("variant", variant), zap.Error(res.err))
			continue
		}
		if len(res.records) > 0 {
			log.Debug("cross-TA match", zap.String("variant", variant))
			return r.match(res.records[0], TierCrossTA, variant), nil
		}
	}

	log.Debug("no match after all tiers")
	return nil, nil
}

func (r *Resolver) attempt(ctx context.Context, q Query) attemptResult {
	records, err := r.querier.QueryValuations(ctx, q)
	// Courtesy delay between attempts, success or failure.
	if waitErr := r.limiter.Wait(ctx); waitErr != nil && err == nil {
		err = waitErr
	}
	return attemptResult{records: records, err: err}
}

func (r *Resolver) match(rec model.ValuationRecord, tier, variant string) *Match {
	return &Match{
		Record:     rec,
		Tier:       tier,
		Variant:    variant,
		TACode:     rec.TACode,
		Confidence: matchr.JaroWinkler(variant, strings.ToUpper(rec.SituationName), false),
	}
}
