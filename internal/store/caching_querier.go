package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/model"
)

// CachingQuerier wraps a matcher.Querier with the opt-in query cache. The
// default configuration leaves this out entirely so every resolve hits the
// roll fresh; batch reruns over the same suburb enable it to avoid paying
// for identical queries twice. Cache write failures are logged and
// swallowed: caching is an optimization, never a correctness concern.
type CachingQuerier struct {
	inner matcher.Querier
	store Store
	ttl   time.Duration
}

// NewCachingQuerier wraps inner with the query cache.
func NewCachingQuerier(inner matcher.Querier, s Store, ttl time.Duration) *CachingQuerier {
	return &CachingQuerier{inner: inner, store: s, ttl: ttl}
}

// QueryValuations implements matcher.Querier.
func (c *CachingQuerier) QueryValuations(ctx context.Context, q matcher.Query) ([]model.ValuationRecord, error) {
	key := QueryKey(q)

	cached, hit, err := c.store.GetCachedQuery(ctx, key)
	if err != nil {
		zap.L().Debug("query cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	records, err := c.inner.QueryValuations(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetCachedQuery(ctx, key, records, c.ttl); err != nil {
		zap.L().Debug("query cache write failed", zap.Error(err))
	}
	return records, nil
}
