package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/model"
)

// Run is one persisted batch enrichment run.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Matched     int        `json:"matched"`
	Estimated   int        `json:"estimated"`
	MatchRate   float64    `json:"match_rate"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
)

// Store persists run summaries and the opt-in valuation query cache.
type Store interface {
	CreateRun(ctx context.Context, source string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, total, matched, estimated int) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	GetCachedQuery(ctx context.Context, key string) ([]model.ValuationRecord, bool, error)
	SetCachedQuery(ctx context.Context, key string, records []model.ValuationRecord, ttl time.Duration) error
	DeleteExpiredQueries(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// QueryKey derives a stable cache key from a valuation query predicate.
func QueryKey(q matcher.Query) string {
	parts := make([]string, 0, len(q.TACodes))
	for _, ta := range q.TACodes {
		parts = append(parts, fmt.Sprintf("%d", ta))
	}
	raw := q.StreetNumber + "|" + q.StreetContains + "|" + strings.Join(parts, ",")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
