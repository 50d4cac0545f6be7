package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "listings.csv", RunStatusRunning, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "listings.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs(RunStatusComplete, 40, 28, 9, "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.CompleteRun(context.Background(), "run-1", 40, 28, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, source, status, total, matched, estimated, started_at, completed_at`).
		WithArgs(10).
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "source", "status", "total", "matched", "estimated", "started_at", "completed_at"}).
				AddRow("run-1", "listings.csv", RunStatusComplete, 40, 28, 9, now, &now),
		)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.InDelta(t, 70.0, runs[0].MatchRate, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedQueryMiss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT records FROM query_cache`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, hit, err := s.GetCachedQuery(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedQueryHit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	payload := []byte(`[{"situation_name":"White Street","district_ta_code":60}]`)
	mock.ExpectQuery(`SELECT records FROM query_cache`).
		WithArgs("key").
		WillReturnRows(pgxmock.NewRows([]string{"records"}).AddRow(payload))

	records, hit, err := s.GetCachedQuery(context.Background(), "key")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, records, 1)
	assert.Equal(t, "White Street", records[0].SituationName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
