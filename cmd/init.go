package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/propscan/propscan-cli/internal/address"
	"github.com/propscan/propscan-cli/internal/linz"
	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "propscan.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initQuerier builds the roll querier: the LINZ WFS client, wrapped by the
// query cache when enabled. st may be nil when the cache is off.
func initQuerier(st store.Store) (matcher.Querier, error) {
	if err := cfg.Validate("linz"); err != nil {
		return nil, err
	}
	var q matcher.Querier = linz.NewClient(cfg.LINZ)
	if cfg.Cache.Enabled {
		if st == nil {
			return nil, eris.New("query cache enabled but no store configured")
		}
		q = store.NewCachingQuerier(q, st, cfg.Cache.TTL())
	}
	return q, nil
}

func initResolver(q matcher.Querier) *matcher.Resolver {
	return matcher.NewResolver(q, address.DefaultTables(), cfg.Matcher.AttemptDelay())
}
