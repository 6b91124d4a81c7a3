package store

import (
	"context"
	"fmt"
	"time"

	chx "launchpipe/internal/platform/store/ch"
	"launchpipe/internal/platform/store/pg"

	"github.com/redis/go-redis/v9"
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	if err := p.WaitReady(ctx, pg.DefaultReady); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p, cfg.PG.TxRetries, func(attempt int, err error) {
		s.Log.Warn().Err(err).Int("attempt", attempt).Msg("pg: retrying transaction")
	}), nil
}

func openSQLite(ctx context.Context, cfg Config) (TxRunner, error) {
	a, err := newSQLiteAdapter(cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	if err := a.Ping(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("sqlite open %s: %w", cfg.SQLite.Path, err)
	}
	return a, nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.RDS.Addr,
		Password: cfg.RDS.Password,
		DB:       cfg.RDS.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RDS.Addr, err)
	}
	return c, nil
}
