// Package pg provides a Postgres client using pgxpool with optional query tracing
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures pgxpool for pg
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
	AppName  string
}

// PG is a postgres client with pool and optional tracer
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var (
	newPool = pgxpool.NewWithConfig
	sleep   = time.Sleep
)

// Ready bounds how long WaitReady keeps pinging a pool that is still coming up
type Ready struct {
	Attempts int
	Timeout  time.Duration
	Backoff  time.Duration
	Ceiling  time.Duration
}

// DefaultReady covers a postgres container that boots alongside the binary
var DefaultReady = Ready{Attempts: 20, Timeout: 3 * time.Second, Backoff: 150 * time.Millisecond, Ceiling: 2 * time.Second}

// Open creates a new PG client with the given config, optional tracer, and optional pool config mutator
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolCfgMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		if pcfg.ConnConfig.RuntimeParams == nil {
			pcfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if poolCfgMut != nil {
		poolCfgMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// WaitReady pings until the pool answers, ctx ends, or the attempts run out
func (p *PG) WaitReady(ctx context.Context, r Ready) error {
	if r.Attempts < 1 {
		r.Attempts = 1
	}
	var last error
	backoff := r.Backoff
	for i := 0; i < r.Attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, r.Timeout)
		last = p.ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i < r.Attempts-1 {
			sleep(backoff)
			backoff = min(backoff*2, r.Ceiling)
		}
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", r.Attempts, last)
}

// pingPool is a seam for tests
var pingPool = func(ctx context.Context, p *pgxpool.Pool) error { return p.Ping(ctx) }

func (p *PG) ping(ctx context.Context) error { return pingPool(ctx, p.Pool) }

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
