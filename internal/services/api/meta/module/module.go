// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"context"
	"net/http"
	"time"

	"launchpipe/internal/modkit"
	"launchpipe/internal/modkit/httpkit"
	"launchpipe/internal/platform/store"

	metahttp "launchpipe/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}
}

// Backends lists the configured stores as readiness checks
func Backends(deps modkit.Deps) []metahttp.Backend {
	pinger := func(v any) func(context.Context) error {
		if p, ok := v.(store.Pinger); ok {
			return p.Ping
		}
		return nil
	}
	out := []metahttp.Backend{
		{Name: "pg", Ping: pinger(deps.PG)},
		{Name: "sqlite", Ping: pinger(deps.SQLite)},
		{Name: "ch", Ping: pinger(deps.CH)},
		{Name: "redis"},
	}
	if deps.Redis != nil {
		out[3].Ping = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	return out
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: "launchpipe-api",
			StartedAt:   m.startedAt,
			Backends:    Backends(m.deps),
		})
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
