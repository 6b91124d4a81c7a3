// Package module wires snapshot reads into the API using modkit
package module

import (
	"net/http"

	"launchpipe/internal/modkit"
	"launchpipe/internal/modkit/httpkit"
	perr "launchpipe/internal/platform/errors"
	str "launchpipe/internal/platform/strings"
	ingest "launchpipe/internal/services/ingest/domain"
	ingestrepo "launchpipe/internal/services/ingest/repo"
	snaphttp "launchpipe/internal/services/snapshots/http"
	snapsvc "launchpipe/internal/services/snapshots/service"
)

// Ports exported by the snapshots module
type Ports struct {
	Reader snapsvc.Service
}

// Module implements the snapshots module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	svc    snapsvc.Service
	runner ingest.Runner
	ports  Ports
}

// New constructs the snapshots module; runner backs POST /snapshots and may be nil
func New(deps modkit.Deps, runner ingest.Runner, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("snapshots"), modkit.WithPrefix("/snapshots")}, opts...)...)
	o := FromConfig(deps.Cfg)

	if deps.SQL() == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "snapshots: no sql store configured")
	}
	svc := snapsvc.New(deps.SQL(), ingestrepo.For(deps.Local()), snapsvc.Config{
		DefaultLimit: o.DefaultLimit,
		Timeout:      o.Timeout,
	})
	if !o.Manual {
		runner = nil
	}

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
		runner: runner,
	}
	m.ports = Ports{Reader: svc}
	return m, nil
}

// MountRoutes mounts /snapshots and /launches
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		snaphttp.Register(rr, m.svc, m.runner)
	})
	httpkit.MountUnder(r, "/launches", m.mws, func(rr httpkit.Router) {
		snaphttp.RegisterLaunches(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }
