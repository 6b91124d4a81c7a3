// Package module wires up the ingestion service as a modkit module
package module

import (
	"context"
	"errors"

	"launchpipe/internal/adapters/source/spacex"
	"launchpipe/internal/modkit"
	"launchpipe/internal/modkit/httpkit"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"

	"launchpipe/internal/services/ingest/domain"
	"launchpipe/internal/services/ingest/guardrails"
	ingesthttp "launchpipe/internal/services/ingest/http"
	"launchpipe/internal/services/ingest/repo"
	"launchpipe/internal/services/ingest/service"
)

// Ports exported by the ingest module
type Ports struct {
	Runner domain.Runner
}

// Module implements modkit.Module for ingestion
type Module struct {
	deps   modkit.Deps
	opts   Options
	svc    *service.Service
	mirror *repo.CHMirror
	ports  Ports
}

// New constructs and wires the ingest module using deps.Cfg
// the source defaults to the SpaceX client built from SOURCE_SPACEX_*
func New(deps modkit.Deps, src domain.Source) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	db := deps.SQL()
	if db == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "ingest: no sql store configured")
	}
	local := deps.Local()
	if !local && opts.LockTimeout > 0 {
		db = repokit.WithBeginHooks(db, repokit.LockTimeout(opts.LockTimeout))
	}
	if src == nil {
		src = spacex.NewClient(spacex.OptionsFrom(deps.Cfg), deps.Metrics)
	}

	lease, err := leaseFor(deps, opts, db, local)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		db,
		repo.For(local),
		src,
		service.Config{
			Timeouts: guardrails.Timeouts{
				Run:   opts.RunTimeout,
				Fetch: opts.FetchTimeout,
				DB:    opts.DBTimeout,
			},
			EnableLease: opts.EnableLease && opts.LeaseBackend != LeaseNone,
		},
		lease,
		deps.Metrics,
	)

	m := &Module{deps: deps, opts: opts, svc: svc}
	if opts.Mirror {
		// a nil *CHMirror must not reach the interface field
		if mirror := repo.NewCHMirror(deps.CH); mirror != nil {
			m.mirror = mirror
			svc.WithSink(mirror)
		}
	}
	m.ports = Ports{Runner: svc}
	return m, nil
}

func leaseFor(deps modkit.Deps, opts Options, db repokit.TxRunner, local bool) (domain.LeaseFunc, error) {
	switch opts.LeaseBackend {
	case LeaseRedis:
		if deps.Redis == nil {
			return nil, perr.New(perr.ErrorCodeInvalidArgument, "ingest: redis lease selected but SERVICE_REDIS_ENABLED is off")
		}
		return guardrails.MakeRedisLease(deps.Redis, guardrails.RedisKey, opts.LeaseTTL), nil
	case LeaseNone:
		return guardrails.NoLease, nil
	}
	return guardrails.MakeSQLLease(db, local, opts.LeaseTTL), nil
}

// Start creates the schema when CORE_INGEST_ENSURE_SCHEMA is on
func (m *Module) Start(ctx context.Context) error {
	if !m.opts.EnsureSchema {
		return nil
	}
	return m.EnsureSchema(ctx)
}

// EnsureSchema creates the relational tables and, when mirroring, the clickhouse table
func (m *Module) EnsureSchema(ctx context.Context) error {
	err := m.svc.EnsureSchema(ctx)
	if m.mirror != nil {
		if merr := m.mirror.EnsureSchema(ctx); merr != nil {
			err = errors.Join(err, perr.Wrap(merr, perr.ErrorCodeDB, "ingest: mirror schema"))
		}
	}
	return err
}

// Runner returns the ingestion runner
func (m *Module) Runner() domain.Runner { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes mounts POST /runs
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route("/runs", func(rr httpkit.Router) {
		ingesthttp.Register(rr, m.svc)
	})
}
