// Package service runs ingestion as an explicit state machine over the store and the source
package service

import (
	"context"
	"errors"
	"time"

	"launchpipe/internal/core/changedetect"
	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"
	"launchpipe/internal/services/ingest/domain"
	"launchpipe/internal/services/ingest/guardrails"

	"github.com/rs/zerolog"
)

// Config controls budgets and the lease
type Config struct {
	Timeouts guardrails.Timeouts

	// EnableLease wraps every run in the single-run lease
	EnableLease bool
}

// Service implements domain.Runner
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Source domain.Source
	Cfg    Config

	// Lease(ctx, do) holds the single-run lease around do
	Lease domain.LeaseFunc

	// Sink optionally mirrors appended snapshots; failures only warn
	Sink domain.SnapshotSink

	now func() time.Time
	m   runMetrics
}

var _ domain.Runner = (*Service)(nil)

// New constructs the ingestion service; reg may be nil
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	src domain.Source,
	cfg Config,
	lease domain.LeaseFunc,
	reg *metrics.Registry,
) *Service {
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil repo binder")
	}
	if src == nil {
		panic("ingest.Service requires a non nil source")
	}
	if reg == nil {
		reg = metrics.NewBare()
	}
	return &Service{DB: db, Binder: binder, Source: src, Cfg: cfg, Lease: lease, now: time.Now, m: newRunMetrics(reg)}
}

// WithSink sets the snapshot mirror
func (s *Service) WithSink(sink domain.SnapshotSink) *Service {
	s.Sink = sink
	return s
}

// run is the mutable state threaded through the stages of one run
type run struct {
	opt      domain.RunOptions
	rep      *domain.Report
	log      zerolog.Logger
	decision changedetect.Decision
	expected time.Time
	kind     launch.SnapshotKind
	raws     []launch.RawRecord
	valid    []launch.Record
}

// Run executes one ingestion run and always returns a report
func (s *Service) Run(ctx context.Context, opt domain.RunOptions) domain.Report {
	started := s.now()
	prefix := ""
	if opt.SnapshotOnly {
		prefix = "manual"
	}
	runID := domain.NewRunID(prefix, started)
	ctx = logger.WithRun(ctx, runID)

	rep := domain.Report{
		RunID:     runID,
		Trigger:   opt.Trigger,
		Status:    domain.StatusSuccess,
		Stage:     domain.StageStart,
		StartedAt: started.UTC(),
	}
	r := &run{opt: opt, rep: &rep, log: logger.C(ctx).With().Str("mod", "ingest").Logger()}
	r.log.Info().Str("trigger", opt.Trigger).Bool("snapshot_only", opt.SnapshotOnly).Msg("ingest: run start")

	ctx, cancel := guardrails.WithRun(ctx, s.Cfg.Timeouts)
	defer cancel()

	calls := s.Source.Calls()
	lease := s.Lease
	if lease == nil || !s.Cfg.EnableLease {
		lease = guardrails.NoLease
	}
	if err := lease(ctx, func(ctx context.Context) error { return s.drive(ctx, r) }); err != nil && rep.Stage != domain.StageFailed {
		// the lease itself refused or failed before any stage ran
		rep.Failed(domain.Fail(domain.StageStart, "", err))
	}

	rep.APICalls = s.Source.Calls() - calls
	rep.DurationSeconds = s.now().Sub(started).Seconds()
	s.m.observe(rep)

	ev := r.log.Info()
	if rep.Status == domain.StatusFailed {
		ev = r.log.Error()
	} else if rep.Status == domain.StatusSkipped {
		ev = r.log.Warn()
	}
	ev.Str("action", string(rep.Action)).
		Str("status", string(rep.Status)).
		Str("failed_stage", string(rep.FailedStage)).
		Str("error_kind", string(rep.ErrorKind)).
		Int("fetched", rep.Fetched).
		Int("validated", rep.Validated).
		Int("rejected", rep.Rejected).
		Int("inserted", rep.Inserted).
		Int("updated", rep.Updated).
		Int64("api_calls", rep.APICalls).
		Bool("early_exit", rep.EarlyExit).
		Bool("fallback", rep.Fallback).
		Float64("duration_s", rep.DurationSeconds).
		Msg("ingest: run done")
	return rep
}

// drive walks the machine from Start to a terminal stage
func (s *Service) drive(ctx context.Context, r *run) error {
	st := domain.StageStart
	for !st.Terminal() {
		r.rep.Stage = st
		out, err := s.step(ctx, st, r)
		if err != nil {
			var se *domain.StageError
			if !errors.As(err, &se) {
				se = domain.Fail(st, "", err)
			}
			s.m.failures.WithLabelValues(string(se.Stage), string(se.Kind)).Inc()
			r.rep.Failed(se)
			return se
		}
		next := Next(st, out)
		r.log.Debug().Str("from", string(st)).Str("outcome", string(out)).Str("to", string(next)).Msg("ingest: transition")
		st = next
	}
	r.rep.Stage = st
	return nil
}

func (s *Service) step(ctx context.Context, st domain.Stage, r *run) (Outcome, error) {
	switch st {
	case domain.StageStart:
		return s.start(ctx, r)
	case domain.StageInitialLoad:
		return s.initialLoad(ctx, r)
	case domain.StageIncrementalLoad:
		return s.incrementalLoad(ctx, r)
	case domain.StageEarlyExit:
		return s.earlyExit(ctx, r)
	case domain.StageValidate:
		return s.validate(ctx, r)
	case domain.StageMerge:
		return s.merge(ctx, r)
	case domain.StageUpdateCursor:
		return s.updateCursor(ctx, r)
	case domain.StageAggregate:
		return s.aggregate(ctx, r)
	}
	return OutcomeError, domain.Fail(st, domain.KindStoreUnavailable, errUnknownStage(st))
}

// tx runs fn against a bound repo inside one transaction under the DB budget
func (s *Service) tx(ctx context.Context, fn func(ctx context.Context, r domain.StorageRepo) error) error {
	ctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return fn(ctx, repokit.MustBind(s.Binder, q))
	})
}

// EnsureSchema creates the ingestion tables
func (s *Service) EnsureSchema(ctx context.Context) error {
	return s.tx(ctx, func(ctx context.Context, r domain.StorageRepo) error { return r.EnsureSchema(ctx) })
}
