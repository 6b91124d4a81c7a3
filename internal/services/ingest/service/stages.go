package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"launchpipe/internal/core/aggregate"
	"launchpipe/internal/core/changedetect"
	"launchpipe/internal/core/launch"
	"launchpipe/internal/core/validate"
	perr "launchpipe/internal/platform/errors"
	ptime "launchpipe/internal/platform/time"
	"launchpipe/internal/services/ingest/domain"
	"launchpipe/internal/services/ingest/guardrails"
)

func errUnknownStage(st domain.Stage) error { return fmt.Errorf("no handler for stage %q", st) }

// state adapts the bound repo to the detector, one short tx per read
type state struct{ s *Service }

func (st state) IsEmpty(ctx context.Context) (empty bool, err error) {
	err = st.s.tx(ctx, func(ctx context.Context, r domain.StorageRepo) error {
		empty, err = r.IsEmpty(ctx)
		return err
	})
	return empty, err
}

func (st state) GetCursor(ctx context.Context) (c launch.Cursor, err error) {
	err = st.s.tx(ctx, func(ctx context.Context, r domain.StorageRepo) error {
		c, err = r.GetCursor(ctx)
		return err
	})
	return c, err
}

func (s *Service) start(ctx context.Context, r *run) (Outcome, error) {
	if r.opt.SnapshotOnly {
		r.rep.Action = domain.ActionManualSnapshot
		r.kind = launch.KindManual
		return OutcomeManual, nil
	}

	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	d, err := changedetect.DecideAction(fctx, state{s}, s.Source)
	cancel()
	if err != nil {
		return OutcomeError, domain.Fail(domain.StageStart, domain.KindStoreUnavailable, err)
	}
	r.decision = d
	r.kind = launch.KindIncremental

	switch d.Action {
	case changedetect.InitialLoad:
		cur, err := state{s}.GetCursor(ctx)
		if err != nil {
			return OutcomeError, domain.Fail(domain.StageStart, domain.KindStoreUnavailable, err)
		}
		r.expected = cur.LastFetched
		r.kind = launch.KindInitial
		r.rep.Action = domain.ActionInitialLoad
		r.rep.InitialLoad = true
		r.rep.Optimization = domain.OptInitialSkipDetect
		r.rep.RunID = "initial_" + r.rep.RunID
		r.log.Info().Str("run_id", r.rep.RunID).Msg("ingest: empty store, initial load")
		return OutcomeInitial, nil

	case changedetect.EarlyExit:
		r.expected = d.Cursor
		r.rep.CursorBefore = ptime.Ptr(d.Cursor)
		r.rep.Action = domain.ActionEarlyExit
		r.rep.EarlyExit = true
		r.rep.Optimization = domain.OptEarlyExit
		r.log.Info().Time("cursor", d.Cursor).Time("latest", d.Latest).Msg("ingest: no new data upstream")
		return OutcomeEarly, nil
	}

	r.expected = d.Cursor
	r.rep.CursorBefore = ptime.Ptr(d.Cursor)
	r.rep.Action = domain.ActionIncrementalLoad
	r.rep.Optimization = domain.OptServerSideFilter
	if d.Fallback {
		r.rep.Fallback = true
		r.rep.Optimization = domain.OptFullWindowFallback
		r.log.Warn().Err(d.LatestErr).Msg("ingest: latest launch check failed, fetching the full window")
	}
	return OutcomeIncremental, nil
}

func (s *Service) initialLoad(ctx context.Context, r *run) (Outcome, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()
	raws, err := s.Source.GetAll(fctx)
	if err != nil {
		return OutcomeError, domain.Fail(domain.StageInitialLoad, domain.KindSourceUnavailable, err)
	}
	s.fetched(fctx, r, raws)
	return OutcomeOK, nil
}

func (s *Service) incrementalLoad(ctx context.Context, r *run) (Outcome, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()

	since := r.decision.Since
	if since.IsZero() {
		raws, err := s.Source.GetAll(fctx)
		if err != nil {
			return OutcomeError, domain.Fail(domain.StageIncrementalLoad, domain.KindSourceUnavailable, err)
		}
		s.fetched(fctx, r, raws)
		return OutcomeOK, nil
	}

	raws, err := s.Source.GetSince(fctx, since)
	if err != nil {
		r.log.Warn().Err(err).Time("since", since).Msg("ingest: filtered query failed, fetching all and filtering locally")
		r.rep.Fallback = true
		r.rep.Optimization = domain.OptFullWindowFallback

		all, err2 := s.Source.GetAll(fctx)
		if err2 != nil {
			return OutcomeError, domain.Fail(domain.StageIncrementalLoad, domain.KindSourceUnavailable,
				perr.Wrapf(err2, perr.ErrorCodeUnavailable, "fallback after filtered query failed (%v)", err))
		}
		raws = filterSince(all, since)
	}
	s.fetched(fctx, r, raws)
	return OutcomeOK, nil
}

// filterSince keeps records dated at or after since
// unparseable dates are kept so the validator can count them
func filterSince(raws []launch.RawRecord, since time.Time) []launch.RawRecord {
	out := make([]launch.RawRecord, 0, len(raws))
	for _, raw := range raws {
		t, err := ptime.ParseUTC(raw.DateUTC)
		if err != nil || !t.Before(since) {
			out = append(out, raw)
		}
	}
	return out
}

// fetched records the batch and resolves payload masses; enrichment failures only warn
func (s *Service) fetched(ctx context.Context, r *run, raws []launch.RawRecord) {
	r.raws = raws
	r.rep.Fetched = len(raws)
	if len(raws) == 0 {
		return
	}
	if err := s.Source.Enrich(ctx, raws); err != nil {
		r.rep.Enrichment = err.Error()
		r.log.Warn().Err(err).Msg("ingest: payload mass lookup failed, masses left empty")
	}
}

func (s *Service) validate(_ context.Context, r *run) (Outcome, error) {
	valid, rejected := validate.Validate(r.raws)
	r.valid = valid
	r.rep.Validated = len(valid)
	r.rep.Rejected = len(rejected)
	if len(rejected) > 0 {
		r.rep.Rejections = validate.CountByReason(rejected)
		for _, rj := range rejected {
			r.log.Debug().Str("id", rj.ID).Str("reason", string(rj.Reason)).Str("field", rj.Field).Msg("ingest: record rejected")
		}
		r.log.Warn().Int("rejected", len(rejected)).Msg("ingest: records rejected by validation")
	}
	if len(valid) == 0 {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, nil
}

func (s *Service) merge(ctx context.Context, r *run) (Outcome, error) {
	err := s.tx(ctx, func(ctx context.Context, repo domain.StorageRepo) error {
		ins, upd, err := repo.UpsertRecords(ctx, r.valid)
		if err != nil {
			return err
		}
		r.rep.Inserted, r.rep.Updated = ins, upd
		return nil
	})
	if err != nil {
		r.rep.Inserted, r.rep.Updated = 0, 0
		return OutcomeError, domain.Fail(domain.StageMerge, writeKind(err), err)
	}
	return OutcomeOK, nil
}

// writeKind treats a lock_timeout expiry as another writer holding the rows
func writeKind(err error) domain.ErrorKind {
	if perr.IsLockNotAvailable(err) {
		return domain.KindConcurrentRunDetected
	}
	return domain.KindStoreUnavailable
}

func (s *Service) updateCursor(ctx context.Context, r *run) (Outcome, error) {
	next := launch.MaxDate(r.valid)
	if !next.After(r.expected) {
		r.log.Debug().Time("cursor", r.expected).Msg("ingest: cursor unchanged")
		return OutcomeOK, nil
	}
	var moved bool
	err := s.tx(ctx, func(ctx context.Context, repo domain.StorageRepo) error {
		var err error
		moved, err = repo.SetCursor(ctx, r.expected, next)
		return err
	})
	if err != nil {
		return OutcomeError, domain.Fail(domain.StageUpdateCursor, writeKind(err), err)
	}
	if !moved {
		return OutcomeError, domain.Fail(domain.StageUpdateCursor, domain.KindConcurrentRunDetected,
			perr.Wrapf(domain.ErrConcurrentRun, perr.ErrorCodeConflict, "cursor moved away from %s", r.expected.Format(time.RFC3339)))
	}
	r.rep.CursorAfter = ptime.Ptr(next)
	s.m.cursor.WithLabelValues().Set(float64(next.Unix()))
	return OutcomeOK, nil
}

func (s *Service) aggregate(ctx context.Context, r *run) (Outcome, error) {
	added := r.rep.Inserted
	snap, err := s.appendSnapshot(ctx, r, added)
	if err != nil {
		r.rep.Aggregation = domain.Aggregation{Status: "error", Error: err.Error()}
		return OutcomeError, domain.Fail(domain.StageAggregate, domain.KindStoreUnavailable, err)
	}
	r.rep.Aggregation = outcomeOf(snap, "")
	return OutcomeOK, nil
}

// earlyExit ends runs with nothing to merge, either because the latest check saw no newer launch
// or because no fetched record validated. It only writes when no snapshot exists yet,
// seeding a zero-batch one
func (s *Service) earlyExit(ctx context.Context, r *run) (Outcome, error) {
	var missing bool
	err := s.tx(ctx, func(ctx context.Context, repo domain.StorageRepo) error {
		_, err := repo.GetLatestSnapshot(ctx)
		if errors.Is(err, perr.ErrNotFound) {
			missing = true
			return nil
		}
		return err
	})
	if err != nil {
		return OutcomeError, domain.Fail(domain.StageEarlyExit, domain.KindStoreUnavailable, err)
	}
	if !missing {
		reason := "no_new_launches"
		if r.rep.EarlyExit {
			reason = "no_new_data"
		}
		r.rep.Aggregation = domain.Aggregation{Status: "skipped", Reason: reason}
		return OutcomeOK, nil
	}
	snap, err := s.appendSnapshot(ctx, r, 0)
	if err != nil {
		r.rep.Aggregation = domain.Aggregation{Status: "error", Error: err.Error()}
		return OutcomeError, domain.Fail(domain.StageEarlyExit, domain.KindStoreUnavailable, err)
	}
	r.rep.Aggregation = outcomeOf(snap, "first_snapshot")
	return OutcomeOK, nil
}

// appendSnapshot recomputes over the full record set and appends in one tx, then mirrors
func (s *Service) appendSnapshot(ctx context.Context, r *run, added int) (launch.Snapshot, error) {
	var stored launch.Snapshot
	err := s.tx(ctx, func(ctx context.Context, repo domain.StorageRepo) error {
		all, err := repo.AllRecords(ctx)
		if err != nil {
			return err
		}
		snap := aggregate.ComputeSnapshot(all, added, r.rep.RunID, r.kind)
		snap.CreatedAt = s.now().UTC()
		stored, err = repo.AppendSnapshot(ctx, snap)
		return err
	})
	if err != nil {
		return launch.Snapshot{}, err
	}
	r.log.Info().
		Int64("snapshot_id", stored.ID).
		Str("kind", string(stored.Kind)).
		Int("total", stored.TotalLaunches).
		Str("success_rate", stored.SuccessRate.StringFixed(aggregate.Places)).
		Msg("ingest: snapshot appended")

	if s.Sink != nil {
		mctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
		defer cancel()
		if err := s.Sink.Mirror(mctx, stored); err != nil {
			r.log.Warn().Err(err).Int64("snapshot_id", stored.ID).Msg("ingest: snapshot mirror failed")
		}
	}
	return stored, nil
}

func outcomeOf(s launch.Snapshot, reason string) domain.Aggregation {
	rate := launch.Fixed(s.SuccessRate)
	return domain.Aggregation{
		Status:        "success",
		Reason:        reason,
		SnapshotID:    s.ID,
		Kind:          string(s.Kind),
		TotalLaunches: s.TotalLaunches,
		SuccessRate:   &rate,
	}
}
