package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	ptime "launchpipe/internal/platform/time"
	"launchpipe/internal/services/ingest/domain"
)

// fakeDB hands itself to fn as the Queryer; the fake repo ignores it
type fakeDB struct{ txs int }

func (f *fakeDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (f *fakeDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error {
	f.txs++
	return fn(f)
}

type fakeRepo struct {
	mu        sync.Mutex
	records   map[string]launch.Record
	cursor    launch.Cursor
	snapshots []launch.Snapshot

	emptyErr  error
	upsertErr error
	appendErr error
	casLose   bool
	upserts   int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{records: map[string]launch.Record{}} }

func (f *fakeRepo) binder() repokit.Binder[domain.StorageRepo] {
	return repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return f })
}

func (f *fakeRepo) EnsureSchema(context.Context) error { return nil }

func (f *fakeRepo) IsEmpty(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records) == 0, f.emptyErr
}

func (f *fakeRepo) GetCursor(context.Context) (launch.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *fakeRepo) SetCursor(_ context.Context, expected, next time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.casLose || !f.cursor.LastFetched.Equal(expected) {
		return false, nil
	}
	f.cursor = launch.Cursor{LastFetched: next, UpdatedAt: next}
	return true, nil
}

func (f *fakeRepo) UpsertRecords(_ context.Context, recs []launch.Record) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return 0, 0, f.upsertErr
	}
	ins, upd := 0, 0
	for _, r := range recs {
		if _, ok := f.records[r.ID]; ok {
			upd++
		} else {
			ins++
		}
		f.records[r.ID] = r
	}
	return ins, upd, nil
}

func (f *fakeRepo) AllRecords(context.Context) ([]launch.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]launch.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateUTC.Before(out[j].DateUTC) })
	return out, nil
}

func (f *fakeRepo) GetRecord(_ context.Context, id string) (launch.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return launch.Record{}, perr.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) AppendSnapshot(_ context.Context, s launch.Snapshot) (launch.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return launch.Snapshot{}, f.appendErr
	}
	s.ID = int64(len(f.snapshots) + 1)
	f.snapshots = append(f.snapshots, s)
	return s, nil
}

func (f *fakeRepo) GetLatestSnapshot(context.Context) (launch.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return launch.Snapshot{}, perr.ErrNotFound
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeRepo) SnapshotHistory(_ context.Context, limit int) ([]launch.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []launch.Snapshot
	for i := len(f.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.snapshots[i])
	}
	return out, nil
}

type fakeSource struct {
	latest    launch.RawRecord
	all       []launch.RawRecord
	latestErr error
	allErr    error
	sinceErr  error
	enrichErr error

	calls       int64
	latestCalls int
	allCalls    int
	sinceArgs   []time.Time
	enriched    int
}

func (f *fakeSource) GetLatest(context.Context) (launch.RawRecord, error) {
	f.calls++
	f.latestCalls++
	return f.latest, f.latestErr
}

func (f *fakeSource) GetAll(context.Context) ([]launch.RawRecord, error) {
	f.calls++
	f.allCalls++
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]launch.RawRecord(nil), f.all...), nil
}

func (f *fakeSource) GetSince(_ context.Context, since time.Time) ([]launch.RawRecord, error) {
	f.calls++
	f.sinceArgs = append(f.sinceArgs, since)
	if f.sinceErr != nil {
		return nil, f.sinceErr
	}
	var out []launch.RawRecord
	for _, r := range f.all {
		if t, err := ptime.ParseUTC(r.DateUTC); err == nil && !t.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Enrich(_ context.Context, raws []launch.RawRecord) error {
	f.enriched += len(raws)
	return f.enrichErr
}

func (f *fakeSource) Calls() int64 { return f.calls }

type fakeSink struct {
	got []launch.Snapshot
	err error
}

func (f *fakeSink) Mirror(_ context.Context, s launch.Snapshot) error {
	f.got = append(f.got, s)
	return f.err
}

var errDown = errors.New("connection refused")
