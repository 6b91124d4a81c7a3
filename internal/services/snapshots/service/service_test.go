package service

import (
	"context"
	"testing"
	"time"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	kit "launchpipe/internal/platform/testkit"
	ingest "launchpipe/internal/services/ingest/domain"
	"launchpipe/internal/services/snapshots/domain"

	"github.com/shopspring/decimal"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (d nopDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error     { return fn(d) }

// fakeRepo only implements the read methods; the rest panic through the nil embed
type fakeRepo struct {
	ingest.StorageRepo
	snaps     []launch.Snapshot // newest first
	records   map[string]launch.Record
	lastLimit int
}

func (f *fakeRepo) GetLatestSnapshot(context.Context) (launch.Snapshot, error) {
	if len(f.snaps) == 0 {
		return launch.Snapshot{}, perr.ErrNotFound
	}
	return f.snaps[0], nil
}

func (f *fakeRepo) SnapshotHistory(_ context.Context, limit int) ([]launch.Snapshot, error) {
	f.lastLimit = limit
	if limit > len(f.snaps) {
		limit = len(f.snaps)
	}
	return f.snaps[:limit], nil
}

func (f *fakeRepo) GetRecord(_ context.Context, id string) (launch.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return launch.Record{}, perr.NotFoundf("launch %s not found", id)
	}
	return r, nil
}

func newSvc(f *fakeRepo) *Svc {
	return New(nopDB{}, repokit.BindFunc[ingest.StorageRepo](func(repokit.Queryer) ingest.StorageRepo { return f }), Config{Timeout: time.Second})
}

func snap(id int64, at string, total int, rate string) launch.Snapshot {
	at2, _ := time.Parse(time.RFC3339, at)
	return launch.Snapshot{ID: id, CreatedAt: at2, TotalLaunches: total, SuccessRate: decimal.RequireFromString(rate)}
}

func TestLatest(t *testing.T) {
	t.Parallel()
	f := &fakeRepo{}
	s := newSvc(f)
	if _, err := s.Latest(context.Background()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty store err = %v", err)
	}
	f.snaps = []launch.Snapshot{snap(2, "2024-02-01T00:00:00Z", 5, "80"), snap(1, "2024-01-01T00:00:00Z", 4, "75")}
	got, err := s.Latest(context.Background())
	if err != nil || got.ID != 2 {
		t.Fatalf("Latest = %+v, %v", got, err)
	}
}

func TestHistoryLimits(t *testing.T) {
	t.Parallel()
	f := &fakeRepo{snaps: []launch.Snapshot{snap(1, "2024-01-01T00:00:00Z", 1, "100")}}
	s := newSvc(f)

	if _, err := s.History(context.Background(), domain.HistoryInput{}); err != nil || f.lastLimit != 20 {
		t.Fatalf("default limit = %d, err = %v", f.lastLimit, err)
	}
	if _, err := s.History(context.Background(), domain.HistoryInput{Limit: 3}); err != nil || f.lastLimit != 3 {
		t.Fatalf("limit = %d, err = %v", f.lastLimit, err)
	}
	_, err := s.History(context.Background(), domain.HistoryInput{Limit: 501})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("oversized limit err = %v", err)
	}
	if _, err := s.History(context.Background(), domain.HistoryInput{Limit: -1}); err == nil {
		t.Fatalf("negative limit accepted")
	}
}

func TestTrendOldestFirst(t *testing.T) {
	t.Parallel()
	f := &fakeRepo{snaps: []launch.Snapshot{
		snap(2, "2024-02-01T00:00:00Z", 5, "80"),
		snap(1, "2024-01-01T00:00:00Z", 4, "75"),
	}}
	pts, err := newSvc(f).Trend(context.Background(), domain.HistoryInput{Limit: 2})
	if err != nil || len(pts) != 2 {
		t.Fatalf("Trend = %+v, %v", pts, err)
	}
	if pts[0].SnapshotID != 1 || pts[1].LaunchesDelta != 1 || !pts[1].SuccessRateDelta.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("points = %+v", pts)
	}
}

func TestTrendReadsOneExtraForTheFirstDelta(t *testing.T) {
	t.Parallel()
	f := &fakeRepo{snaps: []launch.Snapshot{
		snap(3, "2024-03-01T00:00:00Z", 7, "85"),
		snap(2, "2024-02-01T00:00:00Z", 5, "80"),
		snap(1, "2024-01-01T00:00:00Z", 4, "75"),
	}}
	pts, err := newSvc(f).Trend(context.Background(), domain.HistoryInput{Limit: 2})
	if err != nil || len(pts) != 2 || f.lastLimit != 3 {
		t.Fatalf("Trend = %+v, %v, limit %d", pts, err, f.lastLimit)
	}
	if pts[0].SnapshotID != 2 || pts[0].LaunchesDelta != 1 || !pts[0].SuccessRateDelta.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("first point = %+v", pts[0])
	}
	if _, err := newSvc(f).Trend(context.Background(), domain.HistoryInput{Limit: 501}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("oversized limit err = %v", err)
	}
}

func TestLaunch(t *testing.T) {
	t.Parallel()
	f := &fakeRepo{records: map[string]launch.Record{"abc": {ID: "abc", DateUTC: kit.MustTime(t, "2020-01-01T00:00:00Z")}}}
	s := newSvc(f)
	if r, err := s.Launch(context.Background(), domain.LaunchInput{ID: "abc"}); err != nil || r.ID != "abc" {
		t.Fatalf("Launch = %+v, %v", r, err)
	}
	if _, err := s.Launch(context.Background(), domain.LaunchInput{ID: "nope"}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing err = %v", err)
	}
	if _, err := s.Launch(context.Background(), domain.LaunchInput{}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("blank id err = %v", err)
	}
}

func TestNewPanicsOnMissingDeps(t *testing.T) {
	t.Parallel()
	kit.MustPanic(t, func() { New(nil, nil, Config{}) })
	kit.MustPanic(t, func() { New(nopDB{}, nil, Config{}) })
}
