package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"launchpipe/internal/core/launch"
	kit "launchpipe/internal/platform/testkit"

	"github.com/shopspring/decimal"
)

func bp(b bool) *bool           { return &b }
func sp(s string) *string       { return &s }
func tp(t time.Time) *time.Time { return &t }

func mass(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		s, total int
		want     string
	}{
		{0, 0, "0"},
		{0, 5, "0"},
		{5, 5, "100"},
		{2, 3, "66.67"},
		{1, 3, "33.33"},
		{1, 8, "12.5"},
		{181, 205, "88.29"},
	}
	for _, c := range cases {
		got := SuccessRate(c.s, c.total)
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Fatalf("SuccessRate(%d,%d) = %s, want %s", c.s, c.total, got, c.want)
		}
	}
}

func TestEmptySetIsZeroState(t *testing.T) {
	t.Parallel()
	s := ComputeSnapshot(nil, 0, "pipeline_x", launch.KindIncremental)
	if s.TotalLaunches != 0 || !s.SuccessRate.IsZero() {
		t.Fatalf("zero state = %+v", s)
	}
	if s.EarliestLaunch != nil || s.LatestLaunch != nil || s.AvgPayloadMassKg.Valid || s.AvgDelayHours.Valid {
		t.Fatalf("empty set should leave optional fields null: %+v", s)
	}
	if s.RunID != "pipeline_x" || s.Kind != launch.KindIncremental {
		t.Fatalf("identity not carried: %+v", s)
	}
}

func TestMassAverageSkipsNulls(t *testing.T) {
	t.Parallel()
	d := kit.MustTime(t, "2024-01-01T00:00:00Z")
	recs := []launch.Record{
		{ID: "a", DateUTC: d, PayloadMassKg: mass("100")},
		{ID: "b", DateUTC: d},
		{ID: "c", DateUTC: d, PayloadMassKg: mass("300")},
	}
	s := ComputeSnapshot(recs, 3, "r", launch.KindInitial)
	if s.TotalLaunches != 3 {
		t.Fatalf("total = %d", s.TotalLaunches)
	}
	if !s.AvgPayloadMassKg.Valid || !s.AvgPayloadMassKg.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("avg mass = %+v", s.AvgPayloadMassKg)
	}
}

func TestAnomalousStaticFireExcludedFromDelayOnly(t *testing.T) {
	t.Parallel()
	launchAt := kit.MustTime(t, "2024-01-10T00:00:00Z")
	recs := []launch.Record{
		{ID: "ok", DateUTC: launchAt, Success: bp(true), StaticFireUTC: tp(launchAt.Add(-36 * time.Hour))},
		{ID: "late", DateUTC: launchAt, Success: bp(true), StaticFireUTC: tp(launchAt.Add(5 * time.Hour))},
		{ID: "none", DateUTC: launchAt, Success: bp(false)},
	}
	s := ComputeSnapshot(recs, 0, "r", launch.KindManual)
	if s.TotalLaunches != 3 || s.SuccessfulLaunches != 2 || s.FailedLaunches != 1 {
		t.Fatalf("counts = %+v", s)
	}
	if !s.AvgDelayHours.Valid || !s.AvgDelayHours.Decimal.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("avg delay = %+v", s.AvgDelayHours)
	}
	if !s.SuccessRate.Equal(decimal.RequireFromString("66.67")) {
		t.Fatalf("rate = %s", s.SuccessRate)
	}
}

func TestNullOutcomesAndSites(t *testing.T) {
	t.Parallel()
	early := kit.MustTime(t, "2006-03-24T22:30:00Z")
	late := kit.MustTime(t, "2022-12-01T00:00:00Z")
	recs := []launch.Record{
		{ID: "a", DateUTC: late, Success: nil, LaunchpadID: sp("pad-1")},
		{ID: "b", DateUTC: early, Success: bp(false), LaunchpadID: sp("pad-2")},
		{ID: "c", DateUTC: late, Success: bp(true), LaunchpadID: sp("pad-1")},
		{ID: "d", DateUTC: late, Success: bp(true)},
	}
	s := ComputeSnapshot(recs, 1, "r", launch.KindIncremental)
	if s.SuccessfulLaunches != 2 || s.FailedLaunches != 1 {
		t.Fatalf("null outcome leaked into counts: %+v", s)
	}
	if !s.SuccessRate.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("rate = %s (null outcomes still count in total)", s.SuccessRate)
	}
	if s.LaunchSites != 2 {
		t.Fatalf("sites = %d", s.LaunchSites)
	}
	if !s.EarliestLaunch.Equal(early) || !s.LatestLaunch.Equal(late) || !s.LastProcessedLaunch.Equal(late) {
		t.Fatalf("bounds = %v %v", s.EarliestLaunch, s.LatestLaunch)
	}
	if s.AvgDelayHours.Valid {
		t.Fatalf("no static fires, delay should be null")
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()
	d := kit.MustTime(t, "2024-01-01T00:00:00Z")
	recs := []launch.Record{{ID: "a", DateUTC: d, Success: bp(true), PayloadMassKg: mass("10.555")}}
	a := ComputeSnapshot(recs, 1, "r", launch.KindIncremental)
	b := ComputeSnapshot(recs, 1, "r", launch.KindIncremental)
	if !a.SuccessRate.Equal(b.SuccessRate) || !a.AvgPayloadMassKg.Decimal.Equal(b.AvgPayloadMassKg.Decimal) {
		t.Fatalf("not deterministic")
	}
	if a.AvgPayloadMassKg.Decimal.String() != "10.56" {
		t.Fatalf("mass rounding = %s", a.AvgPayloadMassKg.Decimal)
	}
}

func TestTrend(t *testing.T) {
	t.Parallel()
	t0 := kit.MustTime(t, "2024-01-01T00:00:00Z")
	hist := []launch.Snapshot{
		{ID: 2, CreatedAt: t0.Add(time.Hour), TotalLaunches: 12, SuccessRate: decimal.RequireFromString("75")},
		{ID: 1, CreatedAt: t0, TotalLaunches: 10, SuccessRate: decimal.RequireFromString("70")},
	}
	pts := Trend(hist, 0)
	if len(pts) != 2 || pts[0].SnapshotID != 1 || pts[1].SnapshotID != 2 {
		t.Fatalf("order = %+v", pts)
	}
	if pts[0].LaunchesDelta != 10 || pts[1].LaunchesDelta != 2 {
		t.Fatalf("deltas = %d %d", pts[0].LaunchesDelta, pts[1].LaunchesDelta)
	}
	if !pts[1].SuccessRateDelta.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("rate delta = %s", pts[1].SuccessRateDelta)
	}
	if hist[0].ID != 2 {
		t.Fatalf("input slice was reordered")
	}
}

func TestTrendPointJSON(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(TrendPoint{SuccessRate: decimal.NewFromInt(50), SuccessRateDelta: decimal.Zero})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	kit.MustContain(t, string(b), `"success_rate":"50.00"`)
	kit.MustContain(t, string(b), `"success_rate_delta":"0.00"`)
}

func TestTrendWindowDiffsAgainstPredecessor(t *testing.T) {
	t.Parallel()
	t0 := kit.MustTime(t, "2024-01-01T00:00:00Z")
	hist := []launch.Snapshot{
		{ID: 3, CreatedAt: t0.Add(2 * time.Hour), TotalLaunches: 13, SuccessRate: decimal.RequireFromString("76")},
		{ID: 2, CreatedAt: t0.Add(time.Hour), TotalLaunches: 12, SuccessRate: decimal.RequireFromString("75")},
		{ID: 1, CreatedAt: t0, TotalLaunches: 10, SuccessRate: decimal.RequireFromString("70")},
	}
	pts := Trend(hist, 2)
	if len(pts) != 2 || pts[0].SnapshotID != 2 || pts[1].SnapshotID != 3 {
		t.Fatalf("window = %+v", pts)
	}
	if pts[0].LaunchesDelta != 2 || !pts[0].SuccessRateDelta.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("first delta = %d %s", pts[0].LaunchesDelta, pts[0].SuccessRateDelta)
	}

	if all := Trend(hist, 5); len(all) != 3 || all[0].LaunchesDelta != 10 {
		t.Fatalf("short history = %+v", all)
	}
}
