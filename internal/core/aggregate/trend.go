package aggregate

import (
	"encoding/json"
	"sort"
	"time"

	"launchpipe/internal/core/launch"

	"github.com/shopspring/decimal"
)

// TrendPoint is the change between one snapshot and the one before it
type TrendPoint struct {
	SnapshotID       int64               `json:"snapshot_id"`
	RunID            string              `json:"run_id"`
	Kind             launch.SnapshotKind `json:"snapshot_type"`
	At               time.Time           `json:"created_at"`
	TotalLaunches    int                 `json:"total_launches"`
	LaunchesDelta    int                 `json:"launches_delta"`
	SuccessRate      decimal.Decimal     `json:"success_rate"`
	SuccessRateDelta decimal.Decimal     `json:"success_rate_delta"`
}

// MarshalJSON keeps the rate columns at launch.Places digits
func (p TrendPoint) MarshalJSON() ([]byte, error) {
	type plain TrendPoint
	return json.Marshal(struct {
		plain
		SuccessRate      string `json:"success_rate"`
		SuccessRateDelta string `json:"success_rate_delta"`
	}{plain(p), launch.Fixed(p.SuccessRate), launch.Fixed(p.SuccessRateDelta)})
}

// Trend orders history oldest first and diffs consecutive snapshots, returning at most
// limit points. When history holds more than limit snapshots the oldest only serves as
// the base for the first delta; otherwise the first point diffs against an empty store.
// limit <= 0 keeps every snapshot.
func Trend(history []launch.Snapshot, limit int) []TrendPoint {
	hs := append([]launch.Snapshot(nil), history...)
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].CreatedAt.Equal(hs[j].CreatedAt) {
			return hs[i].ID < hs[j].ID
		}
		return hs[i].CreatedAt.Before(hs[j].CreatedAt)
	})

	prevTotal, prevRate := 0, decimal.Zero
	if limit > 0 && len(hs) > limit {
		base := hs[len(hs)-limit-1]
		prevTotal, prevRate = base.TotalLaunches, base.SuccessRate
		hs = hs[len(hs)-limit:]
	}

	out := make([]TrendPoint, 0, len(hs))
	for _, s := range hs {
		out = append(out, TrendPoint{
			SnapshotID:       s.ID,
			RunID:            s.RunID,
			Kind:             s.Kind,
			At:               s.CreatedAt,
			TotalLaunches:    s.TotalLaunches,
			LaunchesDelta:    s.TotalLaunches - prevTotal,
			SuccessRate:      s.SuccessRate,
			SuccessRateDelta: s.SuccessRate.Sub(prevRate).Round(Places),
		})
		prevTotal, prevRate = s.TotalLaunches, s.SuccessRate
	}
	return out
}
