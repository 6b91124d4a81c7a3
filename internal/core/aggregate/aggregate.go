// Package aggregate computes cumulative launch snapshots
//
// ComputeSnapshot is a pure function of the full record set. Averages skip
// null inputs. A static fire dated after its launch is left out of the delay
// average but still counts toward totals and outcomes.
package aggregate

import (
	"time"

	"launchpipe/internal/core/launch"
	ptime "launchpipe/internal/platform/time"

	"github.com/shopspring/decimal"
)

// Places is the rounding applied to every derived decimal
const Places = launch.Places

var hundred = decimal.NewFromInt(100)

// ComputeSnapshot summarises records; CreatedAt and ID are left for the store
func ComputeSnapshot(records []launch.Record, added int, runID string, kind launch.SnapshotKind) launch.Snapshot {
	s := launch.Snapshot{
		RunID:         runID,
		Kind:          kind,
		TotalLaunches: len(records),
		AddedInBatch:  added,
	}

	var (
		earliest, latest time.Time
		sites            = map[string]struct{}{}
		massSum          = decimal.Zero
		massN            int64
		delaySum         = decimal.Zero
		delayN           int64
	)
	for i, r := range records {
		if r.Success != nil {
			if *r.Success {
				s.SuccessfulLaunches++
			} else {
				s.FailedLaunches++
			}
		}
		if i == 0 || r.DateUTC.Before(earliest) {
			earliest = r.DateUTC
		}
		if i == 0 || r.DateUTC.After(latest) {
			latest = r.DateUTC
		}
		if r.LaunchpadID != nil && *r.LaunchpadID != "" {
			sites[*r.LaunchpadID] = struct{}{}
		}
		if r.PayloadMassKg.Valid {
			massSum = massSum.Add(r.PayloadMassKg.Decimal)
			massN++
		}
		if h, ok := DelayHours(r); ok {
			delaySum = delaySum.Add(h)
			delayN++
		}
	}

	s.SuccessRate = SuccessRate(s.SuccessfulLaunches, s.TotalLaunches)
	s.EarliestLaunch = ptime.Ptr(earliest)
	s.LatestLaunch = ptime.Ptr(latest)
	s.LastProcessedLaunch = ptime.Ptr(latest)
	s.LaunchSites = len(sites)
	s.AvgPayloadMassKg = mean(massSum, massN)
	s.AvgDelayHours = mean(delaySum, delayN)
	return s
}

// SuccessRate is round(successes/total*100, 2), zero when total is zero
func SuccessRate(successes, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero.Round(Places)
	}
	return decimal.NewFromInt(int64(successes)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(Places)
}

// DelayHours is launch minus static fire in hours; ok is false when there is no
// static fire or it is anomalous (after the launch)
func DelayHours(r launch.Record) (decimal.Decimal, bool) {
	if r.StaticFireUTC == nil || r.Anomalous() {
		return decimal.Zero, false
	}
	secs := int64(r.DateUTC.Sub(*r.StaticFireUTC) / time.Second)
	return decimal.NewFromInt(secs).Div(decimal.NewFromInt(3600)), true
}

func mean(sum decimal.Decimal, n int64) decimal.NullDecimal {
	if n == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: sum.Div(decimal.NewFromInt(n)).Round(Places), Valid: true}
}
