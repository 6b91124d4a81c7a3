package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/services/ingest/domain"

	"github.com/shopspring/decimal"
)

func boolp(b bool) *bool    { return &b }
func strp(s string) *string { return &s }

func at(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func atp(s string) *time.Time {
	t := at(s)
	return &t
}

func mass(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// exerciseRepo runs the storage contract against a live runner
func exerciseRepo(t *testing.T, db repokit.TxRunner, b repokit.Binder[domain.StorageRepo]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tx := func(fn func(r domain.StorageRepo) error) {
		t.Helper()
		if err := db.Tx(ctx, func(q repokit.Queryer) error { return fn(b.Bind(q)) }); err != nil {
			t.Fatalf("tx: %v", err)
		}
	}

	tx(func(r domain.StorageRepo) error { return r.EnsureSchema(ctx) })
	tx(func(r domain.StorageRepo) error { return r.EnsureSchema(ctx) })

	tx(func(r domain.StorageRepo) error {
		empty, err := r.IsEmpty(ctx)
		if err != nil || !empty {
			t.Fatalf("IsEmpty = %v, %v", empty, err)
		}
		cur, err := r.GetCursor(ctx)
		if err != nil || !cur.IsZero() {
			t.Fatalf("fresh cursor = %+v, %v", cur, err)
		}
		if _, err := r.GetLatestSnapshot(ctx); !errors.Is(err, perr.ErrNotFound) {
			t.Fatalf("latest on empty = %v", err)
		}
		return nil
	})

	first := []launch.Record{
		{ID: "a", Name: "FalconSat", DateUTC: at("2006-03-24T22:30:00Z"), Success: boolp(false), PayloadIDs: []string{}, LaunchpadID: strp("kwaj")},
		{ID: "b", Name: "Crew-5", DateUTC: at("2022-10-05T16:00:00Z"), Success: boolp(true), PayloadIDs: []string{"p1", "p2"},
			PayloadMassKg: mass("1500.5"), LaunchpadID: strp("slc40"), StaticFireUTC: atp("2022-10-01T10:00:00Z")},
	}
	tx(func(r domain.StorageRepo) error {
		ins, upd, err := r.UpsertRecords(ctx, first)
		if err != nil || ins != 2 || upd != 0 {
			t.Fatalf("upsert = %d/%d, %v", ins, upd, err)
		}
		return nil
	})

	// same id again overwrites every field
	changed := first[1]
	changed.Name = "Crew-5 (renamed)"
	changed.Success = nil
	changed.PayloadIDs = []string{"p3"}
	changed.PayloadMassKg = decimal.NullDecimal{}
	changed.StaticFireUTC = nil
	tx(func(r domain.StorageRepo) error {
		ins, upd, err := r.UpsertRecords(ctx, []launch.Record{changed})
		if err != nil || ins != 0 || upd != 1 {
			t.Fatalf("re-upsert = %d/%d, %v", ins, upd, err)
		}
		got, err := r.GetRecord(ctx, "b")
		if err != nil {
			t.Fatalf("GetRecord: %v", err)
		}
		if got.Name != changed.Name || got.Success != nil || got.PayloadMassKg.Valid || got.StaticFireUTC != nil ||
			len(got.PayloadIDs) != 1 || got.PayloadIDs[0] != "p3" || !got.DateUTC.Equal(changed.DateUTC) {
			t.Fatalf("overwrite lost: %+v", got)
		}
		if _, err := r.GetRecord(ctx, "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
			t.Fatalf("missing record err = %v", err)
		}
		all, err := r.AllRecords(ctx)
		if err != nil || len(all) != 2 || all[0].ID != "a" {
			t.Fatalf("AllRecords = %+v, %v", all, err)
		}
		if all[0].PayloadIDs == nil || *all[0].Success || *all[0].LaunchpadID != "kwaj" {
			t.Fatalf("record a = %+v", all[0])
		}
		empty, err := r.IsEmpty(ctx)
		if err != nil || empty {
			t.Fatalf("IsEmpty after upsert = %v, %v", empty, err)
		}
		return nil
	})

	c1 := at("2022-10-05T16:00:00Z")
	tx(func(r domain.StorageRepo) error {
		ok, err := r.SetCursor(ctx, time.Time{}, c1)
		if err != nil || !ok {
			t.Fatalf("first CAS = %v, %v", ok, err)
		}
		ok, err = r.SetCursor(ctx, time.Time{}, c1.Add(time.Hour))
		if err != nil || ok {
			t.Fatalf("stale CAS should lose: %v, %v", ok, err)
		}
		cur, err := r.GetCursor(ctx)
		if err != nil || !cur.LastFetched.Equal(c1) || cur.UpdatedAt.IsZero() {
			t.Fatalf("cursor = %+v, %v", cur, err)
		}
		ok, err = r.SetCursor(ctx, c1, c1.Add(time.Hour))
		if err != nil || !ok {
			t.Fatalf("second CAS = %v, %v", ok, err)
		}
		return nil
	})

	created := at("2024-01-01T00:00:00Z")
	var ids []int64
	tx(func(r domain.StorageRepo) error {
		for i, kind := range []launch.SnapshotKind{launch.KindInitial, launch.KindIncremental, launch.KindManual} {
			s, err := r.AppendSnapshot(ctx, launch.Snapshot{
				RunID:              "run-" + string(kind),
				Kind:               kind,
				TotalLaunches:      2 + i,
				SuccessfulLaunches: 1,
				FailedLaunches:     1,
				SuccessRate:        decimal.RequireFromString("50.00"),
				EarliestLaunch:     atp("2006-03-24T22:30:00Z"),
				LatestLaunch:       atp("2022-10-05T16:00:00Z"),
				LaunchSites:        2,
				AvgPayloadMassKg:   mass("1500.5"),
				AddedInBatch:       i,
				CreatedAt:          created.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				t.Fatalf("append %s: %v", kind, err)
			}
			if s.ID == 0 {
				t.Fatalf("append %s: no id", kind)
			}
			ids = append(ids, s.ID)
		}
		if _, err := r.AppendSnapshot(ctx, launch.Snapshot{Kind: "weekly"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("bad kind err = %v", err)
		}
		return nil
	})

	tx(func(r domain.StorageRepo) error {
		latest, err := r.GetLatestSnapshot(ctx)
		if err != nil || latest.ID != ids[2] || latest.Kind != launch.KindManual {
			t.Fatalf("latest = %+v, %v", latest, err)
		}
		if !latest.SuccessRate.Equal(decimal.NewFromInt(50)) || latest.AvgDelayHours.Valid || !latest.AvgPayloadMassKg.Valid {
			t.Fatalf("latest decimals = %+v", latest)
		}
		if latest.EarliestLaunch == nil || !latest.EarliestLaunch.Equal(at("2006-03-24T22:30:00Z")) {
			t.Fatalf("latest earliest = %v", latest.EarliestLaunch)
		}
		hist, err := r.SnapshotHistory(ctx, 2)
		if err != nil || len(hist) != 2 || hist[0].ID != ids[2] || hist[1].ID != ids[1] {
			t.Fatalf("history = %+v, %v", hist, err)
		}
		none, err := r.SnapshotHistory(ctx, 0)
		if err != nil || len(none) != 0 || none == nil {
			t.Fatalf("zero limit = %#v, %v", none, err)
		}
		return nil
	})
}
