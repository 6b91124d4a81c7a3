package validate

import (
	"testing"

	"launchpipe/internal/core/launch"

	"github.com/shopspring/decimal"
)

func sp(s string) *string { return &s }

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestOneReasons(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		in     launch.RawRecord
		reason launch.RejectReason
		field  string
	}{
		{name: "missing id", in: launch.RawRecord{DateUTC: "2020-01-01T00:00:00Z"}, reason: launch.ReasonMissingField, field: "id"},
		{name: "blank id", in: launch.RawRecord{ID: "  ", DateUTC: "2020-01-01T00:00:00Z"}, reason: launch.ReasonMissingField, field: "id"},
		{name: "missing date", in: launch.RawRecord{ID: "a"}, reason: launch.ReasonMissingField, field: "date_utc"},
		{name: "garbage date", in: launch.RawRecord{ID: "a", DateUTC: "yesterday"}, reason: launch.ReasonBadTimestamp, field: "date_utc"},
		{name: "garbage static fire", in: launch.RawRecord{ID: "a", DateUTC: "2020-01-01T00:00:00Z", StaticFireDateUTC: sp("13/45/2020")}, reason: launch.ReasonBadTimestamp, field: "static_fire_date_utc"},
		{name: "negative mass", in: launch.RawRecord{ID: "a", DateUTC: "2020-01-01T00:00:00Z", PayloadMassKg: dp("-1.5")}, reason: launch.ReasonNegativeMass, field: "payload_mass_kg"},
		{name: "missing id wins over bad date", in: launch.RawRecord{DateUTC: "nope"}, reason: launch.ReasonMissingField, field: "id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, rej := One(tc.in)
			if rej == nil {
				t.Fatalf("expected rejection")
			}
			if rej.Reason != tc.reason || rej.Field != tc.field {
				t.Fatalf("got %+v, want reason=%s field=%s", rej, tc.reason, tc.field)
			}
		})
	}
}

func TestOneNormalizes(t *testing.T) {
	t.Parallel()
	ok := true
	rec, rej := One(launch.RawRecord{
		ID:                " 5eb87cd9ffd86e000604b32a ",
		Name:              "  FalconSat  ",
		DateUTC:           "2006-03-24T22:30:00.000Z",
		Success:           &ok,
		LaunchpadID:       sp(" 5e9e4502f5090995de566f86 "),
		StaticFireDateUTC: sp(""),
		PayloadMassKg:     dp("20"),
	})
	if rej != nil {
		t.Fatalf("unexpected rejection %+v", rej)
	}
	if rec.ID != "5eb87cd9ffd86e000604b32a" || rec.Name != "FalconSat" {
		t.Fatalf("id/name = %q/%q", rec.ID, rec.Name)
	}
	if rec.PayloadIDs == nil || len(rec.PayloadIDs) != 0 {
		t.Fatalf("payload ids should be empty non-nil, got %#v", rec.PayloadIDs)
	}
	if rec.StaticFireUTC != nil {
		t.Fatalf("blank static fire should be nil")
	}
	if rec.DateUTC.Location().String() != "UTC" || rec.DateUTC.Year() != 2006 {
		t.Fatalf("date = %v", rec.DateUTC)
	}
	if !rec.PayloadMassKg.Valid || !rec.PayloadMassKg.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("mass = %+v", rec.PayloadMassKg)
	}
	if rec.LaunchpadID == nil || *rec.LaunchpadID != "5e9e4502f5090995de566f86" {
		t.Fatalf("launchpad = %v", rec.LaunchpadID)
	}
}

func TestZeroMassIsValid(t *testing.T) {
	t.Parallel()
	rec, rej := One(launch.RawRecord{ID: "z", DateUTC: "2020-01-01T00:00:00Z", PayloadMassKg: dp("0")})
	if rej != nil || !rec.PayloadMassKg.Valid {
		t.Fatalf("rec=%+v rej=%+v", rec, rej)
	}
}

func TestValidateBatchCounts(t *testing.T) {
	t.Parallel()
	raw := []launch.RawRecord{
		{ID: "a", DateUTC: "2020-01-01T00:00:00Z"},
		{DateUTC: "2020-01-02T00:00:00Z"},
		{ID: "c"},
		{ID: "d", DateUTC: "2020-01-04T00:00:00Z", Payloads: []string{"p1"}},
		{ID: "e", DateUTC: "bad"},
	}
	valid, rejected := Validate(raw)
	if len(valid) != 2 || len(rejected) != 3 {
		t.Fatalf("valid=%d rejected=%d", len(valid), len(rejected))
	}
	for _, v := range valid {
		if v.ID == "" || v.DateUTC.IsZero() {
			t.Fatalf("record missing id or date leaked into valid set: %+v", v)
		}
	}
	counts := CountByReason(rejected)
	if counts[launch.ReasonMissingField] != 2 || counts[launch.ReasonBadTimestamp] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	if valid[0].ID != "a" || valid[1].ID != "d" || len(valid[1].PayloadIDs) != 1 {
		t.Fatalf("order or payloads lost: %+v", valid)
	}
}

func TestValidateEmpty(t *testing.T) {
	t.Parallel()
	valid, rejected := Validate(nil)
	if valid == nil || len(valid) != 0 || rejected != nil {
		t.Fatalf("valid=%#v rejected=%#v", valid, rejected)
	}
}
