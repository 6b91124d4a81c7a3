package time

import (
	"errors"
	"testing"
	"time"
)

func TestParseUTC(t *testing.T) {
	t.Parallel()
	want := time.Date(2022, 12, 5, 21, 27, 0, 0, time.UTC)
	for _, in := range []string{
		"2022-12-05T21:27:00.000Z",
		"2022-12-05T16:27:00-05:00",
		"2022-12-05T21:27:00",
		" 2022-12-05T21:27:00Z ",
	} {
		got, err := ParseUTC(in)
		if err != nil {
			t.Fatalf("ParseUTC(%q): %v", in, err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("ParseUTC(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseUTC(""); !errors.Is(err, ErrNoTimestamp) {
		t.Fatalf("blank err = %v", err)
	}
	if _, err := ParseUTC("yesterday"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPtrAndStamp(t *testing.T) {
	t.Parallel()
	if Ptr(time.Time{}) != nil {
		t.Fatalf("zero time should map to nil")
	}
	ts := time.Date(2024, 3, 9, 7, 5, 3, 0, time.FixedZone("x", 3600))
	if p := Ptr(ts); p == nil || !p.Equal(ts) {
		t.Fatalf("Ptr mismatch")
	}
	if got := Stamp(ts); got != "20240309_060503" {
		t.Fatalf("Stamp = %q", got)
	}
}
