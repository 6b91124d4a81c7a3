// Package time contains time related helpers
package time

import (
	"errors"
	"strings"
	"time"
)

// ErrNoTimestamp is returned by ParseUTC for blank input
var ErrNoTimestamp = errors.New("empty timestamp")

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// ParseUTC parses ISO-8601 style timestamps seen on upstream feeds and returns them in UTC.
// Inputs without an offset are read as UTC
func ParseUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoTimestamp
	}
	var firstErr error
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Stamp renders t as YYYYmmdd_HHMMSS in UTC
func Stamp(t time.Time) string { return t.UTC().Format("20060102_150405") }
