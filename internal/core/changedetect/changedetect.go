// Package changedetect decides whether a run has work to do and which window to fetch
package changedetect

import (
	"context"
	"time"

	"launchpipe/internal/core/launch"
	perr "launchpipe/internal/platform/errors"
	ptime "launchpipe/internal/platform/time"
)

// Action is the detector's verdict
type Action string

const (
	// InitialLoad fetches the whole upstream history into an empty store
	InitialLoad Action = "initial_load"
	// EarlyExit means upstream has nothing newer than the cursor
	EarlyExit Action = "early_exit"
	// IncrementalLoad fetches launches dated at or after Since
	IncrementalLoad Action = "incremental_load"
)

// State is the slice of the store the detector reads
type State interface {
	IsEmpty(ctx context.Context) (bool, error)
	GetCursor(ctx context.Context) (launch.Cursor, error)
}

// LatestSource returns the most recent upstream launch
type LatestSource interface {
	GetLatest(ctx context.Context) (launch.RawRecord, error)
}

// Decision carries the verdict plus what the detector saw
type Decision struct {
	Action Action
	// Since is the inclusive lower bound for IncrementalLoad; zero means full history
	Since    time.Time
	Cursor   time.Time
	Latest   time.Time
	APICalls int
	// Fallback marks an IncrementalLoad forced by a failed latest check
	Fallback  bool
	LatestErr error
}

// DecideAction reads the store then, unless it is empty, asks upstream for the latest launch once
// a failed latest check never fails the call; store failures do
func DecideAction(ctx context.Context, st State, src LatestSource) (Decision, error) {
	empty, err := st.IsEmpty(ctx)
	if err != nil {
		return Decision{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "change detect: is empty")
	}
	if empty {
		return Decision{Action: InitialLoad}, nil
	}

	cur, err := st.GetCursor(ctx)
	if err != nil {
		return Decision{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "change detect: read cursor")
	}
	d := Decision{Cursor: cur.LastFetched, APICalls: 1}

	raw, err := src.GetLatest(ctx)
	if err == nil {
		d.Latest, err = ptime.ParseUTC(raw.DateUTC)
	}
	if err != nil {
		d.Action, d.Fallback, d.LatestErr = IncrementalLoad, true, err
		return d, nil
	}

	if !d.Latest.After(d.Cursor) {
		d.Action = EarlyExit
		return d, nil
	}
	d.Action, d.Since = IncrementalLoad, d.Cursor
	return d, nil
}
