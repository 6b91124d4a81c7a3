// Package guardrails holds the single-run lease and the per stage time budgets
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds each kind of stage; zero means no extra limit
type Timeouts struct {
	// Run caps the whole run
	Run time.Duration

	// Fetch caps each upstream stage (latest check, load, enrichment)
	Fetch time.Duration

	// DB caps each store stage
	DB time.Duration
}

// WithRun returns a context bounded by the run budget
func WithRun(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return child(parent, t.Run)
}

// ForFetch returns a sub context for an upstream stage
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return child(parent, t.Fetch)
}

// ForDB returns a sub context for a store stage
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return child(parent, t.DB)
}

// Remaining is the time left before ctx expires, zero without a deadline
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// child never extends a parent deadline
func child(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		d = rem
	}
	return context.WithTimeout(parent, d)
}
