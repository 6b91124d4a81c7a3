package domain

import (
	"context"
	"time"

	"launchpipe/internal/core/launch"
)

// Runner is the public entrypoint exposed by the module
type Runner interface {
	// Run executes one ingestion run; the report is returned even on failure
	Run(ctx context.Context, opt RunOptions) Report
}

// Source is the upstream launch feed
type Source interface {
	GetLatest(ctx context.Context) (launch.RawRecord, error)
	GetSince(ctx context.Context, since time.Time) ([]launch.RawRecord, error)
	GetAll(ctx context.Context) ([]launch.RawRecord, error)

	// Enrich fills payload masses in place
	Enrich(ctx context.Context, raws []launch.RawRecord) error

	// Calls counts upstream round trips so far
	Calls() int64
}

// StorageRepo is everything a run persists or reads, bound to one Queryer
type StorageRepo interface {
	// EnsureSchema creates tables and seeds the cursor row; idempotent
	EnsureSchema(ctx context.Context) error

	IsEmpty(ctx context.Context) (bool, error)
	GetCursor(ctx context.Context) (launch.Cursor, error)

	// SetCursor moves the cursor from expected to next; false when expected no longer holds
	SetCursor(ctx context.Context, expected, next time.Time) (bool, error)

	// UpsertRecords writes every record by id, overwriting all mutable fields
	UpsertRecords(ctx context.Context, recs []launch.Record) (inserted, updated int, err error)

	AllRecords(ctx context.Context) ([]launch.Record, error)
	GetRecord(ctx context.Context, id string) (launch.Record, error)

	// AppendSnapshot stores s and returns it with ID and CreatedAt set
	AppendSnapshot(ctx context.Context, s launch.Snapshot) (launch.Snapshot, error)

	// GetLatestSnapshot returns perr.ErrNotFound when no snapshot exists
	GetLatestSnapshot(ctx context.Context) (launch.Snapshot, error)

	// SnapshotHistory returns up to limit snapshots, newest first
	SnapshotHistory(ctx context.Context, limit int) ([]launch.Snapshot, error)
}

// SnapshotSink mirrors appended snapshots to a secondary store
type SnapshotSink interface {
	Mirror(ctx context.Context, s launch.Snapshot) error
}

// LeaseFunc holds the single-run lease around do; ErrConcurrentRun when held elsewhere
type LeaseFunc func(ctx context.Context, do func(context.Context) error) error
