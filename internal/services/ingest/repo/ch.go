package repo

import (
	"context"

	"launchpipe/internal/core/launch"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/store"
	"launchpipe/internal/services/ingest/domain"

	"github.com/shopspring/decimal"
)

// MirrorTable is the clickhouse table snapshots are copied into
const MirrorTable = "launch_snapshots"

// CHMirror copies appended snapshots into clickhouse for analytics
type CHMirror struct {
	ch    store.Clickhouse
	table string
}

var _ domain.SnapshotSink = (*CHMirror)(nil)

// NewCHMirror returns nil when ch is nil so callers can skip the sink
func NewCHMirror(ch store.Clickhouse) *CHMirror {
	if ch == nil {
		return nil
	}
	return &CHMirror{ch: ch, table: MirrorTable}
}

// EnsureSchema creates the mirror table
func (m *CHMirror) EnsureSchema(ctx context.Context) error {
	return m.ch.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+m.table+` (
			snapshot_id             Int64,
			run_id                  String,
			snapshot_type           LowCardinality(String),
			total_launches          UInt32,
			successful_launches     UInt32,
			failed_launches         UInt32,
			success_rate            Decimal(5, 2),
			earliest_launch_date    Nullable(DateTime64(3, 'UTC')),
			latest_launch_date      Nullable(DateTime64(3, 'UTC')),
			total_launch_sites      UInt32,
			average_payload_mass_kg Nullable(Decimal(12, 2)),
			average_delay_hours     Nullable(Decimal(12, 2)),
			launches_added_in_batch UInt32,
			created_at              DateTime64(3, 'UTC')
		)
		ENGINE = ReplacingMergeTree
		ORDER BY (created_at, snapshot_id)`)
}

// Mirror appends one snapshot row; ReplacingMergeTree folds replays of the same id
func (m *CHMirror) Mirror(ctx context.Context, s launch.Snapshot) error {
	row := []any{
		s.ID,
		s.RunID,
		string(s.Kind),
		uint32(s.TotalLaunches),
		uint32(s.SuccessfulLaunches),
		uint32(s.FailedLaunches),
		s.SuccessRate,
		utcPtr(s.EarliestLaunch),
		utcPtr(s.LatestLaunch),
		uint32(s.LaunchSites),
		nullDec(s.AvgPayloadMassKg),
		nullDec(s.AvgDelayHours),
		uint32(s.AddedInBatch),
		s.CreatedAt.UTC(),
	}
	if err := m.ch.Insert(ctx, m.table, [][]any{row}); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "mirror snapshot %d", s.ID)
	}
	return nil
}

func nullDec(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
