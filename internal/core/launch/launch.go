// Package launch holds the canonical launch, cursor and snapshot types shared by every layer
package launch

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is a launch as the source hands it over, before validation
// timestamps stay strings so the validator can tell missing from malformed
type RawRecord struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	DateUTC           string           `json:"date_utc"`
	Success           *bool            `json:"success"`
	Payloads          []string         `json:"payloads"`
	PayloadMassKg     *decimal.Decimal `json:"payload_mass_kg,omitempty"`
	LaunchpadID       *string          `json:"launchpad"`
	StaticFireDateUTC *string          `json:"static_fire_date_utc"`
}

// Record is one validated launch
type Record struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	DateUTC       time.Time           `json:"date_utc"`
	Success       *bool               `json:"success"`
	PayloadIDs    []string            `json:"payload_ids"`
	PayloadMassKg decimal.NullDecimal `json:"payload_mass_kg"`
	LaunchpadID   *string             `json:"launchpad_id"`
	StaticFireUTC *time.Time          `json:"static_fire_date_utc"`
}

// Anomalous reports a static fire recorded after the launch it belongs to
func (r Record) Anomalous() bool {
	return r.StaticFireUTC != nil && r.StaticFireUTC.After(r.DateUTC)
}

// Cursor is the single ingestion-state row
// LastFetched is the zero time until the first successful merge
type Cursor struct {
	LastFetched time.Time `json:"last_fetched"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsZero reports a cursor that has never been advanced
func (c Cursor) IsZero() bool { return c.LastFetched.IsZero() }

// SnapshotKind discriminates snapshot rows
type SnapshotKind string

const (
	// KindInitial is produced by the first load into an empty store
	KindInitial SnapshotKind = "initial"
	// KindIncremental is produced by every later run
	KindIncremental SnapshotKind = "incremental"
	// KindManual is produced on demand without fetching
	KindManual SnapshotKind = "manual"
)

// Valid reports whether k is a known kind
func (k SnapshotKind) Valid() bool {
	switch k {
	case KindInitial, KindIncremental, KindManual:
		return true
	}
	return false
}

// Snapshot is one cumulative aggregation row; never updated once appended
type Snapshot struct {
	ID                  int64               `json:"id"`
	RunID               string              `json:"run_id"`
	Kind                SnapshotKind        `json:"snapshot_type"`
	TotalLaunches       int                 `json:"total_launches"`
	SuccessfulLaunches  int                 `json:"total_successful_launches"`
	FailedLaunches      int                 `json:"total_failed_launches"`
	SuccessRate         decimal.Decimal     `json:"success_rate"`
	EarliestLaunch      *time.Time          `json:"earliest_launch_date"`
	LatestLaunch        *time.Time          `json:"latest_launch_date"`
	LaunchSites         int                 `json:"total_launch_sites"`
	AvgPayloadMassKg    decimal.NullDecimal `json:"average_payload_mass_kg"`
	AvgDelayHours       decimal.NullDecimal `json:"average_delay_hours"`
	AddedInBatch        int                 `json:"launches_added_in_batch"`
	LastProcessedLaunch *time.Time          `json:"last_processed_launch_date"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Places is the precision of every derived rate and average
const Places = 2

// MarshalJSON renders the derived decimals with exactly Places digits, so a
// zero rate reads "0.00" rather than "0"
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		SuccessRate      string  `json:"success_rate"`
		AvgPayloadMassKg *string `json:"average_payload_mass_kg"`
		AvgDelayHours    *string `json:"average_delay_hours"`
	}{plain(s), Fixed(s.SuccessRate), fixedNull(s.AvgPayloadMassKg), fixedNull(s.AvgDelayHours)})
}

// Fixed formats d with Places digits after the point
func Fixed(d decimal.Decimal) string { return d.StringFixed(Places) }

func fixedNull(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := Fixed(d.Decimal)
	return &s
}

// RejectReason names why the validator dropped a raw record
type RejectReason string

const (
	ReasonMissingField RejectReason = "missing_required_field"
	ReasonBadTimestamp RejectReason = "invalid_timestamp"
	ReasonNegativeMass RejectReason = "invalid_payload_mass"
)

// Rejection pairs a dropped record id (possibly blank) with its reason
type Rejection struct {
	ID     string       `json:"id,omitempty"`
	Reason RejectReason `json:"reason"`
	Field  string       `json:"field,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// MaxDate returns the latest DateUTC in recs, zero when empty
func MaxDate(recs []Record) time.Time {
	var out time.Time
	for _, r := range recs {
		if r.DateUTC.After(out) {
			out = r.DateUTC
		}
	}
	return out
}
