package repo

import (
	"encoding/json"

	perr "launchpipe/internal/platform/errors"
)

var sqliteDialect = &dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS raw_launches (
			launch_id            TEXT PRIMARY KEY,
			mission_name         TEXT NOT NULL DEFAULT '',
			date_utc             TIMESTAMP NOT NULL,
			success              BOOLEAN,
			payload_ids          TEXT NOT NULL DEFAULT '[]',
			payload_mass_kg      TEXT,
			launchpad_id         TEXT,
			static_fire_date_utc TIMESTAMP,
			ingested_at          TIMESTAMP NOT NULL,
			updated_at           TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_raw_launches_date_utc ON raw_launches (date_utc)`,
		`CREATE TABLE IF NOT EXISTS launch_aggregations (
			id                         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                     TEXT NOT NULL,
			snapshot_type              TEXT NOT NULL CHECK (snapshot_type IN ('initial','incremental','manual')),
			total_launches             INTEGER NOT NULL,
			total_successful_launches  INTEGER NOT NULL,
			total_failed_launches      INTEGER NOT NULL,
			success_rate               TEXT NOT NULL,
			earliest_launch_date       TIMESTAMP,
			latest_launch_date         TIMESTAMP,
			total_launch_sites         INTEGER NOT NULL,
			average_payload_mass_kg    TEXT,
			average_delay_hours        TEXT,
			launches_added_in_batch    INTEGER NOT NULL,
			last_processed_launch_date TIMESTAMP,
			created_at                 TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ingestion_state (
			id                INTEGER PRIMARY KEY CHECK (id = 1),
			last_fetched_date TIMESTAMP,
			updated_at        TIMESTAMP
		)`,
		`INSERT OR IGNORE INTO ingestion_state (id) VALUES (1)`,
		`CREATE TABLE IF NOT EXISTS ingestion_lease (
			name       TEXT PRIMARY KEY,
			owner      TEXT,
			claimed_at INTEGER,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT OR IGNORE INTO ingestion_lease (name) VALUES ('ingest')`,
	},

	isEmpty:   `SELECT NOT EXISTS (SELECT 1 FROM raw_launches)`,
	getCursor: `SELECT last_fetched_date, updated_at FROM ingestion_state WHERE id = 1`,
	setCursor: `
		UPDATE ingestion_state
		   SET last_fetched_date = ?1, updated_at = ?2
		 WHERE id = 1 AND last_fetched_date IS ?3`,
	exists: `SELECT EXISTS (SELECT 1 FROM raw_launches WHERE launch_id = ?)`,
	upsert: `
		INSERT INTO raw_launches (` + launchCols + `, ingested_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?9)
		ON CONFLICT (launch_id) DO UPDATE SET
			mission_name         = excluded.mission_name,
			date_utc             = excluded.date_utc,
			success              = excluded.success,
			payload_ids          = excluded.payload_ids,
			payload_mass_kg      = excluded.payload_mass_kg,
			launchpad_id         = excluded.launchpad_id,
			static_fire_date_utc = excluded.static_fire_date_utc,
			updated_at           = excluded.updated_at`,
	allRecords: `SELECT ` + launchCols + ` FROM raw_launches ORDER BY date_utc, launch_id`,
	getRecord:  `SELECT ` + launchCols + ` FROM raw_launches WHERE launch_id = ?`,
	appendSnapshot: `
		INSERT INTO launch_aggregations (
			run_id, snapshot_type,
			total_launches, total_successful_launches, total_failed_launches, success_rate,
			earliest_launch_date, latest_launch_date, total_launch_sites,
			average_payload_mass_kg, average_delay_hours, launches_added_in_batch,
			last_processed_launch_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
	latestSnapshot: `SELECT ` + snapshotCols + ` FROM launch_aggregations ORDER BY id DESC LIMIT 1`,
	history:        `SELECT ` + snapshotCols + ` FROM launch_aggregations ORDER BY id DESC LIMIT ?`,

	encodeIDs: func(ids []string) (any, error) {
		if ids == nil {
			ids = []string{}
		}
		b, err := json.Marshal(ids)
		return string(b), err
	},
	idsDest: func() (any, func() ([]string, error)) {
		var raw string
		return &raw, func() ([]string, error) {
			ids := []string{}
			if raw == "" {
				return ids, nil
			}
			err := json.Unmarshal([]byte(raw), &ids)
			return ids, err
		}
	},
	wrap: func(err error, msg string) error { return perr.FromSQLite(err, "sqlite: "+msg) },
}
