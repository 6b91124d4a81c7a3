package repo

import (
	perr "launchpipe/internal/platform/errors"
)

const launchCols = `launch_id, mission_name, date_utc, success, payload_ids, payload_mass_kg, launchpad_id, static_fire_date_utc`

const snapshotCols = `id, run_id, snapshot_type,
	total_launches, total_successful_launches, total_failed_launches, success_rate,
	earliest_launch_date, latest_launch_date, total_launch_sites,
	average_payload_mass_kg, average_delay_hours, launches_added_in_batch,
	last_processed_launch_date, created_at`

var pgDialect = &dialect{
	name: "pg",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS raw_launches (
			launch_id            TEXT PRIMARY KEY,
			mission_name         TEXT NOT NULL DEFAULT '',
			date_utc             TIMESTAMPTZ NOT NULL,
			success              BOOLEAN,
			payload_ids          TEXT[] NOT NULL DEFAULT '{}',
			payload_mass_kg      NUMERIC(12,2) CHECK (payload_mass_kg IS NULL OR payload_mass_kg >= 0),
			launchpad_id         TEXT,
			static_fire_date_utc TIMESTAMPTZ,
			ingested_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_raw_launches_date_utc ON raw_launches (date_utc)`,
		`CREATE TABLE IF NOT EXISTS launch_aggregations (
			id                         BIGSERIAL PRIMARY KEY,
			run_id                     TEXT NOT NULL,
			snapshot_type              TEXT NOT NULL CHECK (snapshot_type IN ('initial','incremental','manual')),
			total_launches             INTEGER NOT NULL,
			total_successful_launches  INTEGER NOT NULL,
			total_failed_launches      INTEGER NOT NULL,
			success_rate               NUMERIC(5,2) NOT NULL,
			earliest_launch_date       TIMESTAMPTZ,
			latest_launch_date         TIMESTAMPTZ,
			total_launch_sites         INTEGER NOT NULL,
			average_payload_mass_kg    NUMERIC(12,2),
			average_delay_hours        NUMERIC(12,2),
			launches_added_in_batch    INTEGER NOT NULL,
			last_processed_launch_date TIMESTAMPTZ,
			created_at                 TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_launch_aggregations_created ON launch_aggregations (created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS ingestion_state (
			id                SMALLINT PRIMARY KEY CHECK (id = 1),
			last_fetched_date TIMESTAMPTZ,
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`INSERT INTO ingestion_state (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS ingestion_lease (
			name       TEXT PRIMARY KEY,
			owner      TEXT,
			claimed_at TIMESTAMPTZ,
			expires_at TIMESTAMPTZ NOT NULL DEFAULT 'epoch'
		)`,
		`INSERT INTO ingestion_lease (name) VALUES ('ingest') ON CONFLICT (name) DO NOTHING`,
	},

	isEmpty:   `SELECT NOT EXISTS (SELECT 1 FROM raw_launches)`,
	getCursor: `SELECT last_fetched_date, updated_at FROM ingestion_state WHERE id = 1`,
	setCursor: `
		UPDATE ingestion_state
		   SET last_fetched_date = $1, updated_at = $2
		 WHERE id = 1 AND last_fetched_date IS NOT DISTINCT FROM $3::timestamptz`,
	upsert: `
		INSERT INTO raw_launches (` + launchCols + `, ingested_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (launch_id) DO UPDATE SET
			mission_name         = EXCLUDED.mission_name,
			date_utc             = EXCLUDED.date_utc,
			success              = EXCLUDED.success,
			payload_ids          = EXCLUDED.payload_ids,
			payload_mass_kg      = EXCLUDED.payload_mass_kg,
			launchpad_id         = EXCLUDED.launchpad_id,
			static_fire_date_utc = EXCLUDED.static_fire_date_utc,
			updated_at           = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
	upsertReturns: true,
	allRecords:    `SELECT ` + launchCols + ` FROM raw_launches ORDER BY date_utc, launch_id`,
	getRecord:     `SELECT ` + launchCols + ` FROM raw_launches WHERE launch_id = $1`,
	appendSnapshot: `
		INSERT INTO launch_aggregations (
			run_id, snapshot_type,
			total_launches, total_successful_launches, total_failed_launches, success_rate,
			earliest_launch_date, latest_launch_date, total_launch_sites,
			average_payload_mass_kg, average_delay_hours, launches_added_in_batch,
			last_processed_launch_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
	latestSnapshot: `SELECT ` + snapshotCols + ` FROM launch_aggregations ORDER BY created_at DESC, id DESC LIMIT 1`,
	history:        `SELECT ` + snapshotCols + ` FROM launch_aggregations ORDER BY created_at DESC, id DESC LIMIT $1`,

	encodeIDs: func(ids []string) (any, error) {
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	},
	idsDest: func() (any, func() ([]string, error)) {
		var ids []string
		return &ids, func() ([]string, error) {
			if ids == nil {
				ids = []string{}
			}
			return ids, nil
		}
	},
	wrap: perr.FromPostgres,
}
