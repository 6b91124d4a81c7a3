// Package repo provides the ingestion storage repository over postgres or sqlite
package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/store"
	"launchpipe/internal/services/ingest/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// dialect carries the statements and value codecs that differ per engine
type dialect struct {
	name   string
	schema []string

	isEmpty        string
	getCursor      string
	setCursor      string
	exists         string
	upsert         string
	upsertReturns  bool
	allRecords     string
	getRecord      string
	appendSnapshot string
	latestSnapshot string
	history        string

	encodeIDs func([]string) (any, error)
	idsDest   func() (dest any, decode func() ([]string, error))
	wrap      func(err error, msg string) error
}

// NewPG returns a binder for the postgres repo
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{d: pgDialect} }

// NewSQLite returns a binder for the local sqlite repo
func NewSQLite() repokit.Binder[domain.StorageRepo] { return binder{d: sqliteDialect} }

// For picks the binder that matches the runner in use
func For(local bool) repokit.Binder[domain.StorageRepo] {
	if local {
		return NewSQLite()
	}
	return NewPG()
}

type binder struct{ d *dialect }

func (b binder) Bind(q repokit.Queryer) domain.StorageRepo {
	return &sqlStore{q: q, d: b.d, now: time.Now}
}

type sqlStore struct {
	q   repokit.Queryer
	d   *dialect
	now func() time.Time
}

var _ domain.StorageRepo = (*sqlStore)(nil)

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func (s *sqlStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return s.d.wrap(err, "ensure schema")
		}
	}
	return nil
}

func (s *sqlStore) IsEmpty(ctx context.Context) (bool, error) {
	empty, err := store.Scalar[bool](ctx, s.q, s.d.isEmpty)
	if err != nil {
		return false, s.d.wrap(err, "is empty")
	}
	return empty, nil
}

func (s *sqlStore) GetCursor(ctx context.Context) (launch.Cursor, error) {
	var last *time.Time
	var updated *time.Time
	if err := s.q.QueryRow(ctx, s.d.getCursor).Scan(&last, &updated); err != nil {
		if noRows(err) {
			return launch.Cursor{}, nil
		}
		return launch.Cursor{}, s.d.wrap(err, "get cursor")
	}
	var c launch.Cursor
	if last != nil {
		c.LastFetched = last.UTC()
	}
	if updated != nil {
		c.UpdatedAt = updated.UTC()
	}
	return c, nil
}

func (s *sqlStore) SetCursor(ctx context.Context, expected, next time.Time) (bool, error) {
	ok, err := store.CompareAndSet(ctx, s.q, s.d.setCursor, tsArg(next), s.now().UTC(), tsArg(expected))
	if err != nil {
		return false, s.d.wrap(err, "set cursor")
	}
	return ok, nil
}

func (s *sqlStore) UpsertRecords(ctx context.Context, recs []launch.Record) (inserted, updated int, err error) {
	now := s.now().UTC()
	for _, r := range recs {
		ids, err := s.d.encodeIDs(r.PayloadIDs)
		if err != nil {
			return inserted, updated, perr.Wrapf(err, perr.ErrorCodeJSON, "encode payload ids for %s", r.ID)
		}
		args := []any{
			r.ID, r.Name, r.DateUTC.UTC(), r.Success, ids,
			r.PayloadMassKg, r.LaunchpadID, utcPtr(r.StaticFireUTC), now,
		}

		if s.d.upsertReturns {
			var fresh bool
			if err := s.q.QueryRow(ctx, s.d.upsert, args...).Scan(&fresh); err != nil {
				return inserted, updated, s.d.wrap(err, "upsert launch "+r.ID)
			}
			if fresh {
				inserted++
			} else {
				updated++
			}
			continue
		}

		seen, err := store.Scalar[bool](ctx, s.q, s.d.exists, r.ID)
		if err != nil {
			return inserted, updated, s.d.wrap(err, "look up launch "+r.ID)
		}
		if _, err := s.q.Exec(ctx, s.d.upsert, args...); err != nil {
			return inserted, updated, s.d.wrap(err, "upsert launch "+r.ID)
		}
		if seen {
			updated++
		} else {
			inserted++
		}
	}
	return inserted, updated, nil
}

func (s *sqlStore) scanRecord(row store.Row) (launch.Record, error) {
	var (
		r          launch.Record
		date       time.Time
		staticFire *time.Time
	)
	idsDest, decode := s.d.idsDest()
	if err := row.Scan(&r.ID, &r.Name, &date, &r.Success, idsDest, &r.PayloadMassKg, &r.LaunchpadID, &staticFire); err != nil {
		return launch.Record{}, err
	}
	ids, err := decode()
	if err != nil {
		return launch.Record{}, err
	}
	r.DateUTC = date.UTC()
	r.PayloadIDs = ids
	r.StaticFireUTC = utcPtr(staticFire)
	return r, nil
}

func (s *sqlStore) AllRecords(ctx context.Context) ([]launch.Record, error) {
	out, err := store.Many(ctx, s.q, s.scanRecord, s.d.allRecords)
	if err != nil {
		return nil, s.d.wrap(err, "all records")
	}
	if out == nil {
		out = []launch.Record{}
	}
	return out, nil
}

func (s *sqlStore) GetRecord(ctx context.Context, id string) (launch.Record, error) {
	r, err := store.One(ctx, s.q, s.scanRecord, s.d.getRecord, id)
	if errors.Is(err, perr.ErrNotFound) {
		return launch.Record{}, perr.NotFoundf("launch %s not found", id)
	}
	if err != nil {
		return launch.Record{}, s.d.wrap(err, "get record")
	}
	return r, nil
}

func (s *sqlStore) AppendSnapshot(ctx context.Context, snap launch.Snapshot) (launch.Snapshot, error) {
	if !snap.Kind.Valid() {
		return launch.Snapshot{}, perr.InvalidArgf("unknown snapshot kind %q", snap.Kind)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now()
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	err := s.q.QueryRow(ctx, s.d.appendSnapshot,
		snap.RunID, string(snap.Kind),
		snap.TotalLaunches, snap.SuccessfulLaunches, snap.FailedLaunches, snap.SuccessRate,
		utcPtr(snap.EarliestLaunch), utcPtr(snap.LatestLaunch), snap.LaunchSites,
		snap.AvgPayloadMassKg, snap.AvgDelayHours, snap.AddedInBatch,
		utcPtr(snap.LastProcessedLaunch), snap.CreatedAt,
	).Scan(&snap.ID)
	if err != nil {
		return launch.Snapshot{}, s.d.wrap(err, "append snapshot")
	}
	return snap, nil
}

func scanSnapshot(row store.Row) (launch.Snapshot, error) {
	var (
		s                          launch.Snapshot
		kind                       string
		earliest, latest, lastProc *time.Time
		created                    time.Time
		rate                       decimal.Decimal
	)
	if err := row.Scan(
		&s.ID, &s.RunID, &kind,
		&s.TotalLaunches, &s.SuccessfulLaunches, &s.FailedLaunches, &rate,
		&earliest, &latest, &s.LaunchSites,
		&s.AvgPayloadMassKg, &s.AvgDelayHours, &s.AddedInBatch,
		&lastProc, &created,
	); err != nil {
		return launch.Snapshot{}, err
	}
	s.Kind = launch.SnapshotKind(kind)
	s.SuccessRate = rate
	s.EarliestLaunch, s.LatestLaunch, s.LastProcessedLaunch = utcPtr(earliest), utcPtr(latest), utcPtr(lastProc)
	s.CreatedAt = created.UTC()
	return s, nil
}

func (s *sqlStore) GetLatestSnapshot(ctx context.Context) (launch.Snapshot, error) {
	snap, err := store.One(ctx, s.q, scanSnapshot, s.d.latestSnapshot)
	if errors.Is(err, perr.ErrNotFound) {
		return launch.Snapshot{}, perr.ErrNotFound
	}
	if err != nil {
		return launch.Snapshot{}, s.d.wrap(err, "latest snapshot")
	}
	return snap, nil
}

func (s *sqlStore) SnapshotHistory(ctx context.Context, limit int) ([]launch.Snapshot, error) {
	if limit <= 0 {
		return []launch.Snapshot{}, nil
	}
	out, err := store.Many(ctx, s.q, scanSnapshot, s.d.history, limit)
	if err != nil {
		return nil, s.d.wrap(err, "snapshot history")
	}
	if out == nil {
		out = []launch.Snapshot{}
	}
	return out, nil
}

// tsArg maps the zero time to NULL
func tsArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
