// Package service answers snapshot and launch reads over the ingestion store
package service

import (
	"context"
	"errors"
	"time"

	"launchpipe/internal/core/aggregate"
	"launchpipe/internal/core/launch"
	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/net/http/bind"
	ingest "launchpipe/internal/services/ingest/domain"
	"launchpipe/internal/services/snapshots/domain"
)

// Config caps reads
type Config struct {
	DefaultLimit int
	Timeout      time.Duration
}

// Service defines the service contract for snapshot reads
type Service interface{ domain.ServicePort }

// Svc implements Service
type Svc struct {
	Repo ingest.StorageRepo
	cfg  Config
}

// New creates a snapshot read service bound directly to db, outside any transaction
func New(db repokit.TxRunner, binder repokit.Binder[ingest.StorageRepo], cfg Config) *Svc {
	if db == nil {
		panic("snapshots.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("snapshots.Service requires a non nil repo binder")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return &Svc{Repo: repokit.MustBind(binder, db), cfg: cfg}
}

func (s *Svc) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// Latest returns the most recent snapshot
func (s *Svc) Latest(ctx context.Context) (launch.Snapshot, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	snap, err := s.Repo.GetLatestSnapshot(ctx)
	if errors.Is(err, perr.ErrNotFound) {
		return launch.Snapshot{}, perr.NotFoundf("no snapshot yet; run an ingestion first")
	}
	return snap, err
}

// History returns up to Limit snapshots, newest first
func (s *Svc) History(ctx context.Context, in domain.HistoryInput) ([]launch.Snapshot, error) {
	if err := bind.Validate(in); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = s.cfg.DefaultLimit
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.Repo.SnapshotHistory(ctx, in.Limit)
}

// Trend diffs the last Limit snapshots, oldest first; one extra snapshot is read
// so the first point has its real predecessor
func (s *Svc) Trend(ctx context.Context, in domain.HistoryInput) ([]aggregate.TrendPoint, error) {
	if err := bind.Validate(in); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = s.cfg.DefaultLimit
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	hist, err := s.Repo.SnapshotHistory(ctx, in.Limit+1)
	if err != nil {
		return nil, err
	}
	return aggregate.Trend(hist, in.Limit), nil
}

// Launch returns one stored launch by id
func (s *Svc) Launch(ctx context.Context, in domain.LaunchInput) (launch.Record, error) {
	if err := bind.Validate(in); err != nil {
		return launch.Record{}, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.Repo.GetRecord(ctx, in.ID)
}
