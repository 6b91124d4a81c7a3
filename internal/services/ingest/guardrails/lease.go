package guardrails

import (
	"context"
	"fmt"
	"os"
	"time"

	"launchpipe/internal/modkit/repokit"
	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/services/ingest/domain"
)

// LeaseName is the ingestion_lease row every run contends for
const LeaseName = "ingest"

const (
	defaultTTL     = 10 * time.Minute
	releaseTimeout = 5 * time.Second
)

// Owner identifies this process and run on a lease
func Owner(ctx context.Context) string {
	host, _ := os.Hostname()
	o := fmt.Sprintf("%s:%d", host, os.Getpid())
	if id := logger.RunID(ctx); id != "" {
		o += ":" + id
	}
	return o
}

type leaseSQL struct {
	seed, claim, release string
	args                 func(owner string, now time.Time, ttl time.Duration) (claim, release []any)
}

var pgLease = leaseSQL{
	seed: `INSERT INTO ingestion_lease (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
	claim: `
		UPDATE ingestion_lease
		   SET owner = $2, claimed_at = now(), expires_at = now() + ($3)::interval
		 WHERE name = $1 AND expires_at <= now()`,
	release: `UPDATE ingestion_lease SET owner = NULL, expires_at = now() WHERE name = $1 AND owner = $2`,
	args: func(owner string, _ time.Time, ttl time.Duration) ([]any, []any) {
		iv := fmt.Sprintf("%d milliseconds", ttl.Milliseconds())
		return []any{LeaseName, owner, iv}, []any{LeaseName, owner}
	},
}

var sqliteLease = leaseSQL{
	seed: `INSERT OR IGNORE INTO ingestion_lease (name) VALUES (?)`,
	claim: `
		UPDATE ingestion_lease
		   SET owner = ?2, claimed_at = ?3, expires_at = ?4
		 WHERE name = ?1 AND expires_at <= ?3`,
	release: `UPDATE ingestion_lease SET owner = NULL, expires_at = 0 WHERE name = ?1 AND owner = ?2`,
	args: func(owner string, now time.Time, ttl time.Duration) ([]any, []any) {
		ms := now.UnixMilli()
		return []any{LeaseName, owner, ms, ms + ttl.Milliseconds()}, []any{LeaseName, owner}
	},
}

// MakeSQLLease claims the ingestion_lease row for ttl around do and clears it after
// an unexpired row held by anyone else yields domain.ErrConcurrentRun
func MakeSQLLease(db repokit.TxRunner, local bool, ttl time.Duration) domain.LeaseFunc {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	stmts := pgLease
	if local {
		stmts = sqliteLease
	}
	return func(ctx context.Context, do func(context.Context) error) error {
		owner := Owner(ctx)
		claimArgs, releaseArgs := stmts.args(owner, time.Now(), ttl)

		var claimed bool
		if err := db.Tx(ctx, func(q repokit.Queryer) error {
			if _, err := q.Exec(ctx, stmts.seed, LeaseName); err != nil {
				return err
			}
			tag, err := q.Exec(ctx, stmts.claim, claimArgs...)
			if err != nil {
				return err
			}
			claimed = tag.RowsAffected() == 1
			return nil
		}); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "claim ingestion lease")
		}
		if !claimed {
			return domain.ErrConcurrentRun
		}

		defer func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if _, err := db.Exec(rctx, stmts.release, releaseArgs...); err != nil {
				logger.C(ctx).Warn().Err(err).Str("owner", owner).Msg("ingest: lease release failed; it will expire")
			}
		}()
		return do(ctx)
	}
}

// NoLease runs do directly; for tests and single-process tools
func NoLease(ctx context.Context, do func(context.Context) error) error { return do(ctx) }
