package guardrails

import (
	"context"
	"time"

	perr "launchpipe/internal/platform/errors"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/services/ingest/domain"

	"github.com/redis/go-redis/v9"
)

// RedisKey is the key holding the run lease
const RedisKey = "launchpipe:ingest:lease"

// compare-and-delete so a run never clears a lease it lost to expiry
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// MakeRedisLease takes the lease with SET NX PX and releases it only while still the owner
func MakeRedisLease(rdb *redis.Client, key string, ttl time.Duration) domain.LeaseFunc {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if key == "" {
		key = RedisKey
	}
	return func(ctx context.Context, do func(context.Context) error) error {
		owner := Owner(ctx)
		ok, err := rdb.SetNX(ctx, key, owner, ttl).Result()
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "claim redis lease")
		}
		if !ok {
			return domain.ErrConcurrentRun
		}
		defer func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(rctx, rdb, []string{key}, owner).Err(); err != nil {
				logger.C(ctx).Warn().Err(err).Str("key", key).Msg("ingest: redis lease release failed; it will expire")
			}
		}()
		return do(ctx)
	}
}
