package module

import (
	"time"

	"launchpipe/internal/platform/config"
)

// Lease backends
const (
	LeaseSQL   = "sql"
	LeaseRedis = "redis"
	LeaseNone  = "none"
)

// Options for the ingest module
type Options struct {
	FetchTimeout time.Duration
	DBTimeout    time.Duration
	RunTimeout   time.Duration
	EnableLease  bool
	LeaseBackend string
	LeaseTTL     time.Duration
	LockTimeout  time.Duration
	EnsureSchema bool
	Mirror       bool
}

// FromConfig fills options from environment
// CORE_INGEST_FETCH_TIMEOUT (default 60s) caps each upstream stage
// CORE_INGEST_DB_TIMEOUT (default 15s) caps each store stage
// CORE_INGEST_RUN_TIMEOUT (default 5m) caps the whole run
// CORE_INGEST_LEASE (default true) wraps every run in the single-run lease
// CORE_INGEST_LEASE_BACKEND (default "sql") is one of "sql", "redis", "none"
// CORE_INGEST_LEASE_TTL (default 10m) is how long a crashed holder blocks other runs
// CORE_INGEST_LOCK_TIMEOUT (default 5s) is the postgres lock_timeout set on every tx
// CORE_INGEST_ENSURE_SCHEMA (default true) creates tables on module start
// CORE_INGEST_MIRROR (default true) mirrors snapshots into clickhouse when it is configured
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_INGEST_")
	return Options{
		FetchTimeout: c.MayDuration("FETCH_TIMEOUT", 60*time.Second),
		DBTimeout:    c.MayDuration("DB_TIMEOUT", 15*time.Second),
		RunTimeout:   c.MayDuration("RUN_TIMEOUT", 5*time.Minute),
		EnableLease:  c.MayBool("LEASE", true),
		LeaseBackend: c.MayEnum("LEASE_BACKEND", LeaseSQL, LeaseSQL, LeaseRedis, LeaseNone),
		LeaseTTL:     c.MayDuration("LEASE_TTL", 10*time.Minute),
		LockTimeout:  c.MayDuration("LOCK_TIMEOUT", 5*time.Second),
		EnsureSchema: c.MayBool("ENSURE_SCHEMA", true),
		Mirror:       c.MayBool("MIRROR", true),
	}
}
