package store

import (
	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger hands subclients a logger other than the root one
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
	CH     CHConfig
	RDS    RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	TxRetries   int
}

// SQLiteConfig configures the local single-file store
type SQLiteConfig struct {
	Enabled bool
	Path    string
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// RedisConfig configures redis connectivity
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ConfigFrom reads backend settings from the SERVICE_* prefixes
func ConfigFrom(cfg config.Conf, app string) Config {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	lite := cfg.Prefix("SERVICE_SQLITE_")
	ch := cfg.Prefix("SERVICE_CH_")
	rds := cfg.Prefix("SERVICE_REDIS_")

	out := Config{
		AppName: app,
		PG: PGConfig{
			Enabled:     pg.MayBool("ENABLED", true),
			URL:         pg.MayString("URL", ""),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 8)),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			SlowQueryMs: pg.MayInt("SLOW_MS", 250),
			TxRetries:   pg.MayInt("TX_RETRIES", 2),
		},
		SQLite: SQLiteConfig{
			Enabled: lite.MayBool("ENABLED", false),
			Path:    lite.MayString("PATH", "launchpipe.db"),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			URL:     ch.MayString("URL", ""),
			Role:    app,
		},
		RDS: RedisConfig{
			Enabled:  rds.MayBool("ENABLED", false),
			Addr:     rds.MayString("ADDR", "127.0.0.1:6379"),
			Password: rds.MayString("PASSWORD", ""),
			DB:       rds.MayInt("DB", 0),
		},
	}
	if out.SQLite.Enabled {
		out.PG.Enabled = false
	}
	if out.PG.Enabled && out.PG.URL == "" {
		out.PG.URL = pg.MustString("URL")
	}
	return out
}
