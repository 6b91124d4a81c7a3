// Package modkit provides module wiring and core deps
package modkit

import (
	"launchpipe/internal/modkit/repokit"
	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"
	"launchpipe/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	SQLite  repokit.TxRunner
	CH      store.Clickhouse
	Redis   *redis.Client
	Metrics *metrics.Registry
}

// DepsFrom lifts the opened store into module deps
func DepsFrom(cfg config.Conf, st *store.Store, reg *metrics.Registry) Deps {
	d := Deps{Cfg: cfg, Metrics: reg, Log: *logger.Get()}
	if st != nil {
		d.PG, d.SQLite, d.CH, d.Redis = st.PG, st.SQLite, st.CH, st.Redis
	}
	if reg == nil {
		d.Metrics = metrics.NewBare()
	}
	return d
}

// SQL returns the relational runner in use, PG first
func (d Deps) SQL() repokit.TxRunner {
	if d.PG != nil {
		return d.PG
	}
	return d.SQLite
}

// Local reports whether the single-file sqlite store backs this process
func (d Deps) Local() bool { return d.PG == nil && d.SQLite != nil }
