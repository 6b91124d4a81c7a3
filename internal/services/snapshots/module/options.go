package module

import (
	"time"

	"launchpipe/internal/platform/config"
)

// Options for the snapshots module
type Options struct {
	DefaultLimit int
	Timeout      time.Duration
	Manual       bool
}

// FromConfig fills options from environment
// API_SNAPSHOTS_DEFAULT_LIMIT (default 20) is the history size when no limit is given
// API_SNAPSHOTS_TIMEOUT (default 5s) caps each read
// API_SNAPSHOTS_MANUAL (default true) enables POST /snapshots
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("API_SNAPSHOTS_")
	return Options{
		DefaultLimit: c.MayInt("DEFAULT_LIMIT", 20),
		Timeout:      c.MayDuration("TIMEOUT", 5*time.Second),
		Manual:       c.MayBool("MANUAL", true),
	}
}
