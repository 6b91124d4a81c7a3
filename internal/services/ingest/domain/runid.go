package domain

import (
	"strings"
	"time"

	ptime "launchpipe/internal/platform/time"

	"github.com/google/uuid"
)

// NewRunID renders pipeline_YYYYmmdd_HHMMSS_<8 hex>, optionally with a kind prefix
// such as "initial" or "manual"
func NewRunID(prefix string, now time.Time) string {
	id := "pipeline_" + ptime.Stamp(now) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
