// Package http provides http transport for snapshots and launches
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	perr "launchpipe/internal/platform/errors"
	phttp "launchpipe/internal/platform/net/http"
	ingest "launchpipe/internal/services/ingest/domain"
	ingesthttp "launchpipe/internal/services/ingest/http"
	"launchpipe/internal/services/snapshots/domain"
)

// Register mounts the snapshot endpoints; runner may be nil when the api cannot write
func Register(r phttp.Router, s domain.ServicePort, runner ingest.Runner) {
	h := &handlers{svc: s, runner: runner}

	phttp.GetJSON(r, "/latest", h.latest)
	phttp.GetJSON(r, "/trend", h.trend)
	phttp.GetJSON(r, "/", h.history)
	r.Post("/", phttp.Handle(h.manual))
}

// RegisterLaunches mounts the launch lookup
func RegisterLaunches(r phttp.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	phttp.GetJSON(r, "/{id}", h.launch)
}

type handlers struct {
	svc    domain.ServicePort
	runner ingest.Runner
}

func limitOf(r *stdhttp.Request) (domain.HistoryInput, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return domain.HistoryInput{}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return domain.HistoryInput{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "limit must be an integer"), "limit")
	}
	return domain.HistoryInput{Limit: n}, nil
}

// swagger:route GET /snapshots/latest Snapshots snapshotsLatest
// @Summary Latest aggregation snapshot
// @Tags Snapshots
// @Produce json
// @Success 200 {object} launch.Snapshot "ok"
// @Failure 404 {object} phttp.Envelope "no snapshot yet"
// @Router /snapshots/latest [get]
func (h *handlers) latest(r *stdhttp.Request) (any, error) {
	return h.svc.Latest(r.Context())
}

// swagger:route GET /snapshots Snapshots snapshotsHistory
// @Summary Snapshot history, newest first
// @Tags Snapshots
// @Produce json
// @Param limit query int false "Max rows (1..500, default 20)"
// @Success 200 {array} launch.Snapshot "ok"
// @Router /snapshots [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	in, err := limitOf(r)
	if err != nil {
		return nil, err
	}
	return h.svc.History(r.Context(), in)
}

// swagger:route GET /snapshots/trend Snapshots snapshotsTrend
// @Summary Deltas between consecutive snapshots, oldest first
// @Tags Snapshots
// @Produce json
// @Param limit query int false "Snapshots to diff (1..500, default 20)"
// @Success 200 {array} aggregate.TrendPoint "ok"
// @Router /snapshots/trend [get]
func (h *handlers) trend(r *stdhttp.Request) (any, error) {
	in, err := limitOf(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Trend(r.Context(), in)
}

// swagger:route POST /snapshots Snapshots snapshotsManual
// @Summary Recompute and append a manual snapshot without fetching
// @Tags Snapshots
// @Produce json
// @Success 200 {object} ingest.Report "snapshot appended"
// @Failure 409 {object} ingest.Report "another run holds the lease"
// @Failure 503 {object} ingest.Report "snapshot failed"
// @Router /snapshots [post]
func (h *handlers) manual(r *stdhttp.Request) phttp.Response {
	if h.runner == nil {
		return phttp.Error(perr.Unavailablef("manual snapshots are disabled on this instance"))
	}
	rep := h.runner.Run(r.Context(), ingest.RunOptions{SnapshotOnly: true, Trigger: "api"})
	return phttp.Response{Status: ingesthttp.StatusOf(rep), Body: rep}
}

// swagger:route GET /launches/{id} Launches launchesGet
// @Summary One stored launch
// @Tags Launches
// @Produce json
// @Param id path string true "Launch id"
// @Success 200 {object} launch.Record "ok"
// @Failure 404 {object} phttp.Envelope "unknown launch"
// @Router /launches/{id} [get]
func (h *handlers) launch(r *stdhttp.Request) (any, error) {
	return h.svc.Launch(r.Context(), domain.LaunchInput{ID: phttp.URLParam(r, "id")})
}
