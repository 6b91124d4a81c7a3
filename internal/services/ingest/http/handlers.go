// Package http provides the run trigger endpoint
package http

import (
	stdhttp "net/http"

	phttp "launchpipe/internal/platform/net/http"
	"launchpipe/internal/platform/net/http/bind"
	"launchpipe/internal/services/ingest/domain"
)

// RunRequest is the optional body of POST /runs
type RunRequest struct {
	Trigger      string `json:"trigger"       validate:"omitempty,max=64" example:"cron"`
	SnapshotOnly bool   `json:"snapshot_only" example:"false"`
}

// Register mounts the run trigger on r
func Register(r phttp.Router, runner domain.Runner) {
	h := &handlers{runner: runner}
	r.Post("/", phttp.Handle(h.run))
}

type handlers struct{ runner domain.Runner }

// swagger:route POST /runs Runs runsTrigger
// @Summary Run one ingestion pass
// @Description Runs synchronously and returns the run report. A run refused because another holds the lease answers 409.
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body RunRequest false "Run options"
// @Success 200 {object} domain.Report "run finished"
// @Failure 409 {object} domain.Report "another run holds the lease"
// @Failure 503 {object} domain.Report "run failed"
// @Router /runs [post]
func (h *handlers) run(r *stdhttp.Request) phttp.Response {
	in, err := bind.ParseJSON[RunRequest](r, bind.JSONOptions{MaxBytes: 4 << 10, DisallowUnknown: true, AllowEmptyBody: true})
	if err != nil {
		return phttp.Error(err)
	}
	if in.Trigger == "" {
		in.Trigger = "api"
	}
	rep := h.runner.Run(r.Context(), domain.RunOptions{Trigger: in.Trigger, SnapshotOnly: in.SnapshotOnly})
	return phttp.Response{Status: StatusOf(rep), Body: rep}
}

// StatusOf maps a run report onto an http status
func StatusOf(rep domain.Report) int {
	switch rep.Status {
	case domain.StatusSkipped:
		return stdhttp.StatusConflict
	case domain.StatusFailed:
		return stdhttp.StatusServiceUnavailable
	}
	return stdhttp.StatusOK
}
