// Package domain holds the ingestion run model: stages, error kinds, reports and ports
package domain

import (
	"errors"
	"fmt"
	"time"

	"launchpipe/internal/core/launch"
	perr "launchpipe/internal/platform/errors"
)

// Stage is one state of the run machine
type Stage string

const (
	StageStart           Stage = "start"
	StageInitialLoad     Stage = "initial_load"
	StageEarlyExit       Stage = "early_exit"
	StageIncrementalLoad Stage = "incremental_load"
	StageValidate        Stage = "validate"
	StageMerge           Stage = "merge"
	StageUpdateCursor    Stage = "update_cursor"
	StageAggregate       Stage = "aggregate"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Terminal reports whether no transition leaves s
func (s Stage) Terminal() bool { return s == StageDone || s == StageFailed }

// ErrorKind classifies a stage failure for the report
type ErrorKind string

const (
	KindSourceUnavailable     ErrorKind = "SourceUnavailable"
	KindValidationRejected    ErrorKind = "ValidationRejected"
	KindStoreUnavailable      ErrorKind = "StoreUnavailable"
	KindConcurrentRunDetected ErrorKind = "ConcurrentRunDetected"
)

// Soft reports kinds that end a run without marking it failed
func (k ErrorKind) Soft() bool { return k == KindConcurrentRunDetected }

// StageError ties a failure to the stage it happened in
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fail builds a StageError, deriving the kind from err when kind is blank
func Fail(stage Stage, kind ErrorKind, err error) *StageError {
	if kind == "" {
		kind = KindOf(err)
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// ErrConcurrentRun is the sentinel for lease contention and lost cursor CAS
var ErrConcurrentRun = perr.New(perr.ErrorCodeConflict, "another ingestion run is active")

// KindOf maps a project error code onto the run taxonomy
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeConflict:
		return KindConcurrentRunDetected
	case perr.ErrorCodeValidation:
		return KindValidationRejected
	case perr.ErrorCodeUnavailable, perr.ErrorCodeJSON:
		return KindSourceUnavailable
	default:
		return KindStoreUnavailable
	}
}

// Status is the overall run verdict
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Action names what the run did, mirroring the detector verdicts plus manual snapshots
type Action string

const (
	ActionInitialLoad     Action = "initial_load"
	ActionEarlyExit       Action = "early_exit"
	ActionIncrementalLoad Action = "incremental_load"
	ActionManualSnapshot  Action = "manual_snapshot"
)

// Optimization labels which shortcut a run took
const (
	OptInitialSkipDetect  = "initial_load_skip_change_detection"
	OptEarlyExit          = "change_detection_early_exit"
	OptServerSideFilter   = "server_side_filtering"
	OptFullWindowFallback = "full_window_fallback"
)

// RunOptions selects the kind of run
type RunOptions struct {
	// SnapshotOnly recomputes a manual snapshot from stored records without fetching
	SnapshotOnly bool

	// Trigger is free form provenance, e.g. "cli" or "api"
	Trigger string
}

// Aggregation is the snapshot part of a report
type Aggregation struct {
	Status        string  `json:"status"`
	Reason        string  `json:"reason,omitempty"`
	SnapshotID    int64   `json:"snapshot_id,omitempty"`
	Kind          string  `json:"snapshot_type,omitempty"`
	TotalLaunches int     `json:"total_launches,omitempty"`
	SuccessRate   *string `json:"success_rate,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Report is returned by every run, successful or not
type Report struct {
	RunID   string `json:"run_id"`
	Trigger string `json:"trigger,omitempty"`
	Action  Action `json:"action,omitempty"`
	Status  Status `json:"status"`

	Stage       Stage     `json:"stage"`
	FailedStage Stage     `json:"failed_stage,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	Error       string    `json:"error_message,omitempty"`

	Fetched    int                         `json:"new_launches_found"`
	Validated  int                         `json:"launches_validated"`
	Rejected   int                         `json:"launches_rejected"`
	Inserted   int                         `json:"launches_inserted"`
	Updated    int                         `json:"launches_updated"`
	Rejections map[launch.RejectReason]int `json:"rejections,omitempty"`

	APICalls     int64  `json:"api_calls_made"`
	EarlyExit    bool   `json:"early_exit"`
	InitialLoad  bool   `json:"initial_load"`
	Fallback     bool   `json:"fallback"`
	Optimization string `json:"optimization,omitempty"`
	Enrichment   string `json:"enrichment_error,omitempty"`

	CursorBefore *time.Time `json:"cursor_before,omitempty"`
	CursorAfter  *time.Time `json:"cursor_after,omitempty"`

	StartedAt       time.Time   `json:"started_at"`
	DurationSeconds float64     `json:"pipeline_duration_seconds"`
	Aggregation     Aggregation `json:"aggregations"`
}

// Failed fills the failure fields from err
func (r *Report) Failed(err error) {
	var se *StageError
	if !errors.As(err, &se) {
		se = Fail(r.Stage, "", err)
	}
	r.FailedStage = se.Stage
	r.ErrorKind = se.Kind
	r.Error = se.Err.Error()
	r.Stage = StageFailed
	if se.Kind.Soft() {
		r.Status = StatusSkipped
		return
	}
	r.Status = StatusFailed
}

// OK reports a run that did not fail hard
func (r Report) OK() bool { return r.Status != StatusFailed }
