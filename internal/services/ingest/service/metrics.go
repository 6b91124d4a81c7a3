package service

import (
	"launchpipe/internal/platform/metrics"
	"launchpipe/internal/services/ingest/domain"

	"github.com/prometheus/client_golang/prometheus"
)

type runMetrics struct {
	runs     *prometheus.CounterVec
	records  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cursor   *prometheus.GaugeVec
}

func newRunMetrics(reg *metrics.Registry) runMetrics {
	return runMetrics{
		runs:     reg.CounterVec("ingest", "runs_total", "Ingestion runs by action and status", "action", "status"),
		records:  reg.CounterVec("ingest", "records_total", "Launch records by pipeline step", "step"),
		failures: reg.CounterVec("ingest", "stage_failures_total", "Stage failures by stage and error kind", "stage", "kind"),
		duration: reg.HistogramVec("ingest", "run_duration_seconds", "Wall time of ingestion runs",
			[]float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}, "action"),
		cursor: reg.GaugeVec("ingest", "cursor_timestamp_seconds", "Unix time of the ingestion cursor after the last advance"),
	}
}

func (m runMetrics) observe(r domain.Report) {
	action := string(r.Action)
	if action == "" {
		action = "none"
	}
	m.runs.WithLabelValues(action, string(r.Status)).Inc()
	m.duration.WithLabelValues(action).Observe(r.DurationSeconds)
	m.records.WithLabelValues("fetched").Add(float64(r.Fetched))
	m.records.WithLabelValues("validated").Add(float64(r.Validated))
	m.records.WithLabelValues("rejected").Add(float64(r.Rejected))
	m.records.WithLabelValues("inserted").Add(float64(r.Inserted))
	m.records.WithLabelValues("updated").Add(float64(r.Updated))
}
