// Package metrics owns the prometheus registry shared by the api and the ingest cli
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Namespace prefixes every metric name
const Namespace = "launchpipe"

var httpBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Config controls exposition and pushgateway delivery
type Config struct {
	Enabled  bool
	Path     string
	PushURL  string
	PushJob  string
	PushWait time.Duration
}

// ConfigFrom reads METRICS_* keys
func ConfigFrom(cfg config.Conf) Config {
	m := cfg.Prefix("METRICS_")
	return Config{
		Enabled:  m.MayBool("ENABLED", true),
		Path:     m.MayString("PATH", "/metrics"),
		PushURL:  m.MayString("PUSH_URL", ""),
		PushJob:  m.MayString("PUSH_JOB", "launchpipe_ingest"),
		PushWait: m.MayDuration("PUSH_TIMEOUT", 5*time.Second),
	}
}

// Registry wraps a private prometheus registry so tests never share global state
type Registry struct {
	reg *prometheus.Registry
}

// New builds a registry with the go and process collectors attached
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// NewBare builds a registry with nothing pre-registered
func NewBare() *Registry { return &Registry{reg: prometheus.NewRegistry()} }

// Gatherer exposes the underlying gatherer
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the text exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// register returns the already registered collector when one exists under the same descriptor
func register[C prometheus.Collector](r *Registry, c C) C {
	if err := r.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		logger.Named("metrics").Error().Err(err).Msg("collector registration failed")
	}
	return c
}

// CounterVec registers (or reuses) a counter vector
func (r *Registry) CounterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels))
}

// GaugeVec registers (or reuses) a gauge vector
func (r *Registry) GaugeVec(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
	return register(r, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels))
}

// HistogramVec registers (or reuses) a histogram vector
func (r *Registry) HistogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	return register(r, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels))
}

// Push sends the whole registry to a pushgateway; a blank url is a no-op
func (r *Registry) Push(ctx context.Context, cfg Config) error {
	if cfg.PushURL == "" {
		return nil
	}
	if cfg.PushWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PushWait)
		defer cancel()
	}
	return push.New(cfg.PushURL, cfg.PushJob).Gatherer(r.reg).PushContext(ctx)
}

// HTTP returns middleware recording request count and latency by chi route pattern
func (r *Registry) HTTP() func(http.Handler) http.Handler {
	total := r.CounterVec("api", "http_requests_total", "Count of processed HTTP requests", "method", "route", "status")
	latency := r.HistogramVec("api", "http_request_duration_seconds", "Latency distribution of HTTP handlers", httpBuckets, "method", "route", "status")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, req)

			route := req.URL.Path
			if rc := chi.RouteContext(req.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			labels := prometheus.Labels{"method": req.Method, "route": route, "status": strconv.Itoa(sw.status)}
			total.With(labels).Inc()
			latency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
