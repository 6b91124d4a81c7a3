package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterVecReusesExisting(t *testing.T) {
	t.Parallel()
	r := NewBare()
	a := r.CounterVec("ingest", "runs_total", "runs", "status")
	b := r.CounterVec("ingest", "runs_total", "runs", "status")
	a.WithLabelValues("success").Inc()
	b.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(a.WithLabelValues("success")); got != 2 {
		t.Fatalf("counter = %v, want 2 (shared collector)", got)
	}
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()
	r := NewBare()
	m := chi.NewRouter()
	m.Use(r.HTTP())
	m.Get("/v1/launches/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	m.Handle("/metrics", r.Handler())

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/launches/abc", nil))

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	want := `launchpipe_api_http_requests_total{method="GET",route="/v1/launches/{id}",status="404"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("exposition missing %q:\n%s", want, body)
	}
}

func TestPushSendsToGateway(t *testing.T) {
	t.Parallel()
	var hits int
	var path string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits++
		path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	r := NewBare()
	r.CounterVec("ingest", "runs_total", "runs", "status").WithLabelValues("success").Inc()
	if err := r.Push(context.Background(), Config{PushURL: gw.URL, PushJob: "job1", PushWait: time.Second}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if hits != 1 || !strings.Contains(path, "/job/job1") {
		t.Fatalf("hits=%d path=%q", hits, path)
	}
	if err := r.Push(context.Background(), Config{}); err != nil {
		t.Fatalf("blank url should be a no-op: %v", err)
	}
}
