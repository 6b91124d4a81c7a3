package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/metrics"
	phttp "launchpipe/internal/platform/net/http"
	"launchpipe/internal/platform/store"

	"github.com/go-chi/chi/v5"
)

func TestMountNeedsSQLStore(t *testing.T) {
	t.Parallel()
	err := Mount(context.Background(), phttp.AdaptChi(chi.NewRouter()), Options{Config: config.New()})
	if err == nil {
		t.Fatalf("expected an error without a sql store")
	}
}

func TestManualSnapshotThenLatest(t *testing.T) {
	t.Parallel()
	st, err := store.Open(context.Background(), store.Config{
		SQLite: store.SQLiteConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "api.db")},
	})
	if err != nil {
		if strings.Contains(err.Error(), "cgo") {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	mux := chi.NewRouter()
	if err := Mount(context.Background(), phttp.AdaptChi(mux), Options{Config: config.New(), Store: st, Metrics: metrics.NewBare()}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	call := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	if rec := call(http.MethodGet, "/v1/snapshots/latest"); rec.Code != http.StatusNotFound {
		t.Fatalf("latest before any run = %d", rec.Code)
	}
	if rec := call(http.MethodPost, "/v1/snapshots"); rec.Code != http.StatusOK {
		t.Fatalf("manual snapshot = %d %s", rec.Code, rec.Body.String())
	}

	rec := call(http.MethodGet, "/v1/snapshots/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("latest = %d %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data launch.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Kind != launch.KindManual || env.Data.TotalLaunches != 0 || !strings.HasPrefix(env.Data.RunID, "manual_pipeline_") {
		t.Fatalf("snapshot = %+v", env.Data)
	}

	if rec := call(http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := call(http.MethodGet, "/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "launchpipe_ingest_runs_total") {
		t.Fatalf("metrics = %d", rec.Code)
	}
}
