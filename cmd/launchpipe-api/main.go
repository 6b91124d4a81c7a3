// @title         launchpipe API
// @version       1.0
// @description   Read side over ingested SpaceX launches and aggregation snapshots, plus the run trigger

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"
	phttp "launchpipe/internal/platform/net/http"
	"launchpipe/internal/platform/store"

	"launchpipe/internal/modkit/repokit"
	"launchpipe/internal/services/api"
)

const service = "launchpipe-api"

func main() {
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = service
	}
	logger.Init(opt)
	l := logger.Get()

	root, err := config.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("config load failed")
	}
	apiCfg := root.Prefix("API_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres or local sqlite, optional clickhouse and redis)
	st, err := store.Open(ctx, store.ConfigFrom(root, service), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads API_PORT)
	srv := phttp.NewServer(root)

	if err := api.Mount(ctx, srv.Router(), api.Options{
		Config:        root,
		Store:         st,
		Metrics:       metrics.New(),
		EnableSwagger: apiCfg.MayBool("SWAGGER", true),
	}); err != nil {
		l.Panic().Err(err).Msg("api mount failed")
	}

	if err := srv.Run(ctx, apiCfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second)); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
