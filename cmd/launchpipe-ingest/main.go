package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"launchpipe/internal/core/version"
	"launchpipe/internal/modkit"
	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"
	"launchpipe/internal/platform/store"

	ingestdom "launchpipe/internal/services/ingest/domain"
	ingestmod "launchpipe/internal/services/ingest/module"
)

const service = "launchpipe-ingest"

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() { os.Exit(run()) }

func run() int {
	var (
		fSnapshot = flag.Bool("snapshot", false, "recompute and append a manual snapshot without fetching")
		fSchema   = flag.Bool("ensure-schema", false, "create the tables and exit")
		fLocal    = flag.String("local", "", "use the sqlite file at this path instead of postgres")
		fTrigger  = flag.String("trigger", "cli", "free-form label recorded on the run report")
		fVersion  = flag.Bool("version", false, "print the build version and exit")
	)
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info(service))
		return 0
	}

	// surface flags to the config readers
	if *fLocal != "" {
		mustSetEnv("SERVICE_SQLITE_ENABLED", "1")
		mustSetEnv("SERVICE_SQLITE_PATH", *fLocal)
	}

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = service
	}
	logger.Init(opt)
	l := logger.Get()

	root, err := config.Load()
	if err != nil {
		l.Error().Err(err).Msg("config load failed")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.ConfigFrom(root, service), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	reg := metrics.New()
	mod, err := ingestmod.New(modkit.DepsFrom(root, st, reg), nil)
	if err != nil {
		l.Error().Err(err).Msg("ingest module wiring failed")
		return 1
	}

	if *fSchema {
		if err := mod.EnsureSchema(ctx); err != nil {
			l.Error().Err(err).Msg("ensure schema failed")
			return 1
		}
		l.Info().Msg("schema ready")
		return 0
	}
	if err := mod.Start(ctx); err != nil {
		l.Error().Err(err).Msg("ingest module start failed")
		return 1
	}

	rep := mod.Runner().Run(ctx, ingestdom.RunOptions{SnapshotOnly: *fSnapshot, Trigger: *fTrigger})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		l.Error().Err(err).Msg("write report")
	}

	if err := reg.Push(context.WithoutCancel(ctx), metrics.ConfigFrom(root)); err != nil {
		l.Warn().Err(err).Msg("pushgateway delivery failed")
	}

	// a run skipped because another holds the lease is not a failure
	if !rep.OK() {
		return 1
	}
	return 0
}
