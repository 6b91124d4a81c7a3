// Package api provides the HTTP API for the application
package api

import (
	"context"
	"net/http"

	"launchpipe/internal/platform/config"
	"launchpipe/internal/platform/logger"
	"launchpipe/internal/platform/metrics"
	phttp "launchpipe/internal/platform/net/http"
	"launchpipe/internal/platform/store"

	"launchpipe/internal/modkit"
	"launchpipe/internal/modkit/httpkit"
	"launchpipe/internal/modkit/module"
	"launchpipe/internal/modkit/swaggerkit"

	metamod "launchpipe/internal/services/api/meta/module"
	ingestmod "launchpipe/internal/services/ingest/module"
	snapmod "launchpipe/internal/services/snapshots/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Metrics       *metrics.Registry
	EnableSwagger bool
}

// Mount builds the modules and mounts them onto r
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	deps := modkit.DepsFrom(opt.Config, opt.Store, opt.Metrics)
	log := logger.Named("api")

	// the ingest module owns the Runner port the snapshots module writes through
	ingest, err := ingestmod.New(deps, nil)
	if err != nil {
		return err
	}
	if err := ingest.Start(ctx); err != nil {
		return err
	}
	runner := module.MustPortsOf[ingestmod.Ports](ingest).Runner

	snapshots, err := snapmod.New(deps, runner)
	if err != nil {
		return err
	}

	mods := []module.Module{
		metamod.New(deps),
		snapshots,
		ingest,
	}

	mc := metrics.ConfigFrom(opt.Config)
	if mc.Enabled {
		r.Handle(mc.Path, deps.Metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		phttp.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	swaggerkit.Mount(r, opt.EnableSwagger)

	stack := httpkit.CommonStack(httpkit.StackFrom(opt.Config))
	if mc.Enabled {
		stack = append([]func(http.Handler) http.Handler{deps.Metrics.HTTP()}, stack...)
	}
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
			log.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	})
	return nil
}
