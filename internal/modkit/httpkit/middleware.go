// Package httpkit composes the platform middleware into the stacks the api mounts
package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"launchpipe/internal/platform/config"
	phttp "launchpipe/internal/platform/net/http"
	"launchpipe/internal/platform/net/middleware"
)

// Router aliases the platform router for module signatures
type Router = phttp.Router

// StackOptions tune the common stack, see StackFrom
type StackOptions struct {
	Origins []string
	Timeout time.Duration
	Slow    time.Duration
}

// StackFrom reads API_CORS_ORIGINS, API_TIMEOUT and API_SLOW
func StackFrom(cfg config.Conf) StackOptions {
	api := cfg.Prefix("API_")
	return StackOptions{
		Origins: api.MayCSV("CORS_ORIGINS", []string{"*"}),
		Timeout: api.MayDuration("TIMEOUT", 30*time.Second),
		Slow:    api.MayDuration("SLOW", 500*time.Millisecond),
	}
}

// CommonStack returns the baseline middleware slice for versioned routes
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins, MaxAge: 300}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
