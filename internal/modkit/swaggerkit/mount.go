// Package swaggerkit mounts the swagger UI and the post-processed JSON spec
package swaggerkit

import (
	"net/http"

	phttp "launchpipe/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount the Swagger UI under /swagger if enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusPermanentRedirect)
	})
	r.Get("/swagger/doc.json", serveDocJSON())
	r.Handle("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName("launchpipe"),
		httpSwagger.URL("/swagger/doc.json"),
	))
}
