// Package httptransport assembles the router: middleware chain, engine
// endpoints, health and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quarters/internal/housing/handler"
	"quarters/internal/platform/middleware"
)

// NewRouter wires the public surface. Everything under the engine handler
// requires an authenticated actor; health and metrics stay open.
func NewRouter(h *handler.Handler, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor(validator, logger))
		h.Register(r)
	})

	return r
}
