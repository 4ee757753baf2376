package portal

import (
	"net/http"

	"carrier-search-portal/internal/api"
	"carrier-search-portal/internal/api/handlers"
	"carrier-search-portal/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the portal endpoints under /api.
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(api.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(api.CORS(corsOrigins))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", h.Search)
		r.Post("/search/retry", h.Retry)
		r.Post("/search/clear", h.Clear)
		r.Get("/state", h.State)

		r.Get("/history", h.ListHistory)
		r.Delete("/history", h.ClearHistory)
		r.Post("/history/{id}/search", h.SearchFromHistory)

		r.Get("/preferences", h.GetPreferences)
		r.Patch("/preferences", h.PatchPreferences)

		r.Get("/route", h.Route)
		r.Get("/places", h.Places)
	})

	return r
}
