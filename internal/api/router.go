package api

import (
	"net/http"

	"carrier-search-portal/internal/api/handlers"
	"carrier-search-portal/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	CORSOrigins []string
	// SearchRate and SearchBurst size the token bucket in front of POST /search.
	SearchRate  rate.Limit
	SearchBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(catalog handlers.CarrierFinder, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	searchHandler := handlers.NewSearchHandler(catalog)

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.SearchRate > 0 {
			r.Use(RateLimit(rate.NewLimiter(cfg.SearchRate, max(1, cfg.SearchBurst))))
		}
		r.Post("/search", searchHandler.Search)
	})

	return r
}
