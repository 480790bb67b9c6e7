package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}))
	}

	if s.cfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware(s.cfg.RateLimit.RequestsPerMinute))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Index endpoints (when an index store is configured).
		if s.indexStore != nil {
			r.Get("/workflows", s.handleListWorkflows)
			r.Get("/workflows/{id}", s.handleGetWorkflow)
		}
	})

	// Generated report files.
	fileServer := http.FileServer(http.Dir(s.outputsDir))
	r.Handle("/files/*", http.StripPrefix("/files/", fileServer))

	return r
}
