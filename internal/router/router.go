package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flowfit-backend/internal/handlers"
	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/middleware"
)

type Params struct {
	Sessions       *handlers.SessionHandler
	Pages          *handlers.PageHandler
	Metrics        *metrics.Manager
	Registry       *prometheus.Registry
	AllowedOrigin  string
	AIRateLimitMin int
}

// New builds the HTTP handler. The returned limiter must be stopped on shutdown.
func New(p Params) (http.Handler, *middleware.RateLimiter) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogging(p.Metrics))
	r.Use(chimiddleware.Recoverer)

	// AI rate limiter (per IP)
	aiLimiter := middleware.NewRateLimiter(p.AIRateLimitMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	// ──── Server-rendered UI ────
	r.Get("/", p.Pages.Start)
	r.Route("/s/{id}", func(r chi.Router) {
		r.Get("/", p.Pages.Show)
		r.Post("/page", p.Pages.Navigate)
		r.Post("/sets", p.Pages.CompleteSet)
		r.Post("/reset", p.Pages.ResetTracking)

		r.Group(func(r chi.Router) {
			r.Use(aiLimiter.WithRejection(p.Pages.RateLimited))
			r.Post("/routine", p.Pages.GenerateRoutine)
			r.Post("/chat", p.Pages.Chat)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(p.AllowedOrigin))

		r.Get("/catalog", p.Sessions.Catalog)

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", p.Sessions.Create)
			r.Get("/{id}", p.Sessions.Get)
			r.Delete("/{id}", p.Sessions.Delete)
			r.Put("/{id}/page", p.Sessions.Navigate)
			r.Post("/{id}/sets", p.Sessions.CompleteSet)
			r.Post("/{id}/reset", p.Sessions.ResetTracking)

			// AI-backed routes
			r.Group(func(r chi.Router) {
				r.Use(aiLimiter.Middleware)
				r.Post("/{id}/routine", p.Sessions.GenerateRoutine)
				r.Post("/{id}/chat", p.Sessions.Chat)
			})
		})
	})

	return r, aiLimiter
}
