package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborvet/portal-api/internal/http/handlers"
	httpmiddleware "github.com/harborvet/portal-api/internal/http/middleware"
	"github.com/harborvet/portal-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	PortalHandler      *handlers.PortalHandler
	PortalJWTSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on the wizard endpoints; zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.PortalHandler != nil {
		r.Route("/portal/requests", func(portal chi.Router) {
			portal.Use(httpmiddleware.PortalAuth(cfg.PortalJWTSecret))
			if cfg.RateLimitRPS > 0 {
				limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
				portal.Use(httpmiddleware.RateLimit(limiter))
			}

			portal.Post("/", cfg.PortalHandler.StartRequest)
			portal.Route("/{sessionID}", func(session chi.Router) {
				session.Get("/", cfg.PortalHandler.GetRequest)
				session.Patch("/", cfg.PortalHandler.UpdateRequest)
				session.Post("/next", cfg.PortalHandler.Next)
				session.Post("/back", cfg.PortalHandler.Back)
				session.Post("/submit", cfg.PortalHandler.Submit)
			})
		})
	}

	return r
}
