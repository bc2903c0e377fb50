package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/smilecare-booking/internal/clinic"
	"github.com/wolfman30/smilecare-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/smilecare-booking/internal/http/middleware"
	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *handlers.BookingHandler
	FunnelHandler      *clinic.FunnelHandler
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	// Probes and scraping stay outside the rate limit.
	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
		}
		if cfg.BookingHandler != nil {
			api.Get("/catalog", cfg.BookingHandler.Catalog)
			api.Mount("/sessions", cfg.BookingHandler.Routes())
		}
		if cfg.FunnelHandler != nil {
			api.Get("/stats/funnel", cfg.FunnelHandler.GetFunnel)
		}
	})

	return r
}
