package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/netwatch/internal/api/alerts"
	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/api/middleware"
	"github.com/good-yellow-bee/netwatch/internal/api/samples"
	"github.com/good-yellow-bee/netwatch/internal/api/thresholds"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	jwtService := auth.NewJWTService(s.config.JWTSecret, s.config.AccessTokenTTL)
	lockoutTracker := auth.NewLockoutTracker(s.config.LockoutThreshold, s.config.LockoutDuration)

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)
	userLimiter := middleware.NewRateLimiter(s.config.RateLimitPerUser)

	// Global middleware
	r.Use(middleware.RequestLogger(s.logger, s.config.Verbose))
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer(s.logger))

	// Health endpoints (no auth)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			authHandler := auth.NewHandler(s.users, jwtService, lockoutTracker, s.logger)
			r.Use(middleware.RateLimitByIP(ipLimiter))
			r.Post("/login", authHandler.Login)
		})

		// Poller ingestion, authenticated by API key
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.config.APIKeys, s.logger))
			r.Post("/samples", samples.NewHandler(s.service, s.logger).Ingest)
		})

		// Dashboard routes; the monitor service authorizes each action by role
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService, s.logger))
			r.Use(middleware.RateLimitByUser(userLimiter))

			th := thresholds.NewHandler(s.service)
			r.Route("/thresholds", func(r chi.Router) {
				r.Get("/", th.List)
				r.Get("/{metricType}", th.Get)
				r.Put("/{metricType}", th.Put)
				r.Patch("/{metricType}/enabled", th.PatchEnabled)
			})

			ah := alerts.NewHandler(s.service)
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", ah.List)
				r.Get("/summary", ah.Summary)
				r.Post("/resolve-all", ah.ResolveAll)
				r.Get("/{id}", ah.GetByID)
				r.Post("/{id}/resolve", ah.Resolve)
			})
		})
	})

	return r
}
