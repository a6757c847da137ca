// Package api provides the HTTP API for smartpark.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/api/handler"
	"github.com/smartpark/smartpark/internal/api/middleware"
	"github.com/smartpark/smartpark/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// RequireTLS rejects plain HTTP requests (REQUIRE_TLS=true).
	RequireTLS bool

	// StoreBackend names the repository implementation for the status endpoint.
	StoreBackend string

	// Registry reports provider health.
	// Default: resilience.GlobalRegistry
	Registry *resilience.Registry

	// Deps are the engines and data the handlers work with.
	Deps handler.Dependencies
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "smartpark-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:      cfg.Version,
		BuildTime:    cfg.BuildTime,
		StoreBackend: cfg.StoreBackend,
		Registry:     cfg.Registry,
		Deps:         cfg.Deps,
	})
	lotsHandler := handler.NewLotsHandler(cfg.Deps)
	allocationHandler := handler.NewAllocationHandler(cfg.Deps)
	pricingHandler := handler.NewPricingHandler(cfg.Deps)
	recommendationHandler := handler.NewRecommendationHandler(cfg.Deps)
	navigationHandler := handler.NewNavigationHandler(cfg.Deps)
	insightsHandler := handler.NewInsightsHandler(cfg.Deps)
	creditHandler := handler.NewCreditHandler(cfg.Deps)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.Deps.Flags, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)             // 20 req/min
	expensiveRateLimit := middleware.RateLimitByClient(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)       // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/status", opsHandler.SystemStatus)
		})

		// Engine endpoints that run a search or rank candidates
		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/spots:allocate", allocationHandler.Allocate)
			r.Post("/lots:recommend", recommendationHandler.Recommend)
			r.Post("/navigation:path", navigationHandler.FindPath)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)

			r.With(middleware.RequireJSON).Post("/prices:quote", pricingHandler.Quote)

			r.Route("/lots", func(r chi.Router) {
				r.Get("/", lotsHandler.ListLots)
				r.Route("/{lotId}", func(r chi.Router) {
					r.Get("/", lotsHandler.GetLot)
					r.Get("/price-trend", pricingHandler.PriceTrend)
					r.Get("/insights", insightsHandler.GetInsights)
				})
			})

			r.Get("/vehicles/{plate}/location", navigationHandler.LocateVehicle)
			r.Get("/users/{userId}/credit", creditHandler.GetCredit)
		})

		// Admin endpoints - strict rate limiting
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminRateLimit)
			r.Get("/feature-flags", featureFlagsHandler.ListFeatureFlags)
			r.With(middleware.RequireJSON).Put("/feature-flags", featureFlagsHandler.UpsertFeatureFlags)
			r.Post("/feature-flags/invalidate", featureFlagsHandler.InvalidateCache)
		})
	})

	return r
}
