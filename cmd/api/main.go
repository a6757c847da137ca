// Package main provides the entrypoint for the smartpark API server.
package main

import (
	"context"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/api"
	"github.com/smartpark/smartpark/internal/api/handler"
	"github.com/smartpark/smartpark/internal/api/middleware"
	"github.com/smartpark/smartpark/internal/database"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/pricing"
	"github.com/smartpark/smartpark/internal/provider/resilience"
	"github.com/smartpark/smartpark/internal/simulate"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/telemetry"
	"github.com/smartpark/smartpark/internal/weather"
	"github.com/smartpark/smartpark/internal/weather/openweathermap"
	"github.com/smartpark/smartpark/migrations"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "smartpark-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting smartpark API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	grid := navigation.DefaultGrid()

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	var (
		repo   store.Repository
		ffRepo featureflags.Repository
	)
	switch backend {
	case "postgres":
		pool := connectDatabase(ctx, log)
		defer pool.Close()
		repo = store.NewPostgresRepository(pool)
		ffRepo = featureflags.NewPostgresRepository(pool)
	case "memory":
		memRepo := store.NewInMemoryRepository()
		seed := demoSeed(log)
		lots := simulate.NewSeeded(seed, time.Now()).Seed(memRepo, grid)
		log.Info().
			Uint64("seed", seed).
			Int("lots", len(lots)).
			Msg("in-memory store seeded with demo data")
		repo = memRepo
		ffRepo = featureflags.NewInMemoryRepository()
	default:
		log.Fatal().Str("backend", backend).Msg("unknown STORE_BACKEND, expected memory or postgres")
	}

	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Observed weather is optional; without a key prices use sampled weather.
	var weatherService *weather.Service
	if apiKey := os.Getenv("OPENWEATHERMAP_API_KEY"); apiKey != "" {
		weatherService = weather.NewService(weather.ServiceConfig{
			Provider: openweathermap.NewClient(openweathermap.ClientConfig{
				APIKey:   apiKey,
				Registry: resilience.GlobalRegistry,
				Logger:   log,
			}),
			Logger: log,
		})
		log.Info().Msg("observed weather enabled")
	} else {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY not set - observed weather disabled")
	}

	pricingCfg := pricing.DefaultConfig()
	pricingCfg.Sampler = pricing.NewRandomWeather(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))) //nolint:gosec // weather sampling is not security sensitive
	pricingCfg.Logger = log

	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		RequireTLS:   os.Getenv("REQUIRE_TLS") == "true",
		StoreBackend: backend,
		Registry:     resilience.GlobalRegistry,
		Deps: handler.Dependencies{
			Store:   repo,
			Flags:   ffService,
			Weather: weatherService,
			Pricing: pricing.NewEngine(pricingCfg),
			Grid:    grid,
			Logger:  log,
		},
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("store", backend).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// connectDatabase opens the pool and applies pending migrations.
func connectDatabase(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.Migrate(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	return pool
}

func demoSeed(log zerolog.Logger) uint64 {
	raw := os.Getenv("DEMO_SEED")
	if raw == "" {
		return 42
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msg("invalid DEMO_SEED, using 42")
		return 42
	}
	return seed
}
