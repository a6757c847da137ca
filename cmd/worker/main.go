// Package main provides the entrypoint for the smartpark insights worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/database"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/provider/resilience"
	"github.com/smartpark/smartpark/internal/simulate"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/telemetry"
	"github.com/smartpark/smartpark/internal/weather"
	"github.com/smartpark/smartpark/internal/weather/openweathermap"
	"github.com/smartpark/smartpark/internal/worker"
	"github.com/smartpark/smartpark/migrations"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "smartpark-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting smartpark worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	var (
		repo  store.Repository
		flags *featureflags.Service
	)
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "postgres":
		pool := connectDatabase(ctx, log)
		defer pool.Close()
		repo = store.NewPostgresRepository(pool)
		flags = featureflags.NewService(featureflags.ServiceConfig{
			Repository: featureflags.NewPostgresRepository(pool),
			Logger:     log,
			CacheTTL:   1 * time.Minute,
		})
	case "", "memory":
		memRepo := store.NewInMemoryRepository()
		simulate.NewSeeded(demoSeed(log), time.Now()).Seed(memRepo, navigation.DefaultGrid())
		repo = memRepo
	default:
		log.Fatal().Str("backend", backend).Msg("unknown STORE_BACKEND, expected memory or postgres")
	}

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
	}

	job := worker.NewInsightsRefreshJob(worker.RefreshJobConfig{
		Config:         worker.DefaultRefreshConfig(),
		Store:          repo,
		Flags:          flags,
		WeatherService: weatherService,
		Logger:         log,
	})

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "healthy",
			"version": Version,
			"refresh": job.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	cfg := worker.ConfigFromEnv()
	if cfg.PubSubEnabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.ProjectID,
			SubscriptionName: cfg.Subscription,
			RefreshJob:       job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
			}
		}()
	} else {
		log.Info().
			Dur("interval", cfg.Interval).
			Msg("PUBSUB_PROJECT_ID not set - refreshing on a ticker")
		go runTicker(ctx, job, cfg.Interval, log)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// runTicker refreshes once at startup and then every interval.
func runTicker(ctx context.Context, job *worker.InsightsRefreshJob, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := job.Run(ctx); err != nil {
			log.Error().Err(err).Msg("insights refresh failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func connectDatabase(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
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
