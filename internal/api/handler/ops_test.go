package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/api/handler"
	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/provider/resilience"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/weather"
)

// downStore fails every lot listing.
type downStore struct {
	*store.InMemoryRepository
}

func (downStore) ListLots(context.Context) ([]parking.Lot, error) {
	return nil, errors.New("connection refused")
}

func opsRouter(deps handler.Dependencies, registry ...*resilience.Registry) http.Handler {
	reg := resilience.NewRegistry()
	if len(registry) > 0 {
		reg = registry[0]
	}
	h := handler.NewOpsHandler(handler.OpsConfig{
		Version:      "1.2.3",
		BuildTime:    "2025-03-12T00:00:00Z",
		StoreBackend: "memory",
		Registry:     reg,
		Deps:         deps,
	})
	r := chi.NewRouter()
	r.Get("/v1/ops/health", h.HealthCheck)
	r.Get("/v1/ops/ready", h.ReadinessCheck)
	r.Get("/v1/ops/status", h.SystemStatus)
	return r
}

func TestHealthCheck(t *testing.T) {
	router := opsRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/ops/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	health := decode[models.Health](t, w)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Details["version"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("store answers", func(t *testing.T) {
		router := opsRouter(testDeps(t))

		w := do(t, router, http.MethodGet, "/v1/ops/ready", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.HealthStatusOK, decode[models.Health](t, w).Status)
	})

	t.Run("store down", func(t *testing.T) {
		deps := testDeps(t)
		deps.Store = downStore{fixtureRepository()}
		router := opsRouter(deps)

		w := do(t, router, http.MethodGet, "/v1/ops/ready", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		health := decode[models.Health](t, w)
		assert.Equal(t, models.HealthStatusFail, health.Status)
		assert.Equal(t, "connection refused", health.Details["store"])
	})
}

func TestSystemStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		deps := testDeps(t)
		deps.Weather = weatherService(&fakeWeather{obs: &weather.Observation{Condition: weather.ConditionClear}})
		router := opsRouter(deps)

		w := do(t, router, http.MethodGet, "/v1/ops/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		status := decode[models.SystemStatus](t, w)
		assert.Equal(t, models.HealthStatusOK, status.Status)
		require.Len(t, status.Subsystems, 2)
		assert.Equal(t, "store", status.Subsystems[0].Name)
		require.NotNil(t, status.Subsystems[0].Detail)
		assert.Equal(t, "memory", *status.Subsystems[0].Detail)
		assert.Equal(t, "weather-cache", status.Subsystems[1].Name)
		assert.Empty(t, status.Providers)
		assert.Empty(t, status.ActiveDegradationFlags)
	})

	t.Run("registered provider", func(t *testing.T) {
		registry := resilience.NewRegistry()
		cfg := resilience.DefaultClientConfig("openweathermap")
		cfg.Registry = registry
		resilience.NewClient(cfg)
		router := opsRouter(testDeps(t), registry)

		status := decode[models.SystemStatus](t, do(t, router, http.MethodGet, "/v1/ops/status", nil))
		require.Len(t, status.Providers, 1)
		assert.Equal(t, "openweathermap", status.Providers[0].Provider)
		assert.Equal(t, models.HealthStatusOK, status.Providers[0].Status)
		assert.Equal(t, "closed", status.Providers[0].CircuitState)
		assert.Equal(t, models.HealthStatusOK, status.Status)
	})

	t.Run("degradation flag", func(t *testing.T) {
		deps := testDeps(t)
		deps.Flags = newFlags(t, map[string]any{featureflags.FlagDisableWeatherFactor: true})
		router := opsRouter(deps)

		status := decode[models.SystemStatus](t, do(t, router, http.MethodGet, "/v1/ops/status", nil))
		assert.Equal(t, models.HealthStatusDegraded, status.Status)
		assert.Equal(t, []string{featureflags.FlagDisableWeatherFactor}, status.ActiveDegradationFlags)
	})

	t.Run("store down", func(t *testing.T) {
		deps := testDeps(t)
		deps.Store = downStore{fixtureRepository()}
		router := opsRouter(deps)

		status := decode[models.SystemStatus](t, do(t, router, http.MethodGet, "/v1/ops/status", nil))
		assert.Equal(t, models.HealthStatusFail, status.Status)
		assert.Equal(t, models.HealthStatusFail, status.Subsystems[0].Status)
	})
}
