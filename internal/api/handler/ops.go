// Package handler provides HTTP handlers for the smartpark API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/provider/resilience"
)

// readyTimeout bounds the store ping of a readiness check.
const readyTimeout = 2 * time.Second

// OpsConfig holds configuration for the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// StoreBackend names the repository implementation ("memory" or "postgres").
	StoreBackend string

	// Registry reports provider health.
	// Default: resilience.GlobalRegistry
	Registry *resilience.Registry

	Deps Dependencies
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	storeBackend string
	registry     *resilience.Registry
	deps         Dependencies
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	if cfg.Registry == nil {
		cfg.Registry = resilience.GlobalRegistry
	}
	return &OpsHandler{
		version:      cfg.Version,
		buildTime:    cfg.BuildTime,
		storeBackend: cfg.StoreBackend,
		registry:     cfg.Registry,
		deps:         cfg.Deps.withDefaults(),
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.deps.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Ready means
// the store answers.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pingStore(r.Context()); err != nil {
		h.deps.Logger.Warn().Err(err).Str("store", h.storeBackend).Msg("readiness check failed")
		response.JSON(w, r, http.StatusServiceUnavailable, models.Health{
			Status:  models.HealthStatusFail,
			Time:    models.Timestamp(h.deps.Now()),
			Details: map[string]any{"store": err.Error()},
		})
		return
	}

	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.deps.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.deps.Now()),
		Providers: []models.ProviderStatus{},
	}

	storeStatus := models.SubsystemStatus{Name: "store", Status: models.HealthStatusOK, Detail: strPtr(h.storeBackend)}
	if err := h.pingStore(ctx); err != nil {
		storeStatus.Status = models.HealthStatusFail
		storeStatus.Detail = strPtr(err.Error())
		status.Status = models.HealthStatusFail
	}
	status.Subsystems = append(status.Subsystems, storeStatus)

	if h.deps.Weather != nil {
		stats := h.deps.Weather.CacheStats()
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "weather-cache",
			Status: models.HealthStatusOK,
			Detail: strPtr(stats.Provider),
		})
	}

	for _, p := range h.registry.All() {
		ps := models.ProviderStatus{
			Provider:      p.Name,
			Status:        providerHealth(p.Status),
			CircuitState:  p.State,
			LastSuccessAt: timestampPtr(p.LastSuccessAt),
			LastFailureAt: timestampPtr(p.LastFailureAt),
		}
		if p.LastError != "" {
			ps.Message = strPtr(p.LastError)
		}
		if ps.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
		status.Providers = append(status.Providers, ps)
	}

	for _, key := range []string{featureflags.FlagDisableWeatherFactor, featureflags.FlagDisableHolidaySurcharge} {
		if h.deps.Flags.IsEnabled(ctx, key) {
			status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, key)
		}
	}
	if len(status.ActiveDegradationFlags) > 0 && status.Status == models.HealthStatusOK {
		status.Status = models.HealthStatusDegraded
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) pingStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	_, err := h.deps.Store.ListLots(ctx)
	return err
}

func providerHealth(status string) models.HealthStatus {
	switch status {
	case resilience.StatusHealthy:
		return models.HealthStatusOK
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusFail
	}
}

func strPtr(s string) *string {
	return &s
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
