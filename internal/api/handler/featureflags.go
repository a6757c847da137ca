package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
	logger  zerolog.Logger
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service, logger zerolog.Logger) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service, logger: logger}
}

// ListFeatureFlags handles GET /v1/admin/flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, featureflags.FlagList{Items: h.service.List(r.Context())})
}

// UpsertFeatureFlags handles PUT /v1/admin/flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var input featureflags.FlagUpdateRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if len(input.Updates) == 0 {
		response.BadRequest(w, r, "at least one update is required", []models.FieldError{
			{Field: "updates", Message: "required", Code: models.FieldCodeRequired},
		})
		return
	}

	if err := h.service.Update(r.Context(), input.Updates); err != nil {
		response.FromError(w, r, h.logger, err)
		return
	}

	h.logger.Info().
		Int("count", len(input.Updates)).
		Str("reason", input.Reason).
		Msg("feature flags changed via admin API")

	response.JSON(w, r, http.StatusOK, featureflags.FlagList{Items: h.service.List(r.Context())})
}

// InvalidateCache handles POST /v1/admin/flags/invalidate - invalidate flag cache.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
