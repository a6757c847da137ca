package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/store"
)

// InsightsHandler handles operator insights.
type InsightsHandler struct {
	deps Dependencies
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(deps Dependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps.withDefaults()}
}

// GetInsights handles GET /v1/lots/{lotId}/insights.
// The latest stored report is served. Without one, insights are generated
// from the lot snapshot. Query refresh=true generates and stores a new report.
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lotID := chi.URLParam(r, "lotId")

	refresh := false
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, r, "refresh must be a boolean", []models.FieldError{
				{Field: "refresh", Message: err.Error(), Code: models.FieldCodeInvalid},
			})
			return
		}
		refresh = v
	}

	if !refresh {
		report, err := h.deps.Store.LatestInsights(ctx, lotID)
		switch {
		case err == nil:
			response.JSON(w, r, http.StatusOK, reportResponse(report, models.InsightSourceStored))
			return
		case !errors.Is(err, store.ErrReportNotFound):
			response.FromError(w, r, h.deps.Logger, err)
			return
		}
	}

	snapshot, err := h.deps.Store.GetSnapshot(ctx, lotID)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	generator := insights.NewGenerator(insights.Config{
		UtilizationThreshold: h.deps.Flags.UtilizationThreshold(ctx),
		Logger:               h.deps.Logger,
	})

	ctx, span := startSpan(ctx, "insights.Generate", attribute.String("lot.id", lotID))
	found, err := generator.Generate(*snapshot)
	span.End()
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}
	for _, in := range found {
		h.deps.Instruments.Insight(ctx, lotID, string(in.Priority))
	}

	report := &store.InsightReport{
		LotID:       lotID,
		GeneratedAt: h.deps.Now().UTC(),
		Insights:    found,
	}
	if refresh {
		report.ID = uuid.New().String()
		if err := h.deps.Store.SaveInsights(ctx, report); err != nil {
			response.FromError(w, r, h.deps.Logger, err)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, reportResponse(report, models.InsightSourceGenerated))
}

func reportResponse(report *store.InsightReport, source string) models.InsightsResponse {
	return models.InsightsResponse{
		ReportID:    report.ID,
		LotID:       report.LotID,
		GeneratedAt: models.Timestamp(report.GeneratedAt),
		Source:      source,
		Insights:    report.Insights,
	}
}
