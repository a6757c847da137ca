package handler

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/pricing"
	"github.com/smartpark/smartpark/internal/recommendation"
)

// predictionHours is the stay length used to predict a lot's hourly rate.
const predictionHours = 2

// RecommendationHandler handles lot recommendations.
type RecommendationHandler struct {
	deps Dependencies
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(deps Dependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps.withDefaults()}
}

// Recommend handles POST /v1/lots:recommend - rank the lots around a
// destination for a driver.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var input models.RecommendRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := input.Destination.Validate(); err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}
	if input.Radius < 0 {
		response.FromError(w, r, h.deps.Logger, parking.Invalid("radius", "must not be negative"))
		return
	}

	ctx := r.Context()
	user := recommendation.User{ID: input.UserID}
	if input.UserID != "" {
		u, err := h.deps.Store.GetUser(ctx, input.UserID)
		if err != nil {
			response.FromError(w, r, h.deps.Logger, err)
			return
		}
		user.History = u.History
		user.NeedsEVCharger = u.NeedsEVCharger
	}
	if input.NeedsEVCharger != nil {
		user.NeedsEVCharger = *input.NeedsEVCharger
	}

	radius := input.Radius
	if radius == 0 {
		radius = h.deps.Flags.RecommendationRadius(ctx)
	}

	lots, err := h.deps.Store.ListLots(ctx)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}
	candidates := recommendation.Nearby(input.Destination, lots, radius)

	engine := recommendation.NewEngine(recommendation.Config{
		Predictor: h.predictor(ctx),
		Logger:    h.deps.Logger,
	})

	_, span := startSpan(ctx, "recommendation.Recommend",
		attribute.Int("candidates", len(candidates)),
		attribute.Float64("radius", radius),
	)
	recs, err := engine.Recommend(user, input.Destination, input.At.TimeOr(h.deps.Now()), candidates)
	span.End()
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	h.deps.Instruments.Recommendation(ctx, len(candidates))

	out := make([]models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.Recommendation{
			LotRecommendation: rec,
			ReasonText:        recommendationReasons(rec.Reasons),
		})
	}

	response.JSON(w, r, http.StatusOK, models.RecommendResponse{
		Radius:          radius,
		Candidates:      len(candidates),
		Profile:         recommendation.BuildProfile(user.History),
		Recommendations: out,
	})
}

// predictor quotes each lot with the weather resolved for its location.
func (h *RecommendationHandler) predictor(ctx context.Context) recommendation.PricePredictor {
	ignoreHolidays := h.deps.Flags.HolidaySurchargeDisabled(ctx)

	return recommendation.PredictorFunc(func(lot parking.Lot, at time.Time) (float64, error) {
		choice := resolveWeather(ctx, h.deps, nil, lot.Location)
		q, err := h.deps.Pricing.Quote(pricing.QuoteRequest{
			Lot:            lot,
			At:             at,
			DurationHours:  predictionHours,
			Weather:        choice.weather,
			IgnoreWeather:  choice.ignore,
			IgnoreHolidays: ignoreHolidays,
		})
		if err != nil {
			return 0, err
		}
		return q.HourlyRate, nil
	})
}

