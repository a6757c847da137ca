package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/pricing"
)

// PricingHandler handles price quotes and daily price trends.
type PricingHandler struct {
	deps Dependencies
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(deps Dependencies) *PricingHandler {
	return &PricingHandler{deps: deps.withDefaults()}
}

// Quote handles POST /v1/prices:quote - price a stay at a lot.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var input models.QuoteRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.LotID == "" {
		response.BadRequest(w, r, "lotId is required", []models.FieldError{
			{Field: "lotId", Message: "required", Code: models.FieldCodeRequired},
		})
		return
	}

	ctx := r.Context()
	lot, err := h.deps.Store.GetLot(ctx, input.LotID)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	choice := resolveWeather(ctx, h.deps, input.Weather, lot.Location)

	ctx, span := startSpan(ctx, "pricing.Quote", attribute.String("lot.id", lot.ID))
	quote, err := h.deps.Pricing.Quote(pricing.QuoteRequest{
		Lot:            *lot,
		At:             input.At.TimeOr(h.deps.Now()),
		DurationHours:  input.DurationHours,
		Weather:        choice.weather,
		IgnoreWeather:  choice.ignore,
		IgnoreHolidays: h.deps.Flags.HolidaySurchargeDisabled(ctx),
	})
	span.End()
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	h.deps.Instruments.Quote(ctx, lot.ID, string(quote.Weather), quote.HourlyRate)

	response.JSON(w, r, http.StatusOK, models.QuoteResponse{
		ID:            "qte_" + uuid.New().String(),
		Quote:         quote,
		WeatherSource: choice.source,
	})
}

// PriceTrend handles GET /v1/lots/{lotId}/price-trend - hourly rates for a day.
// Query: date=YYYY-MM-DD (default today), weather=normal|rain|heat.
func (h *PricingHandler) PriceTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot, err := h.deps.Store.GetLot(ctx, chi.URLParam(r, "lotId"))
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	now := h.deps.Now()
	day := now
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.ParseInLocation(time.DateOnly, raw, now.Location())
		if err != nil {
			response.BadRequest(w, r, "date must be formatted as YYYY-MM-DD", []models.FieldError{
				{Field: "date", Message: err.Error(), Code: models.FieldCodeMalformed},
			})
			return
		}
	}

	var requested *pricing.Weather
	if raw := r.URL.Query().Get("weather"); raw != "" {
		w := pricing.Weather(raw)
		requested = &w
	}
	choice := resolveWeather(ctx, h.deps, requested, lot.Location)

	trend, err := h.deps.Pricing.Trend(pricing.TrendRequest{
		Lot:            *lot,
		Day:            day,
		Weather:        choice.fixed(),
		IgnoreHolidays: h.deps.Flags.HolidaySurchargeDisabled(ctx),
	})
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, models.PriceTrendResponse{
		LotID:   lot.ID,
		Date:    day.Format(time.DateOnly),
		Weather: choice.fixed(),
		Hours:   trend,
	})
}

