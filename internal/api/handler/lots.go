package handler

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/geo"
	"github.com/smartpark/smartpark/internal/parking"
)

// LotsHandler handles lot listing and lookup.
type LotsHandler struct {
	deps Dependencies
}

// NewLotsHandler creates a new LotsHandler.
func NewLotsHandler(deps Dependencies) *LotsHandler {
	return &LotsHandler{deps: deps.withDefaults()}
}

// ListLots handles GET /v1/lots - list lots with availability.
// Query: near=lat,lng and radius (meters) keep the lots around a point,
// nearest first.
func (h *LotsHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	var (
		near   *parking.Coordinates
		radius float64
	)
	if raw := r.URL.Query().Get("near"); raw != "" {
		c, err := parseCoordinates(raw)
		if err != nil {
			response.FromError(w, r, h.deps.Logger, err)
			return
		}
		near = &c
	}
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !parking.Positive(v) {
			response.FromError(w, r, h.deps.Logger, parking.Invalid("radius", "must be a positive number of meters"))
			return
		}
		radius = v
	}

	lots, err := h.deps.Store.ListLots(r.Context())
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	out := make([]models.LotSummary, 0, len(lots))
	for _, lot := range lots {
		summary := summarizeLot(lot)
		if near != nil {
			d := geo.Haversine(*near, lot.Location)
			if radius > 0 && d > radius {
				continue
			}
			summary.Distance = &d
		}
		out = append(out, summary)
	}
	if near != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].Distance < *out[j].Distance
		})
	}

	response.JSON(w, r, http.StatusOK, models.LotListResponse{
		Lots: out,
		Meta: models.ListMeta{Count: len(out)},
	})
}

// GetLot handles GET /v1/lots/{lotId}.
func (h *LotsHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lot, err := h.deps.Store.GetLot(r.Context(), chi.URLParam(r, "lotId"))
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, summarizeLot(*lot))
}

func summarizeLot(lot parking.Lot) models.LotSummary {
	// An inconsistent lot reports a zero rate.
	rate, _ := lot.OccupancyRate()
	return models.LotSummary{
		Lot:            lot,
		OccupancyRate:  rate,
		AvailableSpots: lot.AvailableSpots(),
	}
}

// parseCoordinates parses "lat,lng".
func parseCoordinates(raw string) (parking.Coordinates, error) {
	latRaw, lngRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return parking.Coordinates{}, parking.Invalid("near", "must be formatted as lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return parking.Coordinates{}, parking.Invalid("near", "latitude is not a number")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return parking.Coordinates{}, parking.Invalid("near", "longitude is not a number")
	}
	c := parking.Coordinates{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return parking.Coordinates{}, err
	}
	return c, nil
}
