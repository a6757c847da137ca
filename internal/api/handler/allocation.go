package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/parking"
)

// AllocationHandler handles spot allocation.
type AllocationHandler struct {
	deps Dependencies
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(deps Dependencies) *AllocationHandler {
	return &AllocationHandler{deps: deps.withDefaults()}
}

// Allocate handles POST /v1/spots:allocate - rank the free spots of a lot
// for a vehicle.
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var input models.AllocateRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.LotID == "" {
		response.BadRequest(w, r, "lotId is required", []models.FieldError{
			{Field: "lotId", Message: "required", Code: models.FieldCodeRequired},
		})
		return
	}
	if input.Vehicle.Type == "" {
		input.Vehicle.Type = parking.VehicleSedan
	}
	if !input.Vehicle.Type.Valid() {
		response.FromError(w, r, h.deps.Logger, parking.Invalid("vehicle.type", "unknown vehicle type %q", input.Vehicle.Type))
		return
	}

	ctx := r.Context()
	spots, err := h.deps.Store.ListSpots(ctx, input.LotID)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	candidates := make([]allocation.Spot, 0, len(spots))
	for _, s := range spots {
		if s.Occupied {
			continue
		}
		if input.Floor != nil && s.Floor != *input.Floor {
			continue
		}
		candidates = append(candidates, s)
	}

	vehicle := input.Vehicle.Vehicle()

	ctx, span := startSpan(ctx, "allocation.Allocate",
		attribute.String("lot.id", input.LotID),
		attribute.Int("candidates", len(candidates)),
	)
	ranked, err := h.deps.Allocation.Allocate(vehicle, input.Preferences, candidates)
	span.End()
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	h.deps.Instruments.Allocation(ctx, string(vehicle.Type), len(ranked) > 0)

	out := make([]models.AllocatedSpot, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, models.AllocatedSpot{
			ScoredSpot: s,
			ReasonText: allocationReasons(s.Reasons),
		})
	}

	response.JSON(w, r, http.StatusOK, models.AllocateResponse{
		LotID:      input.LotID,
		Vehicle:    vehicle,
		Candidates: len(candidates),
		Spots:      out,
	})
}
