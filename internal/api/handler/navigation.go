package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/navigation"
)

// NavigationHandler handles in-garage routing.
type NavigationHandler struct {
	deps Dependencies
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(deps Dependencies) *NavigationHandler {
	return &NavigationHandler{deps: deps.withDefaults()}
}

// FindPath handles POST /v1/navigation:path - walking route between two
// points of the garage. An unreachable goal is a 200 with failed set.
func (h *NavigationHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	var input models.PathRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	start := *h.deps.Entrance
	if input.Start != nil {
		start = *input.Start
	}
	opts := input.Options
	if opts.MaxIterations == 0 {
		opts.MaxIterations = h.deps.Flags.NavigationMaxIterations(r.Context())
	}

	ctx, span := startSpan(r.Context(), "navigation.FindPath",
		attribute.Int("start.floor", start.Floor),
		attribute.Int("goal.floor", input.Goal.Floor),
	)
	result, err := navigation.FindPath(start, input.Goal, h.deps.Grid, opts)
	if err == nil {
		span.SetAttributes(
			attribute.Int("explored", result.ExploredNodes),
			attribute.Bool("failed", result.Failed),
		)
	}
	span.End()
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	h.deps.Instruments.PathSearch(ctx, result.ExploredNodes, result.Failed)

	response.JSON(w, r, http.StatusOK, models.PathResponse{
		PathResult:      result,
		InstructionText: instructionTexts(result.Instructions),
	})
}

// LocateVehicle handles GET /v1/vehicles/{plate}/location - where a parked
// vehicle is, the route to it and the fee so far.
func (h *NavigationHandler) LocateVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "plate")))

	parked, err := h.deps.Store.FindVehicle(ctx, plate)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	opts := navigation.Options{MaxIterations: h.deps.Flags.NavigationMaxIterations(ctx)}
	loc, err := navigation.LocateVehicle(*parked, *h.deps.Entrance, h.deps.Now(), h.deps.Grid, opts)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}
	h.deps.Instruments.PathSearch(ctx, loc.Route.ExploredNodes, loc.Route.Failed)

	response.JSON(w, r, http.StatusOK, models.VehicleLocationResponse{
		VehicleLocation: loc,
		InstructionText: instructionTexts(loc.Route.Instructions),
	})
}
