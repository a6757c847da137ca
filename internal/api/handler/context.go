package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/pricing"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/telemetry"
	"github.com/smartpark/smartpark/internal/weather"
)

const tracerName = "github.com/smartpark/smartpark/internal/api/handler"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies are the collaborators shared by the parking handlers.
type Dependencies struct {
	// Store holds lots, spots, users, snapshots and parked vehicles (required).
	Store store.Repository

	// Flags supplies runtime switches (required).
	Flags *featureflags.Service

	// Weather serves observed weather. Nil disables observed weather.
	Weather *weather.Service

	// Pricing computes quotes and trends.
	// Default: pricing.NewEngine(pricing.DefaultConfig())
	Pricing *pricing.Engine

	// Allocation ranks spots.
	// Default: allocation.NewEngine(allocation.DefaultConfig())
	Allocation *allocation.Engine

	// Grid is the garage layout used for navigation.
	// Default: navigation.DefaultGrid()
	Grid *navigation.Grid

	// Entrance is where routes to parked vehicles start.
	// Default: navigation.DefaultEntrance
	Entrance *navigation.GridNode

	// Instruments records engine metrics.
	// Default: instruments on the global meter provider
	Instruments *telemetry.Instruments

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time

	// Logger for handler operations.
	Logger zerolog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Pricing == nil {
		d.Pricing = pricing.NewEngine(pricing.DefaultConfig())
	}
	if d.Allocation == nil {
		d.Allocation = allocation.NewEngine(allocation.DefaultConfig())
	}
	if d.Grid == nil {
		d.Grid = navigation.DefaultGrid()
	}
	if d.Entrance == nil {
		entrance := navigation.DefaultEntrance
		d.Entrance = &entrance
	}
	if d.Instruments == nil {
		d.Instruments = telemetry.MustInstruments(telemetry.Meter(telemetry.InstrumentationName))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// decodeJSON decodes the request body into dst. It writes a 400 problem and
// returns false when the body is not valid JSON for dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body", []models.FieldError{
			{Field: "body", Message: err.Error(), Code: models.FieldCodeMalformed},
		})
		return false
	}
	return true
}

// startSpan opens an internal span around an engine call.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
