package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName scopes the engine instruments.
const InstrumentationName = "github.com/smartpark/smartpark"

// Instruments records engine-level metrics.
type Instruments struct {
	quotes          metric.Int64Counter
	quotePrice      metric.Float64Histogram
	allocations     metric.Int64Counter
	recommendations metric.Int64Counter
	pathSearches    metric.Int64Counter
	pathExplored    metric.Int64Histogram
	insights        metric.Int64Counter
}

// NewInstruments creates the engine instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)
	if in.quotes, err = meter.Int64Counter("smartpark.pricing.quotes",
		metric.WithDescription("Price quotes computed"), metric.WithUnit("{quote}")); err != nil {
		return nil, err
	}
	if in.quotePrice, err = meter.Float64Histogram("smartpark.pricing.hourly_rate",
		metric.WithDescription("Quoted hourly rate"), metric.WithUnit("{CNY}/h")); err != nil {
		return nil, err
	}
	if in.allocations, err = meter.Int64Counter("smartpark.allocation.requests",
		metric.WithDescription("Spot allocation requests"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if in.recommendations, err = meter.Int64Counter("smartpark.recommendation.requests",
		metric.WithDescription("Lot recommendation requests"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if in.pathSearches, err = meter.Int64Counter("smartpark.navigation.searches",
		metric.WithDescription("A* path searches"), metric.WithUnit("{search}")); err != nil {
		return nil, err
	}
	if in.pathExplored, err = meter.Int64Histogram("smartpark.navigation.explored_nodes",
		metric.WithDescription("Nodes closed per path search"), metric.WithUnit("{node}")); err != nil {
		return nil, err
	}
	if in.insights, err = meter.Int64Counter("smartpark.insights.generated",
		metric.WithDescription("Insights produced per priority"), metric.WithUnit("{insight}")); err != nil {
		return nil, err
	}
	return &in, nil
}

// MustInstruments panics when instrument creation fails. Only the global
// no-op and SDK meters are used, neither of which fails.
func MustInstruments(meter metric.Meter) *Instruments {
	in, err := NewInstruments(meter)
	if err != nil {
		panic(err)
	}
	return in
}

// Quote records one price quote.
func (in *Instruments) Quote(ctx context.Context, lotID, weather string, hourlyRate float64) {
	attrs := metric.WithAttributes(attribute.String("lot.id", lotID), attribute.String("weather", weather))
	in.quotes.Add(ctx, 1, attrs)
	in.quotePrice.Record(ctx, hourlyRate, attrs)
}

// Allocation records one allocation request and whether it found spots.
func (in *Instruments) Allocation(ctx context.Context, vehicleType string, found bool) {
	in.allocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vehicle.type", vehicleType),
		attribute.Bool("found", found),
	))
}

// Recommendation records one recommendation request.
func (in *Instruments) Recommendation(ctx context.Context, candidates int) {
	in.recommendations.Add(ctx, 1, metric.WithAttributes(attribute.Int("candidates", candidates)))
}

// PathSearch records one A* search.
func (in *Instruments) PathSearch(ctx context.Context, explored int, failed bool) {
	attrs := metric.WithAttributes(attribute.Bool("failed", failed))
	in.pathSearches.Add(ctx, 1, attrs)
	in.pathExplored.Record(ctx, int64(explored), attrs)
}

// Insight records one produced insight.
func (in *Instruments) Insight(ctx context.Context, lotID, priority string) {
	in.insights.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lot.id", lotID),
		attribute.String("priority", priority),
	))
}
