package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/smartpark/smartpark/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "smartpark-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})
	require.NoError(t, err)

	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("ENVIRONMENT", "staging")

	cfg := telemetry.ConfigFromEnv("smartpark-api", "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.25, cfg.SampleRatio)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "smartpark-api", cfg.ServiceName)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLE_RATIO", "7")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("ENVIRONMENT", "")

	cfg := telemetry.ConfigFromEnv("smartpark-worker", "dev")

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRatio)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "development", cfg.Environment)
}

func TestInstruments_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx := context.Background()

	in, err := telemetry.NewInstruments(mp.Meter("test"))
	require.NoError(t, err)

	in.Quote(ctx, "lot-1", "rain", 9.0)
	in.Quote(ctx, "lot-1", "normal", 5.0)
	in.Allocation(ctx, "sedan", true)
	in.Recommendation(ctx, 7)
	in.PathSearch(ctx, 120, false)
	in.Insight(ctx, "lot-1", "high")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make(map[string]bool)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	for _, want := range []string{
		"smartpark.pricing.quotes",
		"smartpark.pricing.hourly_rate",
		"smartpark.allocation.requests",
		"smartpark.recommendation.requests",
		"smartpark.navigation.searches",
		"smartpark.navigation.explored_nodes",
		"smartpark.insights.generated",
	} {
		assert.True(t, names[want], want)
	}
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}
