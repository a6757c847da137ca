package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/featureflags"
)

func flagValue(list featureflags.FlagList, key string) any {
	for _, f := range list.Items {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func TestFeatureFlags_List(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/admin/feature-flags", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := decode[featureflags.FlagList](t, w)
	assert.Len(t, list.Items, len(featureflags.DefaultFlags()))
	assert.Equal(t, false, flagValue(list, featureflags.FlagDisableWeatherFactor))
	assert.Equal(t, 3000.0, flagValue(list, featureflags.FlagRecommendationRadius))
}

func TestFeatureFlags_Upsert(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodPut, "/v1/admin/feature-flags", map[string]any{
		"updates": []map[string]any{
			{"key": featureflags.FlagRecommendationRadius, "value": 500},
			{"key": featureflags.FlagDisableHolidaySurcharge, "value": true},
		},
		"reason": "festival traffic",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := decode[featureflags.FlagList](t, w)
	assert.Equal(t, 500.0, flagValue(list, featureflags.FlagRecommendationRadius))
	assert.Equal(t, true, flagValue(list, featureflags.FlagDisableHolidaySurcharge))

	// The change is visible to the engines.
	w = do(t, router, http.MethodPost, "/v1/lots:recommend", map[string]any{
		"destination": destination(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"radius":500`)
}

func TestFeatureFlags_UpsertErrors(t *testing.T) {
	router := testRouter(testDeps(t))

	tests := []struct {
		name string
		body any
	}{
		{"no updates", map[string]any{"updates": []any{}}},
		{"wrong type", map[string]any{"updates": []map[string]any{{"key": featureflags.FlagObservedWeather, "value": "yes"}}}},
		{"missing key", map[string]any{"updates": []map[string]any{{"value": true}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPut, "/v1/admin/feature-flags", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestFeatureFlags_InvalidateCache(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodPost, "/v1/admin/feature-flags/invalidate", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
