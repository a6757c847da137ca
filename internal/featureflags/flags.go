// Package featureflags holds runtime switches for pricing, navigation and insights.
package featureflags

import (
	"encoding/json"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagDisableWeatherFactor prices every quote with neutral weather.
	FlagDisableWeatherFactor = "disable_weather_factor"

	// FlagDisableHolidaySurcharge skips the public holiday multiplier.
	FlagDisableHolidaySurcharge = "disable_holiday_surcharge"

	// FlagObservedWeather classifies live provider weather instead of the sampler.
	FlagObservedWeather = "observed_weather"

	// FlagInsightsUtilizationThreshold is the area occupancy below which an
	// area is reported as underused.
	FlagInsightsUtilizationThreshold = "insights_utilization_threshold"

	// FlagNavigationMaxIterations caps A* expansions per path search.
	FlagNavigationMaxIterations = "navigation_max_iterations"

	// FlagRecommendationRadius is the candidate radius in meters for lot recommendations.
	FlagRecommendationRadius = "recommendation_radius"
)

// Flag is a feature flag and its JSON value.
type Flag struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FlagList is the admin listing payload.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate changes one flag.
type FlagUpdate struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// FlagUpdateRequest is the admin update payload.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag as a bool, or def when unset or not boolean.
func (f *Flag) BoolValue(def bool) bool {
	if f == nil {
		return def
	}
	if v, ok := f.Value.(bool); ok {
		return v
	}
	return def
}

// Float64Value returns the flag as a float64, or def when unset or not numeric.
func (f *Flag) Float64Value(def float64) float64 {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return n
		}
	}
	return def
}

// IntValue returns the flag as an int, or def when unset or not numeric.
func (f *Flag) IntValue(def int) int {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64.
		return int(v)
	}
	return def
}

func (f *Flag) clone() *Flag {
	c := *f
	return &c
}

// DefaultFlags returns the flag values used when storage has none.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	defaults := map[string]any{
		FlagDisableWeatherFactor:         false,
		FlagDisableHolidaySurcharge:      false,
		FlagObservedWeather:              false,
		FlagInsightsUtilizationThreshold: 0.4,
		FlagNavigationMaxIterations:      10000.0,
		FlagRecommendationRadius:         3000.0,
	}

	flags := make(map[string]*Flag, len(defaults))
	for key, value := range defaults {
		flags[key] = &Flag{Key: key, Value: value, UpdatedAt: now}
	}
	return flags
}
