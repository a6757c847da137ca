// Package weather supplies observed conditions for the pricing weather factor.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation is the current weather at a point.
type Observation struct {
	Lat float64
	Lon float64

	// Temperature in Celsius
	Temperature float64

	// Humidity percentage (0-100)
	Humidity float64

	// WindSpeed in m/s
	WindSpeed float64

	Condition   Condition
	Description string

	ObservedAt time.Time
	FetchedAt  time.Time
}

// Precipitating reports whether the observed condition keeps people in their cars.
func (o *Observation) Precipitating() bool {
	switch o.Condition {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm, ConditionSnow:
		return true
	}
	return false
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)
