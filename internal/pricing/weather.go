package pricing

import (
	"math/rand/v2"
	"sync"

	"github.com/smartpark/smartpark/internal/weather"
)

// Weather is the pricing-relevant weather bucket.
type Weather string

const (
	WeatherNormal Weather = "normal"
	WeatherRain   Weather = "rain"
	WeatherHeat   Weather = "heat"
)

// HeatThresholdCelsius is the temperature above which heat pricing applies.
const HeatThresholdCelsius = 35.0

// Valid reports whether w is a known bucket.
func (w Weather) Valid() bool {
	switch w {
	case WeatherNormal, WeatherRain, WeatherHeat:
		return true
	}
	return false
}

// Multiplier returns the price multiplier for the bucket.
func (w Weather) Multiplier() float64 {
	switch w {
	case WeatherRain:
		return 1.2
	case WeatherHeat:
		return 1.1
	default:
		return 1.0
	}
}

func (w Weather) description() string {
	switch w {
	case WeatherRain:
		return "rainy weather, higher demand"
	case WeatherHeat:
		return "hot weather, covered parking in demand"
	default:
		return "normal weather"
	}
}

// WeatherSampler supplies the weather bucket when a request does not carry one.
type WeatherSampler interface {
	Sample() Weather
}

// FixedWeather always returns the same bucket.
type FixedWeather Weather

// Sample implements WeatherSampler.
func (f FixedWeather) Sample() Weather {
	return Weather(f)
}

// RandomWeather draws a bucket from an injected random source:
// rain 15% of the time, heat 10%, otherwise normal.
type RandomWeather struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWeather creates a sampler backed by rng.
func NewRandomWeather(rng *rand.Rand) *RandomWeather {
	return &RandomWeather{rng: rng}
}

// Sample implements WeatherSampler.
func (r *RandomWeather) Sample() Weather {
	r.mu.Lock()
	p := r.rng.Float64()
	r.mu.Unlock()

	switch {
	case p < 0.15:
		return WeatherRain
	case p < 0.25:
		return WeatherHeat
	default:
		return WeatherNormal
	}
}

// ClassifyObservation maps a provider observation to a pricing bucket.
func ClassifyObservation(obs *weather.Observation) Weather {
	if obs == nil {
		return WeatherNormal
	}
	switch {
	case obs.Precipitating():
		return WeatherRain
	case obs.Temperature > HeatThresholdCelsius:
		return WeatherHeat
	default:
		return WeatherNormal
	}
}
