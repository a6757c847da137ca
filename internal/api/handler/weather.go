package handler

import (
	"context"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/pricing"
)

// weatherChoice is the weather a price is computed with and where it came from.
type weatherChoice struct {
	// weather is nil when the pricing engine's sampler decides.
	weather *pricing.Weather
	ignore  bool
	source  string
}

// fixed returns the choice as a concrete weather, neutral when sampled or disabled.
func (c weatherChoice) fixed() pricing.Weather {
	if c.ignore || c.weather == nil {
		return pricing.WeatherNormal
	}
	return *c.weather
}

// resolveWeather picks the pricing weather for a location. The disable flag
// wins over everything, then an explicit request value, then observed
// weather when enabled. A failing provider falls back to the sampler.
func resolveWeather(ctx context.Context, d Dependencies, requested *pricing.Weather, at parking.Coordinates) weatherChoice {
	if d.Flags.WeatherFactorDisabled(ctx) {
		return weatherChoice{ignore: true, source: models.WeatherSourceDisabled}
	}
	if requested != nil {
		return weatherChoice{weather: requested, source: models.WeatherSourceRequest}
	}
	if d.Weather != nil && d.Flags.ObservedWeatherEnabled(ctx) {
		obs, err := d.Weather.GetCurrentWeather(ctx, at.Lat, at.Lng)
		if err == nil {
			w := pricing.ClassifyObservation(obs)
			return weatherChoice{weather: &w, source: models.WeatherSourceObserved}
		}
		d.Logger.Warn().
			Err(err).
			Str("provider", d.Weather.ProviderName()).
			Msg("observed weather unavailable, using sampled weather")
	}
	return weatherChoice{source: models.WeatherSourceSampled}
}
