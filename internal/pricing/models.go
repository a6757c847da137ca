// Package pricing computes dynamic parking prices from occupancy, time, calendar and weather.
package pricing

import (
	"time"
)

// Factor names.
const (
	FactorOccupancy = "occupancy"
	FactorTime      = "time"
	FactorWeekend   = "weekend"
	FactorHoliday   = "holiday"
	FactorWeather   = "weather"
	FactorDuration  = "duration"
)

// Factor is one named multiplier applied to the base rate.
type Factor struct {
	Name        string  `json:"factor"`
	Multiplier  float64 `json:"multiplier"`
	Description string  `json:"description"`
}

// Multipliers holds every factor value, including neutral ones.
type Multipliers struct {
	Occupancy float64 `json:"occupancy"`
	Time      float64 `json:"time"`
	Weekend   float64 `json:"weekend"`
	Holiday   float64 `json:"holiday"`
	Weather   float64 `json:"weather"`
	Duration  float64 `json:"duration"`
}

// Hourly returns the product of the factors that feed the hourly rate.
// The duration discount only applies to the total.
func (m Multipliers) Hourly() float64 {
	return m.Occupancy * m.Time * m.Weekend * m.Holiday * m.Weather
}

// SavingKind identifies a savings suggestion.
type SavingKind string

const (
	SavingTime     SavingKind = "time"
	SavingLocation SavingKind = "location"
	SavingDay      SavingKind = "day"
)

// Saving is a suggestion to pay less, with its estimated benefit for the requested duration.
type Saving struct {
	Kind            SavingKind `json:"type"`
	PotentialSaving float64    `json:"potentialSaving"`
	// SuggestedHour is set for time suggestions.
	SuggestedHour *int `json:"suggestedHour,omitempty"`
}

// Quote is a fully derived price for a lot, a start time and a duration.
type Quote struct {
	LotID           string      `json:"lotId"`
	BasePrice       float64     `json:"basePrice"`
	HourlyRate      float64     `json:"hourlyRate"`
	TotalPrice      float64     `json:"totalPrice"`
	OriginalPrice   float64     `json:"originalPrice"`
	Savings         float64     `json:"savings"`
	DurationHours   float64     `json:"durationHours"`
	OccupancyRate   float64     `json:"occupancyRate"`
	Weather         Weather     `json:"weather"`
	Multipliers     Multipliers `json:"multipliers"`
	Factors         []Factor    `json:"priceFactors"`
	Recommendations []Saving    `json:"recommendations"`
	At              time.Time   `json:"at"`
}

// HourlyPrice is one point of a daily price trend.
type HourlyPrice struct {
	Hour       int     `json:"hour"`
	HourlyRate float64 `json:"hourlyRate"`
	IsPeak     bool    `json:"isPeak"`
	IsOffPeak  bool    `json:"isOffPeak"`
}
