package models

import (
	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/pricing"
	"github.com/smartpark/smartpark/internal/recommendation"
)

// LotSummary is a lot with its derived availability.
type LotSummary struct {
	parking.Lot
	OccupancyRate  float64  `json:"occupancyRate"`
	AvailableSpots int      `json:"availableSpots"`
	Distance       *float64 `json:"distance,omitempty"`
}

// LotListResponse is the response of GET /v1/lots.
type LotListResponse struct {
	Lots []LotSummary `json:"lots"`
	Meta ListMeta     `json:"meta"`
}

// VehicleInput describes the vehicle to park. Missing dimensions take the
// defaults of its type.
type VehicleInput struct {
	Type   parking.VehicleType `json:"type"`
	Length float64             `json:"length,omitempty"`
	Width  float64             `json:"width,omitempty"`
}

// Vehicle resolves the input into a domain vehicle.
func (v VehicleInput) Vehicle() parking.Vehicle {
	out := parking.NewVehicle(v.Type)
	if v.Length != 0 {
		out.Length = v.Length
	}
	if v.Width != 0 {
		out.Width = v.Width
	}
	return out
}

// AllocateRequest is the body of POST /v1/spots:allocate.
type AllocateRequest struct {
	LotID       string                 `json:"lotId"`
	Vehicle     VehicleInput           `json:"vehicle"`
	Preferences allocation.Preferences `json:"preferences"`
	// Floor restricts candidates to one floor when set.
	Floor *int `json:"floor,omitempty"`
}

// AllocatedSpot is a ranked spot with rendered reasons.
type AllocatedSpot struct {
	allocation.ScoredSpot
	ReasonText []string `json:"reasonText"`
}

// AllocateResponse is the response of POST /v1/spots:allocate.
type AllocateResponse struct {
	LotID      string          `json:"lotId"`
	Vehicle    parking.Vehicle `json:"vehicle"`
	Candidates int             `json:"candidates"`
	Spots      []AllocatedSpot `json:"spots"`
}

// Weather sources reported on a quote.
const (
	WeatherSourceRequest  = "request"
	WeatherSourceObserved = "observed"
	WeatherSourceSampled  = "sampled"
	WeatherSourceDisabled = "disabled"
)

// QuoteRequest is the body of POST /v1/prices:quote.
type QuoteRequest struct {
	LotID         string           `json:"lotId"`
	At            *Timestamp       `json:"at,omitempty"`
	DurationHours float64          `json:"durationHours"`
	Weather       *pricing.Weather `json:"weather,omitempty"`
}

// QuoteResponse is a priced quote with its id.
type QuoteResponse struct {
	ID string `json:"id"`
	*pricing.Quote
	WeatherSource string `json:"weatherSource"`
}

// PriceTrendResponse is the response of GET /v1/lots/{lotId}/price-trend.
type PriceTrendResponse struct {
	LotID   string                `json:"lotId"`
	Date    string                `json:"date"`
	Weather pricing.Weather       `json:"weather"`
	Hours   []pricing.HourlyPrice `json:"hours"`
}

// RecommendRequest is the body of POST /v1/lots:recommend.
type RecommendRequest struct {
	UserID         string              `json:"userId,omitempty"`
	Destination    parking.Coordinates `json:"destination"`
	At             *Timestamp          `json:"at,omitempty"`
	NeedsEVCharger *bool               `json:"needsEvCharger,omitempty"`
	// Radius overrides the configured candidate radius in meters.
	Radius float64 `json:"radius,omitempty"`
}

// Recommendation is a ranked lot with rendered reasons.
type Recommendation struct {
	recommendation.LotRecommendation
	ReasonText []string `json:"reasonText"`
}

// RecommendResponse is the response of POST /v1/lots:recommend.
type RecommendResponse struct {
	Radius          float64                `json:"radius"`
	Candidates      int                    `json:"candidates"`
	Profile         recommendation.Profile `json:"profile"`
	Recommendations []Recommendation       `json:"recommendations"`
}

// PathRequest is the body of POST /v1/navigation:path. A missing start is
// the garage entrance.
type PathRequest struct {
	Start   *navigation.GridNode `json:"start,omitempty"`
	Goal    navigation.GridNode  `json:"goal"`
	Options navigation.Options   `json:"options"`
}

// PathResponse is a route with rendered instructions.
type PathResponse struct {
	*navigation.PathResult
	InstructionText []string `json:"instructionText"`
}

// VehicleLocationResponse is the response of GET /v1/vehicles/{plate}/location.
type VehicleLocationResponse struct {
	*navigation.VehicleLocation
	InstructionText []string `json:"instructionText"`
}

// Insight report sources.
const (
	InsightSourceStored    = "stored"
	InsightSourceGenerated = "generated"
)

// InsightsResponse is the response of GET /v1/lots/{lotId}/insights.
type InsightsResponse struct {
	ReportID    string             `json:"reportId"`
	LotID       string             `json:"lotId"`
	GeneratedAt Timestamp          `json:"generatedAt"`
	Source      string             `json:"source"`
	Insights    []insights.Insight `json:"insights"`
}

// CreditResponse is the response of GET /v1/users/{userId}/credit.
type CreditResponse struct {
	UserID string `json:"userId"`
	*credit.Result
	BenefitText []string `json:"benefitText"`
}
