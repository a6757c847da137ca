package navigation

import (
	"time"

	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/pricing"
)

// ParkedVehicle records where and when a vehicle was parked.
type ParkedVehicle struct {
	Plate      string    `json:"plate"`
	LotID      string    `json:"lotId"`
	SpotID     string    `json:"spotId"`
	Position   GridNode  `json:"position"`
	ParkedAt   time.Time `json:"parkedAt"`
	FeePaid    float64   `json:"feePaid"`
	HourlyRate float64   `json:"hourlyRate"`
}

// VehicleLocation answers where a parked vehicle is and what it owes.
type VehicleLocation struct {
	Plate       string      `json:"plate"`
	LotID       string      `json:"lotId"`
	SpotID      string      `json:"spotId"`
	Position    GridNode    `json:"position"`
	ParkedAt    time.Time   `json:"parkedAt"`
	ParkedHours float64     `json:"parkedHours"`
	CurrentFee  float64     `json:"currentFee"`
	Route       *PathResult `json:"route"`
}

// LocateVehicle routes from the entrance to a parked vehicle and prices the
// stay so far. A lot without an hourly rate is charged the default base price.
func LocateVehicle(parked ParkedVehicle, entrance GridNode, now time.Time, grid *Grid, opts Options) (*VehicleLocation, error) {
	if parked.Plate == "" {
		return nil, parking.Invalid("plate", "plate is required")
	}
	if parked.ParkedAt.IsZero() {
		return nil, parking.Invalid("parkedAt", "parking time is required")
	}
	if now.Before(parked.ParkedAt) {
		return nil, parking.Invalid("parkedAt", "parking time %s is in the future", parked.ParkedAt.Format(time.RFC3339))
	}
	if parked.FeePaid < 0 || parked.HourlyRate < 0 {
		return nil, parking.Invalid("fee", "fees must not be negative")
	}

	route, err := FindPath(entrance, parked.Position, grid, opts)
	if err != nil {
		return nil, err
	}

	rate := parked.HourlyRate
	if rate == 0 {
		rate = pricing.DefaultBasePrice
	}
	hours := now.Sub(parked.ParkedAt).Hours()

	return &VehicleLocation{
		Plate:       parked.Plate,
		LotID:       parked.LotID,
		SpotID:      parked.SpotID,
		Position:    parked.Position,
		ParkedAt:    parked.ParkedAt,
		ParkedHours: hours,
		CurrentFee:  parked.FeePaid + hours*rate,
		Route:       route,
	}, nil
}
