// Package parking holds the domain types shared by the scoring engines.
package parking

import (
	"math"
	"time"
)

// VehicleType is the body class of a vehicle.
type VehicleType string

const (
	VehicleSedan   VehicleType = "sedan"
	VehicleSUV     VehicleType = "suv"
	VehicleMPV     VehicleType = "mpv"
	VehicleCompact VehicleType = "compact"
)

// Valid reports whether t is a known vehicle type.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleSedan, VehicleSUV, VehicleMPV, VehicleCompact:
		return true
	}
	return false
}

// Vehicle is supplied per request and never mutated.
type Vehicle struct {
	Type   VehicleType `json:"type"`
	Length float64     `json:"length"`
	Width  float64     `json:"width"`
}

// DefaultDimensions returns typical length and width in meters for a vehicle type.
// Unknown types fall back to sedan dimensions.
func DefaultDimensions(t VehicleType) (length, width float64) {
	switch t {
	case VehicleSUV:
		return 5.0, 2.0
	case VehicleMPV:
		return 5.2, 2.2
	case VehicleCompact:
		return 4.0, 1.7
	default:
		return 4.5, 1.8
	}
}

// NewVehicle creates a vehicle of the given type with its default dimensions.
func NewVehicle(t VehicleType) Vehicle {
	l, w := DefaultDimensions(t)
	return Vehicle{Type: t, Length: l, Width: w}
}

// Area returns the vehicle footprint in square meters.
func (v Vehicle) Area() float64 {
	return v.Length * v.Width
}

// Validate checks that the vehicle dimensions are usable.
func (v Vehicle) Validate() error {
	if !positive(v.Length) {
		return Invalid("vehicle.length", "must be a positive number, got %v", v.Length)
	}
	if !positive(v.Width) {
		return Invalid("vehicle.width", "must be a positive number, got %v", v.Width)
	}
	return nil
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks the coordinate ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return Invalid("lat", "must be between -90 and 90, got %v", c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return Invalid("lng", "must be between -180 and 180, got %v", c.Lng)
	}
	return nil
}

// Occupancy is an occupied/total pair for a lot or an area.
type Occupancy struct {
	Occupied int `json:"occupiedSpots"`
	Total    int `json:"totalSpots"`
}

// Rate returns Occupied/Total in [0,1].
func (o Occupancy) Rate() (float64, error) {
	if o.Total <= 0 {
		return 0, Invalid("totalSpots", "must be greater than zero, got %d", o.Total)
	}
	if o.Occupied < 0 || o.Occupied > o.Total {
		return 0, Invalid("occupiedSpots", "must be between 0 and %d, got %d", o.Total, o.Occupied)
	}
	return float64(o.Occupied) / float64(o.Total), nil
}

// Free returns the number of unoccupied spots.
func (o Occupancy) Free() int {
	return o.Total - o.Occupied
}

// Lot is a parking facility.
type Lot struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Address       string      `json:"address,omitempty"`
	District      string      `json:"district,omitempty"`
	TotalSpots    int         `json:"totalSpots"`
	OccupiedSpots int         `json:"occupiedSpots"`
	BasePrice     float64     `json:"basePrice"`
	Rating        float64     `json:"rating"`
	Location      Coordinates `json:"location"`
	HasDiscount   bool        `json:"hasDiscount,omitempty"`
	HasEVCharger  bool        `json:"hasEvCharger,omitempty"`
}

// Occupancy returns the lot's occupied/total pair.
func (l Lot) Occupancy() Occupancy {
	return Occupancy{Occupied: l.OccupiedSpots, Total: l.TotalSpots}
}

// OccupancyRate returns occupiedSpots/totalSpots.
func (l Lot) OccupancyRate() (float64, error) {
	return l.Occupancy().Rate()
}

// AvailableSpots returns the number of free spots.
func (l Lot) AvailableSpots() int {
	return l.TotalSpots - l.OccupiedSpots
}

// HistoryRecord is a single past parking session of a user.
type HistoryRecord struct {
	LotID       string      `json:"lotId"`
	Fee         float64     `json:"fee"`
	Duration    float64     `json:"duration"`
	Distance    float64     `json:"distance"`
	VehicleType VehicleType `json:"vehicleType"`
	Timestamp   time.Time   `json:"timestamp"`
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Positive reports whether f is a finite number greater than zero.
func Positive(f float64) bool {
	return positive(f)
}
