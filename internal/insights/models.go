// Package insights turns an operational snapshot of a parking lot into
// prioritized recommendations for its operator.
package insights

import (
	"math"
	"time"

	"github.com/smartpark/smartpark/internal/parking"
)

// Kind names the analyzer that produced an insight.
type Kind string

const (
	KindUtilization Kind = "utilization"
	KindRevenue     Kind = "revenue"
	KindPeak        Kind = "peak"
	KindBehavior    Kind = "behavior"
	KindDevice      Kind = "device"
)

// Type is the presentation tone of an insight.
type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

// Priority orders insights, most urgent first.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 0 for the most urgent priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// ActionCode identifies the operation an operator can apply for an insight.
type ActionCode string

const (
	ActionReduceAreaPrice         ActionCode = "reduce_area_price"
	ActionEnableDynamicPricing    ActionCode = "enable_dynamic_pricing"
	ActionSchedulePeakPreparation ActionCode = "schedule_peak_preparation"
	ActionOptimizeShortTerm       ActionCode = "optimize_short_term"
	ActionCreateLongTermPackages  ActionCode = "create_long_term_packages"
	ActionScheduleMaintenance     ActionCode = "schedule_maintenance"
)

// Action is a structured follow-up for an insight.
type Action struct {
	Code       ActionCode `json:"code"`
	Target     string     `json:"target,omitempty"`
	Multiplier float64    `json:"multiplier,omitempty"`
	DeviceIDs  []string   `json:"deviceIds,omitempty"`
}

// Insight is one operator recommendation.
type Insight struct {
	Kind           Kind               `json:"kind"`
	Type           Type               `json:"type"`
	Priority       Priority           `json:"priority"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Metrics        map[string]float64 `json:"metrics"`
	Suggestions    []string           `json:"suggestions"`
	ExpectedImpact string             `json:"expectedImpact"`
	Action         Action             `json:"action"`
	Devices        []Device           `json:"devices,omitempty"`
}

// AreaStat is the occupancy of one area of the lot.
type AreaStat struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalSpots    int    `json:"totalSpots"`
	OccupiedSpots int    `json:"occupiedSpots"`
}

// Rate returns the area occupancy rate.
func (a AreaStat) Rate() (float64, error) {
	return parking.Occupancy{Occupied: a.OccupiedSpots, Total: a.TotalSpots}.Rate()
}

// DailyStat is one day of lot history.
type DailyStat struct {
	Date          time.Time `json:"date"`
	Revenue       float64   `json:"revenue"`
	Vehicles      int       `json:"vehicles"`
	OccupancyRate float64   `json:"occupancyRate"`
}

// DeviceStatus is the health of a device.
type DeviceStatus string

const (
	DeviceNormal DeviceStatus = "normal"
	DeviceFault  DeviceStatus = "fault"
)

// CriticalLevel is how much a device matters to operations.
type CriticalLevel string

const (
	CriticalHigh   CriticalLevel = "high"
	CriticalMedium CriticalLevel = "medium"
	CriticalLow    CriticalLevel = "low"
)

// Device is a piece of lot equipment such as a camera or barrier.
type Device struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Location      string        `json:"location"`
	Status        DeviceStatus  `json:"status"`
	FaultTime     *time.Time    `json:"faultTime,omitempty"`
	CriticalLevel CriticalLevel `json:"criticalLevel"`
}

// Snapshot is the read-only operational state the analyzers work on.
// Zero AvgDuration, ShortTermRatio and DailyRevenue take defaults.
type Snapshot struct {
	LotID          string      `json:"lotId"`
	At             time.Time   `json:"at"`
	DailyRevenue   float64     `json:"dailyRevenue"`
	AvgDuration    float64     `json:"avgDuration"`
	ShortTermRatio float64     `json:"shortTermRatio"`
	Areas          []AreaStat  `json:"areas"`
	History        []DailyStat `json:"history,omitempty"`
	Devices        []Device    `json:"devices"`
}

// Validate checks the snapshot before analysis.
func (s Snapshot) Validate() error {
	if s.At.IsZero() {
		return parking.Invalid("at", "snapshot time is required")
	}
	for i, a := range s.Areas {
		if _, err := a.Rate(); err != nil {
			return parking.Invalid("areas", "area %d (%s): %v", i, a.ID, err)
		}
	}
	if s.DailyRevenue < 0 || !finite(s.DailyRevenue) {
		return parking.Invalid("dailyRevenue", "must be a non-negative number, got %v", s.DailyRevenue)
	}
	if s.AvgDuration < 0 || !finite(s.AvgDuration) {
		return parking.Invalid("avgDuration", "must be a non-negative number, got %v", s.AvgDuration)
	}
	if s.ShortTermRatio < 0 || s.ShortTermRatio > 1 || !finite(s.ShortTermRatio) {
		return parking.Invalid("shortTermRatio", "must be between 0 and 1, got %v", s.ShortTermRatio)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
