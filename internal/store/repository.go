// Package store provides the read-mostly parking data the engines work on.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
)

// Sentinel errors for store operations.
var (
	ErrLotNotFound      = errors.New("parking lot not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrReportNotFound   = errors.New("insight report not found")
)

// User is a driver with the data the recommendation and credit engines need.
type User struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	VehicleType    parking.VehicleType     `json:"vehicleType"`
	NeedsEVCharger bool                    `json:"needsEvCharger"`
	Credit         credit.Stats            `json:"credit"`
	History        []parking.HistoryRecord `json:"history"`
}

// InsightReport is a stored insight run for a lot.
type InsightReport struct {
	ID          string             `json:"id"`
	LotID       string             `json:"lotId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Insights    []insights.Insight `json:"insights"`
}

// Repository defines the interface for parking data access.
type Repository interface {
	// GetLot retrieves a lot by ID.
	GetLot(ctx context.Context, id string) (*parking.Lot, error)

	// ListLots retrieves every lot ordered by ID.
	ListLots(ctx context.Context) ([]parking.Lot, error)

	// ListSpots retrieves the spots of a lot. Returns ErrLotNotFound for an unknown lot.
	ListSpots(ctx context.Context, lotID string) ([]allocation.Spot, error)

	// GetUser retrieves a user with their parking history.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetSnapshot retrieves the latest operational snapshot of a lot.
	GetSnapshot(ctx context.Context, lotID string) (*insights.Snapshot, error)

	// FindVehicle retrieves a parked vehicle by plate.
	FindVehicle(ctx context.Context, plate string) (*navigation.ParkedVehicle, error)

	// SaveInsights stores an insight report.
	SaveInsights(ctx context.Context, report *InsightReport) error

	// LatestInsights retrieves the most recent insight report of a lot.
	LatestInsights(ctx context.Context, lotID string) (*InsightReport, error)
}
