package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
)

// InMemoryRepository is an in-memory implementation of Repository.
// It backs the demo deployment and tests. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	lots      map[string]parking.Lot
	spots     map[string][]allocation.Spot
	users     map[string]*User
	snapshots map[string]*insights.Snapshot
	vehicles  map[string]navigation.ParkedVehicle
	reports   map[string][]*InsightReport
}

// NewInMemoryRepository creates a new, empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		lots:      make(map[string]parking.Lot),
		spots:     make(map[string][]allocation.Spot),
		users:     make(map[string]*User),
		snapshots: make(map[string]*insights.Snapshot),
		vehicles:  make(map[string]navigation.ParkedVehicle),
		reports:   make(map[string][]*InsightReport),
	}
}

// PutLot inserts or replaces a lot.
func (r *InMemoryRepository) PutLot(lot parking.Lot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots[lot.ID] = lot
}

// PutSpots replaces the spots of a lot.
func (r *InMemoryRepository) PutSpots(lotID string, spots []allocation.Spot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spots[lotID] = slices.Clone(spots)
}

// PutUser inserts or replaces a user.
func (r *InMemoryRepository) PutUser(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = copyUser(u)
}

// PutSnapshot replaces the snapshot of a lot.
func (r *InMemoryRepository) PutSnapshot(s *insights.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[s.LotID] = copySnapshot(s)
}

// PutVehicle records a parked vehicle.
func (r *InMemoryRepository) PutVehicle(v navigation.ParkedVehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.Plate] = v
}

// GetLot retrieves a lot by ID.
func (r *InMemoryRepository) GetLot(_ context.Context, id string) (*parking.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lot, ok := r.lots[id]
	if !ok {
		return nil, ErrLotNotFound
	}
	return &lot, nil
}

// ListLots retrieves every lot ordered by ID.
func (r *InMemoryRepository) ListLots(_ context.Context) ([]parking.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lots := make([]parking.Lot, 0, len(r.lots))
	for _, lot := range r.lots {
		lots = append(lots, lot)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

// ListSpots retrieves the spots of a lot.
func (r *InMemoryRepository) ListSpots(_ context.Context, lotID string) ([]allocation.Spot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.lots[lotID]; !ok {
		return nil, ErrLotNotFound
	}
	return slices.Clone(r.spots[lotID]), nil
}

// GetUser retrieves a user by ID.
func (r *InMemoryRepository) GetUser(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetSnapshot retrieves the snapshot of a lot.
func (r *InMemoryRepository) GetSnapshot(_ context.Context, lotID string) (*insights.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.lots[lotID]; !ok {
		return nil, ErrLotNotFound
	}
	s, ok := r.snapshots[lotID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return copySnapshot(s), nil
}

// FindVehicle retrieves a parked vehicle by plate.
func (r *InMemoryRepository) FindVehicle(_ context.Context, plate string) (*navigation.ParkedVehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[plate]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	return &v, nil
}

// SaveInsights stores an insight report.
func (r *InMemoryRepository) SaveInsights(_ context.Context, report *InsightReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lots[report.LotID]; !ok {
		return ErrLotNotFound
	}
	cpy := *report
	cpy.Insights = slices.Clone(report.Insights)
	r.reports[report.LotID] = append(r.reports[report.LotID], &cpy)
	return nil
}

// LatestInsights retrieves the most recently generated report of a lot.
func (r *InMemoryRepository) LatestInsights(_ context.Context, lotID string) (*InsightReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *InsightReport
	for _, rep := range r.reports[lotID] {
		if latest == nil || !rep.GeneratedAt.Before(latest.GeneratedAt) {
			latest = rep
		}
	}
	if latest == nil {
		return nil, ErrReportNotFound
	}
	cpy := *latest
	cpy.Insights = slices.Clone(latest.Insights)
	return &cpy, nil
}

func copyUser(u *User) *User {
	cpy := *u
	cpy.History = slices.Clone(u.History)
	return &cpy
}

func copySnapshot(s *insights.Snapshot) *insights.Snapshot {
	cpy := *s
	cpy.Areas = slices.Clone(s.Areas)
	cpy.History = slices.Clone(s.History)
	cpy.Devices = slices.Clone(s.Devices)
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
