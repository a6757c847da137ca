package simulate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/recommendation"
	"github.com/smartpark/smartpark/internal/simulate"
	"github.com/smartpark/smartpark/internal/store"
)

var now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func TestGenerator_Deterministic(t *testing.T) {
	a := simulate.NewSeeded(42, now)
	b := simulate.NewSeeded(42, now)

	lotsA, lotsB := a.Lots(), b.Lots()
	assert.Equal(t, lotsA, lotsB)

	grid := navigation.DefaultGrid()
	assert.Equal(t, a.Spots(lotsA[0], grid), b.Spots(lotsB[0], grid))

	c := simulate.NewSeeded(7, now)
	assert.NotEqual(t, lotsA, c.Lots())
}

func TestGenerator_Lots(t *testing.T) {
	lots := simulate.NewSeeded(42, now).Lots()
	require.Len(t, lots, 7)

	for _, lot := range lots {
		rate, err := lot.OccupancyRate()
		require.NoError(t, err)
		assert.Greater(t, rate, 0.0)
		assert.NoError(t, lot.Location.Validate())
		assert.GreaterOrEqual(t, lot.Rating, 3.5)
		assert.LessOrEqual(t, lot.Rating, 5.0)
	}
	assert.Equal(t, "lot-1", lots[0].ID)
	assert.Equal(t, 375, lots[0].OccupiedSpots)
}

func TestGenerator_SpotsAreConsistent(t *testing.T) {
	g := simulate.NewSeeded(42, now)
	grid := navigation.DefaultGrid()
	lot := g.Lots()[0]

	spots := g.Spots(lot, grid)
	require.Len(t, spots, 3*4*10)

	occupied := map[string]int{}
	for _, s := range spots {
		require.NoError(t, s.Validate())
		if s.Occupied {
			occupied[s.Area+string(rune('0'+s.Floor))]++
		}
	}
	for _, s := range spots {
		assert.Equal(t, 10, s.AreaOccupancy.Total)
		assert.Equal(t, occupied[s.Area+string(rune('0'+s.Floor))], s.AreaOccupancy.Occupied)
	}

	_, err := allocation.NewEngine(allocation.DefaultConfig()).Allocate(
		parking.NewVehicle(parking.VehicleSedan), allocation.Preferences{}, spots)
	assert.NoError(t, err)
}

func TestGenerator_SnapshotIsValid(t *testing.T) {
	g := simulate.NewSeeded(42, now)
	lot := g.Lots()[0]
	spots := g.Spots(lot, navigation.DefaultGrid())

	s := g.Snapshot(lot, spots)
	require.NoError(t, s.Validate())
	assert.Len(t, s.Areas, 12)
	assert.Len(t, s.History, 30)
	assert.Len(t, s.Devices, 4)
	assert.Equal(t, now, s.At)

	out, err := insights.NewGenerator(insights.DefaultConfig()).Generate(*s)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerator_UsersHaveUsableRecords(t *testing.T) {
	g := simulate.NewSeeded(42, now)
	lots := g.Lots()

	for _, u := range g.Users(lots) {
		assert.NotEmpty(t, u.History)
		_, err := credit.Compute(u.Credit)
		assert.NoError(t, err, u.ID)

		p := recommendation.BuildProfile(u.History)
		assert.NotEmpty(t, p.FrequentLots)
		assert.Equal(t, u.VehicleType, p.PreferredVehicleType)
	}
}

func TestGenerator_ParkedVehiclesAreRoutable(t *testing.T) {
	g := simulate.NewSeeded(42, now)
	grid := navigation.DefaultGrid()
	lot := g.Lots()[0]
	spots := g.Spots(lot, grid)

	vehicles := g.ParkedVehicles(lot, spots, grid, 2)
	require.NotEmpty(t, vehicles)
	for _, v := range vehicles {
		loc, err := navigation.LocateVehicle(v, navigation.DefaultEntrance, now, grid, navigation.DefaultOptions())
		require.NoError(t, err)
		assert.False(t, loc.Route.Failed)
		assert.GreaterOrEqual(t, loc.CurrentFee, 0.0)
	}
}

func TestGenerator_Seed(t *testing.T) {
	ctx := context.Background()
	repo := store.NewInMemoryRepository()

	lots := simulate.NewSeeded(42, now).Seed(repo, navigation.DefaultGrid())

	stored, err := repo.ListLots(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(lots))

	_, err = repo.GetSnapshot(ctx, lots[0].ID)
	assert.NoError(t, err)
	_, err = repo.GetUser(ctx, "user-1")
	assert.NoError(t, err)
	spots, err := repo.ListSpots(ctx, lots[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, spots)
}
