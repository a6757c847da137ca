package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/parking"
)

func spot(id string, distance, price float64, occupied, total int) allocation.Spot {
	return allocation.Spot{
		ID:                 id,
		Floor:              1,
		Area:               "A",
		Length:             5.2,
		Width:              2.0,
		DistanceToEntrance: distance,
		Price:              price,
		AreaOccupancy:      parking.Occupancy{Occupied: occupied, Total: total},
	}
}

func newEngine() *allocation.Engine {
	return allocation.NewEngine(allocation.DefaultConfig())
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		meters float64
		want   int
	}{
		{0, 30},
		{20, 30},
		{20.5, 25},
		{50, 25},
		{100, 20},
		{150, 15},
		{151, 10},
		{900, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, allocation.DistanceScore(tt.meters), "distance %v", tt.meters)
	}
}

func TestSizeMatchScore_Example(t *testing.T) {
	vehicle := parking.Vehicle{Type: parking.VehicleSedan, Length: 4.5, Width: 1.8}
	s := allocation.Spot{Length: 5.2, Width: 2.0}

	assert.InDelta(t, 0.779, allocation.Utilization(vehicle, s), 0.001)
	assert.Equal(t, 25, allocation.SizeMatchScore(vehicle, s))
}

func TestSizeMatchScore_Bands(t *testing.T) {
	vehicle := parking.Vehicle{Type: parking.VehicleSedan, Length: 4.5, Width: 1.8}

	tests := []struct {
		utilization float64
		want        int
	}{
		{0.30, 5},
		{0.55, 15},
		{0.65, 20},
		{0.75, 25},
		{0.90, 10},
		{1.00, 5},
		{1.20, 5},
	}
	for _, tt := range tests {
		s := allocation.Spot{Length: vehicle.Area() / tt.utilization, Width: 1}
		assert.Equal(t, tt.want, allocation.SizeMatchScore(vehicle, s), "utilization %v", tt.utilization)
	}
}

func TestSizeMatchScore_MonotonicAroundOptimalBand(t *testing.T) {
	vehicle := parking.Vehicle{Type: parking.VehicleSedan, Length: 4.5, Width: 1.8}
	score := func(u float64) int {
		return allocation.SizeMatchScore(vehicle, allocation.Spot{Length: vehicle.Area() / u, Width: 1})
	}

	prev := score(0.2)
	for u := 0.21; u < 0.7; u += 0.01 {
		cur := score(u)
		assert.GreaterOrEqual(t, cur, prev, "score must not drop while approaching the band (u=%v)", u)
		prev = cur
	}

	prev = score(0.86)
	for u := 0.87; u < 1.5; u += 0.01 {
		cur := score(u)
		assert.LessOrEqual(t, cur, prev, "score must not rise while leaving the band (u=%v)", u)
		prev = cur
	}
}

func TestPreferenceScore(t *testing.T) {
	tests := []struct {
		name     string
		priority allocation.Priority
		distance float64
		price    float64
		want     int
	}{
		{"distance near", allocation.PriorityDistance, 30, 9, 20},
		{"distance medium", allocation.PriorityDistance, 80, 9, 17},
		{"distance far", allocation.PriorityDistance, 200, 1, 13},
		{"price cheap", allocation.PriorityPrice, 500, 5, 20},
		{"price moderate", allocation.PriorityPrice, 500, 6, 17},
		{"price expensive", allocation.PriorityPrice, 5, 9, 13},
		{"balanced both good", allocation.PriorityBalanced, 80, 6, 20},
		{"balanced both poor", allocation.PriorityBalanced, 200, 9, 16},
		{"empty priority is balanced", "", 80, 9, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := spot("s", tt.distance, tt.price, 0, 10)
			got := allocation.PreferenceScore(s, allocation.Preferences{Priority: tt.priority})
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, allocation.MaxPreferenceScore)
		})
	}
}

func TestLoadScore(t *testing.T) {
	assert.Equal(t, 15, allocation.LoadScore(0.2))
	assert.Equal(t, 10, allocation.LoadScore(0.3))
	assert.Equal(t, 10, allocation.LoadScore(0.59))
	assert.Equal(t, 5, allocation.LoadScore(0.6))
	assert.Equal(t, 5, allocation.LoadScore(0.79))
	assert.Equal(t, 0, allocation.LoadScore(0.8))
	assert.Equal(t, 0, allocation.LoadScore(1))
}

func TestPriceScore(t *testing.T) {
	normal := allocation.Preferences{Priority: allocation.PriorityBalanced}
	assert.Equal(t, 10, allocation.PriceScore(4, normal))
	assert.Equal(t, 7, allocation.PriceScore(6, normal))
	assert.Equal(t, 4, allocation.PriceScore(8, normal))
	assert.Equal(t, 0, allocation.PriceScore(9, normal))

	price := allocation.Preferences{Priority: allocation.PriorityPrice}
	assert.Equal(t, 20, allocation.PriceScore(4, price))
	assert.Equal(t, 15, allocation.PriceScore(6, price))
	assert.Equal(t, 10, allocation.PriceScore(8, price))
	assert.Equal(t, 5, allocation.PriceScore(9, price))
}

func TestAllocate_EmptyCandidates(t *testing.T) {
	result, err := newEngine().Allocate(parking.NewVehicle(parking.VehicleSedan), allocation.Preferences{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestAllocate_PerfectSpot(t *testing.T) {
	result, err := newEngine().Allocate(
		parking.NewVehicle(parking.VehicleSedan),
		allocation.Preferences{Priority: allocation.PriorityBalanced},
		[]allocation.Spot{spot("A-01", 10, 4, 10, 100)},
	)
	require.NoError(t, err)
	require.Len(t, result, 1)

	best := result[0]
	assert.Equal(t, "A-01", best.SpotID)
	assert.Equal(t, allocation.ScoreDetails{Distance: 30, Size: 25, Preference: 20, Load: 15, Price: 10}, best.Details)
	assert.Equal(t, 100, best.Score)
	assert.Equal(t, 1, best.Rank)
	assert.Equal(t, allocation.LabelGold, best.Label)

	codes := make([]allocation.ReasonCode, 0, len(best.Reasons))
	for _, r := range best.Reasons {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []allocation.ReasonCode{
		allocation.ReasonCloseToEntrance,
		allocation.ReasonSizeFit,
		allocation.ReasonMatchesPreference,
		allocation.ReasonAreaQuiet,
		allocation.ReasonGoodPrice,
	}, codes)
}

func TestAllocate_ScoreClampedWithPricePriority(t *testing.T) {
	result, err := newEngine().Allocate(
		parking.NewVehicle(parking.VehicleSedan),
		allocation.Preferences{Priority: allocation.PriorityPrice},
		[]allocation.Spot{spot("A-01", 10, 4, 10, 100)},
	)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 20, result[0].Details.Price)
	assert.Equal(t, allocation.MaxScore, result[0].Score)
}

func TestAllocate_RanksTopThree(t *testing.T) {
	candidates := []allocation.Spot{
		spot("far", 300, 9, 90, 100),
		spot("near", 10, 4, 10, 100),
		spot("mid", 60, 6, 50, 100),
		spot("okay", 120, 7, 70, 100),
		spot("worst", 500, 12, 95, 100),
	}

	result, err := newEngine().Allocate(parking.NewVehicle(parking.VehicleSedan), allocation.Preferences{}, candidates)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "near", result[0].SpotID)
	assert.Equal(t, "mid", result[1].SpotID)
	assert.Equal(t, "okay", result[2].SpotID)

	for i, r := range result {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, result[i-1].Score)
		}
	}
	assert.Equal(t, allocation.LabelSilver, result[1].Label)
	assert.Equal(t, allocation.LabelBronze, result[2].Label)
}

func TestAllocate_TiesKeepInputOrder(t *testing.T) {
	candidates := []allocation.Spot{
		spot("first", 40, 5, 20, 100),
		spot("second", 40, 5, 20, 100),
		spot("third", 40, 5, 20, 100),
		spot("fourth", 40, 5, 20, 100),
	}

	result, err := newEngine().Allocate(parking.NewVehicle(parking.VehicleSedan), allocation.Preferences{}, candidates)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "first", result[0].SpotID)
	assert.Equal(t, "second", result[1].SpotID)
	assert.Equal(t, "third", result[2].SpotID)
}

func TestAllocate_InvalidInput(t *testing.T) {
	engine := newEngine()
	vehicle := parking.NewVehicle(parking.VehicleSedan)

	_, err := engine.Allocate(vehicle, allocation.Preferences{}, []allocation.Spot{spot("x", 10, 4, 0, 0)})
	assert.ErrorIs(t, err, parking.ErrInvalidInput)

	bad := spot("x", 10, 4, 1, 10)
	bad.Width = 0
	_, err = engine.Allocate(vehicle, allocation.Preferences{}, []allocation.Spot{bad})
	assert.ErrorIs(t, err, parking.ErrInvalidInput)

	_, err = engine.Allocate(parking.Vehicle{Length: -1, Width: 2}, allocation.Preferences{}, []allocation.Spot{spot("x", 10, 4, 1, 10)})
	assert.ErrorIs(t, err, parking.ErrInvalidInput)
}
