package recommendation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/recommendation"
)

func TestBuildProfile_Empty(t *testing.T) {
	p := recommendation.BuildProfile(nil)

	assert.Equal(t, recommendation.DefaultAvgSpending, p.AvgSpending)
	assert.Equal(t, recommendation.DefaultPreferredDistance, p.PreferredDistance)
	assert.Equal(t, recommendation.DefaultAvgDuration, p.AvgDuration)
	assert.Equal(t, parking.VehicleSedan, p.PreferredVehicleType)
	assert.Empty(t, p.FrequentLots)
	assert.Zero(t, p.TotalParkingTimes)
}

func TestBuildProfile_Averages(t *testing.T) {
	history := []parking.HistoryRecord{
		{LotID: "A", Fee: 10, Distance: 100, Duration: 1, VehicleType: parking.VehicleSUV},
		{LotID: "B", Fee: 20, Distance: 0, Duration: 0, VehicleType: parking.VehicleSUV},
		{LotID: "A", Fee: 30, Distance: 200, Duration: 3, VehicleType: parking.VehicleSedan},
	}

	p := recommendation.BuildProfile(history)

	assert.InDelta(t, 20.0, p.AvgSpending, 1e-9)
	assert.InDelta(t, 800.0/3, p.PreferredDistance, 1e-9)
	assert.InDelta(t, 2.0, p.AvgDuration, 1e-9)
	assert.Equal(t, parking.VehicleSUV, p.PreferredVehicleType)
	assert.Equal(t, []string{"A", "B"}, p.FrequentLots)
	assert.Equal(t, 3, p.TotalParkingTimes)
}

func TestBuildProfile_FrequentLotsKeepFirstSeenOnTies(t *testing.T) {
	history := []parking.HistoryRecord{
		{LotID: "D", Fee: 5},
		{LotID: "C", Fee: 5},
		{LotID: "B", Fee: 5},
		{LotID: "A", Fee: 5},
		{LotID: "A", Fee: 5},
	}

	p := recommendation.BuildProfile(history)

	assert.Equal(t, []string{"A", "D", "C"}, p.FrequentLots)
	assert.True(t, p.IsFrequent("C"))
	assert.False(t, p.IsFrequent("B"))
}
