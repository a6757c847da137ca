package parking_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/parking"
)

func TestOccupancy_Rate(t *testing.T) {
	rate, err := parking.Occupancy{Occupied: 184, Total: 200}.Rate()
	require.NoError(t, err)
	assert.InDelta(t, 0.92, rate, 1e-9)

	_, err = parking.Occupancy{Occupied: 0, Total: 0}.Rate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, parking.ErrInvalidInput))

	_, err = parking.Occupancy{Occupied: 12, Total: 10}.Rate()
	assert.ErrorIs(t, err, parking.ErrInvalidInput)

	_, err = parking.Occupancy{Occupied: -1, Total: 10}.Rate()
	assert.ErrorIs(t, err, parking.ErrInvalidInput)
}

func TestInputError_Field(t *testing.T) {
	err := parking.Invalid("durationHours", "must be positive")

	var inputErr *parking.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "durationHours", inputErr.Field)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestVehicle_Validate(t *testing.T) {
	assert.NoError(t, parking.NewVehicle(parking.VehicleSUV).Validate())

	tests := []parking.Vehicle{
		{Type: parking.VehicleSedan, Length: 0, Width: 1.8},
		{Type: parking.VehicleSedan, Length: 4.5, Width: -1},
		{Type: parking.VehicleSedan, Length: math.NaN(), Width: 1.8},
		{Type: parking.VehicleSedan, Length: 4.5, Width: math.Inf(1)},
	}
	for _, v := range tests {
		assert.ErrorIs(t, v.Validate(), parking.ErrInvalidInput)
	}
}

func TestDefaultDimensions(t *testing.T) {
	l, w := parking.DefaultDimensions(parking.VehicleMPV)
	assert.Equal(t, 5.2, l)
	assert.Equal(t, 2.2, w)

	l, w = parking.DefaultDimensions("tractor")
	assert.Equal(t, 4.5, l)
	assert.Equal(t, 1.8, w)
}

func TestCoordinates_Validate(t *testing.T) {
	assert.NoError(t, parking.Coordinates{Lat: 39.9042, Lng: 116.4074}.Validate())
	assert.ErrorIs(t, parking.Coordinates{Lat: 91, Lng: 0}.Validate(), parking.ErrInvalidInput)
	assert.ErrorIs(t, parking.Coordinates{Lat: 0, Lng: -181}.Validate(), parking.ErrInvalidInput)
}
