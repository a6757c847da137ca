// Package geo provides the distance functions used by the scoring engines.
package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/smartpark/smartpark/internal/parking"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between two coordinates in meters.
func Haversine(a, b parking.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Euclidean returns the straight-line distance between two planar points.
func Euclidean(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Manhattan returns the L1 distance between two planar points.
func Manhattan(x1, y1, x2, y2 float64) float64 {
	return math.Abs(x2-x1) + math.Abs(y2-y1)
}
