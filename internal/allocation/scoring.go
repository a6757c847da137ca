package allocation

import (
	"github.com/smartpark/smartpark/internal/parking"
)

// Score maxima.
const (
	MaxScore           = 100
	MaxDistanceScore   = 30
	MaxSizeScore       = 25
	MaxPreferenceScore = 20
	MaxLoadScore       = 15
	MaxPriceScore      = 10
)

// Reason thresholds: a factor must exceed these to be explained.
const (
	distanceReasonThreshold   = 20
	sizeReasonThreshold       = 20
	preferenceReasonThreshold = 15
	loadReasonThreshold       = 10
	priceReasonThreshold      = 7
)

// DistanceScore maps the walking distance to the entrance onto [10,30].
func DistanceScore(meters float64) int {
	switch {
	case meters <= 20:
		return 30
	case meters <= 50:
		return 25
	case meters <= 100:
		return 20
	case meters <= 150:
		return 15
	default:
		return 10
	}
}

// Utilization returns vehicle area over spot area.
func Utilization(v parking.Vehicle, s Spot) float64 {
	return v.Area() / s.Footprint()
}

// SizeMatchScore rewards a vehicle filling 70-85% of the spot and penalizes
// both oversized and cramped spots. Range [5,25].
func SizeMatchScore(v parking.Vehicle, s Spot) int {
	return sizeScoreForUtilization(Utilization(v, s))
}

func sizeScoreForUtilization(u float64) int {
	switch {
	case u >= 0.7 && u <= 0.85:
		return 25
	case u >= 0.6 && u < 0.7:
		return 20
	case u >= 0.5 && u < 0.6:
		return 15
	case u > 0.85 && u <= 0.95:
		return 10
	default:
		return 5
	}
}

// PreferenceScore is a base of 10 plus a bonus driven by the preference priority. Range [0,20].
func PreferenceScore(s Spot, prefs Preferences) int {
	score := 10

	switch prefs.priority() {
	case PriorityDistance:
		switch {
		case s.DistanceToEntrance <= 50:
			score += 10
		case s.DistanceToEntrance <= 100:
			score += 7
		default:
			score += 3
		}
	case PriorityPrice:
		switch {
		case s.Price <= 5:
			score += 10
		case s.Price <= 7:
			score += 7
		default:
			score += 3
		}
	default:
		if s.DistanceToEntrance <= 100 {
			score += 5
		} else {
			score += 3
		}
		if s.Price <= 7 {
			score += 5
		} else {
			score += 3
		}
	}

	return min(score, MaxPreferenceScore)
}

// LoadScore favours quiet areas. Range [0,15].
func LoadScore(areaRate float64) int {
	switch {
	case areaRate < 0.3:
		return 15
	case areaRate < 0.6:
		return 10
	case areaRate < 0.8:
		return 5
	default:
		return 0
	}
}

// PriceScore favours cheap spots. Range [0,10], or [5,20] when the driver
// prioritizes price.
func PriceScore(price float64, prefs Preferences) int {
	if prefs.priority() == PriorityPrice {
		switch {
		case price <= 4:
			return 20
		case price <= 6:
			return 15
		case price <= 8:
			return 10
		default:
			return 5
		}
	}

	switch {
	case price <= 4:
		return 10
	case price <= 6:
		return 7
	case price <= 8:
		return 4
	default:
		return 0
	}
}
