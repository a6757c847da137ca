// Package allocation ranks candidate parking spots for a single vehicle.
package allocation

import (
	"github.com/smartpark/smartpark/internal/parking"
)

// Priority is what the driver cares about most.
type Priority string

const (
	PriorityDistance Priority = "distance"
	PriorityPrice    Priority = "price"
	PriorityBalanced Priority = "balanced"
)

// Preferences are the driver's allocation preferences.
// FavoriteFloors and FavoriteAreas are carried for callers; they do not affect scoring.
type Preferences struct {
	Priority       Priority `json:"priority"`
	FavoriteFloors []int    `json:"favoriteFloors,omitempty"`
	FavoriteAreas  []string `json:"favoriteAreas,omitempty"`
}

func (p Preferences) priority() Priority {
	switch p.Priority {
	case PriorityDistance, PriorityPrice:
		return p.Priority
	default:
		return PriorityBalanced
	}
}

// Spot is a candidate parking spot. Candidates are generated per request.
type Spot struct {
	ID                 string            `json:"id"`
	Floor              int               `json:"floor"`
	Area               string            `json:"area"`
	Location           string            `json:"location,omitempty"`
	Length             float64           `json:"length"`
	Width              float64           `json:"width"`
	DistanceToEntrance float64           `json:"distanceToEntrance"`
	Price              float64           `json:"price"`
	Occupied           bool              `json:"occupied"`
	AreaOccupancy      parking.Occupancy `json:"areaOccupancy"`
}

// Footprint returns the spot surface in square meters.
func (s Spot) Footprint() float64 {
	return s.Length * s.Width
}

// Validate checks the spot fields used by the scorers.
func (s Spot) Validate() error {
	if !parking.Positive(s.Length) {
		return parking.Invalid("spot.length", "spot %q: must be a positive number", s.ID)
	}
	if !parking.Positive(s.Width) {
		return parking.Invalid("spot.width", "spot %q: must be a positive number", s.ID)
	}
	if s.DistanceToEntrance < 0 {
		return parking.Invalid("spot.distanceToEntrance", "spot %q: must not be negative", s.ID)
	}
	if s.Price < 0 {
		return parking.Invalid("spot.price", "spot %q: must not be negative", s.ID)
	}
	if _, err := s.AreaOccupancy.Rate(); err != nil {
		return err
	}
	return nil
}

// ScoreDetails is the per-factor breakdown of a spot score.
type ScoreDetails struct {
	Distance   int `json:"distance"`
	Size       int `json:"size"`
	Preference int `json:"preference"`
	Load       int `json:"load"`
	Price      int `json:"price"`
}

// Total returns the sum of the factors clamped to MaxScore.
func (d ScoreDetails) Total() int {
	total := d.Distance + d.Size + d.Preference + d.Load + d.Price
	if total > MaxScore {
		return MaxScore
	}
	return total
}

// ReasonCode identifies why a spot was recommended.
type ReasonCode string

const (
	ReasonCloseToEntrance   ReasonCode = "close_to_entrance"
	ReasonSizeFit           ReasonCode = "size_fit"
	ReasonMatchesPreference ReasonCode = "matches_preference"
	ReasonAreaQuiet         ReasonCode = "area_quiet"
	ReasonGoodPrice         ReasonCode = "good_price"
)

// Reason is a structured explanation. Value carries the metric behind it:
// meters, utilization ratio, preference points, area occupancy rate or price.
type Reason struct {
	Code  ReasonCode `json:"code"`
	Value float64    `json:"value"`
}

// Label is the medal attached to a ranked spot.
type Label string

const (
	LabelGold   Label = "gold"
	LabelSilver Label = "silver"
	LabelBronze Label = "bronze"
)

// ScoredSpot is a ranked allocation result.
type ScoredSpot struct {
	SpotID  string       `json:"spotId"`
	Spot    Spot         `json:"spot"`
	Score   int          `json:"score"`
	Details ScoreDetails `json:"scoreDetails"`
	Reasons []Reason     `json:"reasons"`
	Rank    int          `json:"rank"`
	Label   Label        `json:"label"`
}

func labelForRank(rank int) Label {
	switch rank {
	case 1:
		return LabelGold
	case 2:
		return LabelSilver
	default:
		return LabelBronze
	}
}
