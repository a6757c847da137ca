package allocation

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/parking"
)

// Config holds configuration for the allocation engine.
type Config struct {
	// MaxResults caps the ranked list.
	// Default: 3
	MaxResults int

	// Logger for engine operations.
	Logger zerolog.Logger
}

// DefaultConfig returns the default allocation configuration.
func DefaultConfig() Config {
	return Config{
		MaxResults: 3,
		Logger:     zerolog.Nop(),
	}
}

// Engine scores and ranks candidate spots.
type Engine struct {
	maxResults int
	logger     zerolog.Logger
}

// NewEngine creates a new allocation engine.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}

	return &Engine{
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
	}
}

// Allocate scores every candidate for the vehicle and returns the best ones,
// highest score first. Ties keep the candidate order.
//
// Candidates are assumed to be unoccupied; filtering is the caller's job.
// An empty candidate list yields an empty result.
func (e *Engine) Allocate(vehicle parking.Vehicle, prefs Preferences, candidates []Spot) ([]ScoredSpot, error) {
	if len(candidates) == 0 {
		return []ScoredSpot{}, nil
	}
	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	scored := make([]ScoredSpot, 0, len(candidates))
	for _, spot := range candidates {
		s, err := ScoreSpot(vehicle, prefs, spot)
		if err != nil {
			return nil, err
		}
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > e.maxResults {
		scored = scored[:e.maxResults]
	}
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].Label = labelForRank(i + 1)
	}

	e.logger.Debug().
		Int("candidates", len(candidates)).
		Str("best_spot", scored[0].SpotID).
		Int("best_score", scored[0].Score).
		Msg("allocated parking spot")

	return scored, nil
}

// ScoreSpot computes the unranked score of one spot.
func ScoreSpot(vehicle parking.Vehicle, prefs Preferences, spot Spot) (ScoredSpot, error) {
	if err := spot.Validate(); err != nil {
		return ScoredSpot{}, err
	}

	areaRate, _ := spot.AreaOccupancy.Rate()
	utilization := Utilization(vehicle, spot)

	details := ScoreDetails{
		Distance:   DistanceScore(spot.DistanceToEntrance),
		Size:       sizeScoreForUtilization(utilization),
		Preference: PreferenceScore(spot, prefs),
		Load:       LoadScore(areaRate),
		Price:      PriceScore(spot.Price, prefs),
	}

	var reasons []Reason
	if details.Distance > distanceReasonThreshold {
		reasons = append(reasons, Reason{Code: ReasonCloseToEntrance, Value: spot.DistanceToEntrance})
	}
	if details.Size > sizeReasonThreshold {
		reasons = append(reasons, Reason{Code: ReasonSizeFit, Value: utilization})
	}
	if details.Preference > preferenceReasonThreshold {
		reasons = append(reasons, Reason{Code: ReasonMatchesPreference, Value: float64(details.Preference)})
	}
	if details.Load > loadReasonThreshold {
		reasons = append(reasons, Reason{Code: ReasonAreaQuiet, Value: areaRate})
	}
	if details.Price > priceReasonThreshold {
		reasons = append(reasons, Reason{Code: ReasonGoodPrice, Value: spot.Price})
	}

	return ScoredSpot{
		SpotID:  spot.ID,
		Spot:    spot,
		Score:   details.Total(),
		Details: details,
		Reasons: reasons,
	}, nil
}
