package recommendation

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/geo"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/pricing"
)

// DefaultSearchRadius is the radius used to pre-filter candidate lots.
const DefaultSearchRadius = 3000.0

// predictionHours is the stay length used when predicting a lot's hourly rate.
const predictionHours = 2

// PricePredictor estimates a lot's hourly rate at a time.
type PricePredictor interface {
	PredictHourly(lot parking.Lot, at time.Time) (float64, error)
}

// PredictorFunc adapts a function to PricePredictor.
type PredictorFunc func(lot parking.Lot, at time.Time) (float64, error)

// PredictHourly implements PricePredictor.
func (f PredictorFunc) PredictHourly(lot parking.Lot, at time.Time) (float64, error) {
	return f(lot, at)
}

// PricingPredictor predicts with a two-hour quote from the pricing engine.
// A nil weather lets the engine's sampler decide.
func PricingPredictor(engine *pricing.Engine, weather *pricing.Weather) PricePredictor {
	return PredictorFunc(func(lot parking.Lot, at time.Time) (float64, error) {
		q, err := engine.Quote(pricing.QuoteRequest{
			Lot:           lot,
			At:            at,
			DurationHours: predictionHours,
			Weather:       weather,
		})
		if err != nil {
			return 0, err
		}
		return q.HourlyRate, nil
	})
}

// User is the person asking for a recommendation.
type User struct {
	ID             string                  `json:"id"`
	History        []parking.HistoryRecord `json:"history,omitempty"`
	NeedsEVCharger bool                    `json:"needsEvCharger,omitempty"`
}

// Config holds configuration for the recommendation engine.
type Config struct {
	// Predictor supplies predicted hourly prices (required).
	Predictor PricePredictor

	// MaxResults caps the ranked list.
	// Default: 5
	MaxResults int

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine ranks parking lots.
type Engine struct {
	predictor  PricePredictor
	maxResults int
	logger     zerolog.Logger
}

// NewEngine creates a new recommendation engine.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Predictor == nil {
		cfg.Predictor = PricingPredictor(pricing.NewEngine(pricing.DefaultConfig()), nil)
	}

	return &Engine{
		predictor:  cfg.Predictor,
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
	}
}

// Recommend scores each candidate lot for the user and returns the best
// ones, highest score first. Ties keep the candidate order.
func (e *Engine) Recommend(user User, destination parking.Coordinates, at time.Time, lots []parking.Lot) ([]LotRecommendation, error) {
	if err := destination.Validate(); err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return []LotRecommendation{}, nil
	}

	profile := BuildProfile(user.History)

	recs := make([]LotRecommendation, 0, len(lots))
	for _, lot := range lots {
		if err := lot.Location.Validate(); err != nil {
			return nil, err
		}
		predicted, err := e.predictor.PredictHourly(lot, at)
		if err != nil {
			return nil, err
		}
		recs = append(recs, score(profile, user, destination, lot, predicted))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > e.maxResults {
		recs = recs[:e.maxResults]
	}

	e.logger.Debug().
		Str("user_id", user.ID).
		Int("candidates", len(lots)).
		Int("history", profile.TotalParkingTimes).
		Str("best_lot", recs[0].LotID).
		Int("best_score", recs[0].Score).
		Msg("recommended parking lots")

	return recs, nil
}

// Nearby keeps the lots within radius meters of destination, in input order.
func Nearby(destination parking.Coordinates, lots []parking.Lot, radius float64) []parking.Lot {
	out := make([]parking.Lot, 0, len(lots))
	for _, lot := range lots {
		if geo.Haversine(destination, lot.Location) <= radius {
			out = append(out, lot)
		}
	}
	return out
}

func score(profile Profile, user User, destination parking.Coordinates, lot parking.Lot, predicted float64) LotRecommendation {
	var (
		total   int
		reasons []Reason
	)
	add := func(points int, code ReasonCode, value float64) {
		total += points
		if code != "" {
			reasons = append(reasons, Reason{Code: code, Value: value})
		}
	}

	budget := profile.AvgSpending
	switch {
	case predicted <= budget*0.8:
		add(30, ReasonWellBelowBudget, predicted)
	case predicted <= budget:
		add(25, ReasonWithinBudget, predicted)
	case predicted <= budget*1.2:
		add(15, ReasonSlightlyAboveBudget, predicted)
	}

	distance := geo.Haversine(destination, lot.Location)
	switch {
	case distance <= 100:
		add(25, ReasonVeryClose, distance)
	case distance <= 300:
		add(20, ReasonShortWalk, distance)
	case distance <= 500:
		add(15, ReasonModerateDistance, distance)
	default:
		add(5, "", 0)
	}

	if profile.IsFrequent(lot.ID) {
		add(20, ReasonFrequentLot, 0)
	}

	available := lot.AvailableSpots()
	switch {
	case available > 20:
		add(15, ReasonPlentyOfSpots, float64(available))
	case available > 10:
		add(10, ReasonSpotsAvailable, float64(available))
	case available > 5:
		add(5, ReasonFewSpotsLeft, float64(available))
	}

	switch {
	case lot.Rating >= 4.5:
		add(10, ReasonExcellentRating, lot.Rating)
	case lot.Rating >= 4.0:
		add(7, ReasonGoodRating, lot.Rating)
	case lot.Rating >= 3.5:
		add(5, "", 0)
	}

	if lot.HasDiscount {
		add(5, ReasonDiscount, 0)
	}
	if lot.HasEVCharger && user.NeedsEVCharger {
		add(5, ReasonEVCharger, 0)
	}

	total = min(total, MaxScore)
	level := levelForScore(total)

	base := lot.BasePrice
	if base <= 0 {
		base = pricing.DefaultBasePrice
	}
	trend := TrendDown
	if predicted > base {
		trend = TrendUp
	}

	return LotRecommendation{
		LotID:              lot.ID,
		Name:               lot.Name,
		Address:            lot.Address,
		Distance:           distance,
		PredictedPrice:     predicted,
		CurrentPrice:       base,
		PriceChangePercent: (predicted - base) / base * 100,
		PriceTrend:         trend,
		AvailableSpots:     available,
		Rating:             lot.Rating,
		Score:              total,
		Level:              level,
		Reasons:            reasons,
		Badges:             badges(level, available, distance),
	}
}

func levelForScore(score int) Level {
	switch {
	case score >= 80:
		return LevelStrong
	case score >= 65:
		return LevelModerate
	default:
		return LevelWeak
	}
}

func badges(level Level, available int, distance float64) []Badge {
	out := make([]Badge, 0, 3)

	switch level {
	case LevelStrong:
		out = append(out, BadgeStronglyRecommended)
	case LevelModerate:
		out = append(out, BadgeRecommended)
	default:
		out = append(out, BadgeOptional)
	}

	switch {
	case available > 20:
		out = append(out, BadgePlentyOfSpots)
	case available > 10:
		out = append(out, BadgeFairAvailability)
	default:
		out = append(out, BadgeTightAvailability)
	}

	if distance <= 300 {
		out = append(out, BadgeNear)
	} else {
		out = append(out, BadgeModerateDistance)
	}
	return out
}
