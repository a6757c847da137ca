package recommendation

// MaxScore is the ceiling of a lot score.
const MaxScore = 100

// Level is the recommendation strength derived from the score.
type Level string

const (
	LevelStrong   Level = "strong"
	LevelModerate Level = "moderate"
	LevelWeak     Level = "weak"
)

// PriceTrend tells whether the predicted price is above the base price.
type PriceTrend string

const (
	TrendUp   PriceTrend = "up"
	TrendDown PriceTrend = "down"
)

// ReasonCode identifies why a lot scored points.
type ReasonCode string

const (
	ReasonWellBelowBudget     ReasonCode = "price_well_below_budget"
	ReasonWithinBudget        ReasonCode = "price_within_budget"
	ReasonSlightlyAboveBudget ReasonCode = "price_slightly_above_budget"
	ReasonVeryClose           ReasonCode = "very_close"
	ReasonShortWalk           ReasonCode = "short_walk"
	ReasonModerateDistance    ReasonCode = "moderate_distance"
	ReasonFrequentLot         ReasonCode = "frequent_lot"
	ReasonPlentyOfSpots       ReasonCode = "plenty_of_spots"
	ReasonSpotsAvailable      ReasonCode = "spots_available"
	ReasonFewSpotsLeft        ReasonCode = "few_spots_left"
	ReasonExcellentRating     ReasonCode = "excellent_rating"
	ReasonGoodRating          ReasonCode = "good_rating"
	ReasonDiscount            ReasonCode = "discount"
	ReasonEVCharger           ReasonCode = "ev_charger"
)

// Reason explains a score component. Value holds the metric behind it
// (price, meters, free spots or rating) and is zero for flag-like reasons.
type Reason struct {
	Code  ReasonCode `json:"code"`
	Value float64    `json:"value,omitempty"`
}

// Badge is a short summary tag.
type Badge string

const (
	BadgeStronglyRecommended Badge = "strongly_recommended"
	BadgeRecommended         Badge = "recommended"
	BadgeOptional            Badge = "optional"
	BadgePlentyOfSpots       Badge = "plenty_of_spots"
	BadgeFairAvailability    Badge = "fair_availability"
	BadgeTightAvailability   Badge = "tight_availability"
	BadgeNear                Badge = "near"
	BadgeModerateDistance    Badge = "moderate_distance"
)

// LotRecommendation is one ranked lot.
type LotRecommendation struct {
	LotID              string     `json:"lotId"`
	Name               string     `json:"name"`
	Address            string     `json:"address,omitempty"`
	Distance           float64    `json:"distance"`
	PredictedPrice     float64    `json:"predictedPrice"`
	CurrentPrice       float64    `json:"currentPrice"`
	PriceChangePercent float64    `json:"priceChange"`
	PriceTrend         PriceTrend `json:"priceTrend"`
	AvailableSpots     int        `json:"availableSpots"`
	Rating             float64    `json:"rating"`
	Score              int        `json:"score"`
	Level              Level      `json:"recommendLevel"`
	Reasons            []Reason   `json:"reasons"`
	Badges             []Badge    `json:"badges"`
}
