package pricing

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/parking"
)

// DefaultBasePrice is used for lots without a configured base price.
const DefaultBasePrice = 5.0

// rescheduleHours are the non-peak hours suggested when moving away from a
// peak, in clock order. Only 22 to 5 carry the night discount; 11 to 14 are
// midday hours.
var rescheduleHours = []int{11, 12, 13, 14, 20, 21, 22, 23, 0, 1, 2, 3, 4, 5}

// Config holds configuration for the pricing engine.
type Config struct {
	// DefaultBasePrice applies when a lot has no base price.
	// Default: 5
	DefaultBasePrice float64

	// Calendar is the holiday table.
	// Default: DefaultCalendar()
	Calendar *Calendar

	// Sampler supplies weather when a request has none.
	// Default: FixedWeather(WeatherNormal)
	Sampler WeatherSampler

	// Logger for engine operations.
	Logger zerolog.Logger
}

// DefaultConfig returns the default pricing configuration.
func DefaultConfig() Config {
	return Config{
		DefaultBasePrice: DefaultBasePrice,
		Calendar:         DefaultCalendar(),
		Sampler:          FixedWeather(WeatherNormal),
		Logger:           zerolog.Nop(),
	}
}

// QuoteRequest is the input of a price quote.
type QuoteRequest struct {
	Lot           parking.Lot
	At            time.Time
	DurationHours float64

	// Weather overrides the engine sampler when set.
	Weather *Weather

	// IgnoreWeather forces the neutral weather factor.
	IgnoreWeather bool

	// IgnoreHolidays disables the holiday surcharge.
	IgnoreHolidays bool
}

// Engine computes dynamic prices. It holds no per-request state.
type Engine struct {
	defaultBasePrice float64
	calendar         *Calendar
	sampler          WeatherSampler
	logger           zerolog.Logger
}

// NewEngine creates a new pricing engine.
func NewEngine(cfg Config) *Engine {
	if cfg.DefaultBasePrice <= 0 {
		cfg.DefaultBasePrice = DefaultBasePrice
	}
	if cfg.Calendar == nil {
		cfg.Calendar = DefaultCalendar()
	}
	if cfg.Sampler == nil {
		cfg.Sampler = FixedWeather(WeatherNormal)
	}

	return &Engine{
		defaultBasePrice: cfg.DefaultBasePrice,
		calendar:         cfg.Calendar,
		sampler:          cfg.Sampler,
		logger:           cfg.Logger,
	}
}

// Quote prices a stay at a lot.
//
// hourlyRate = base × occupancy × time × weekend × holiday × weather
// totalPrice = hourlyRate × duration × durationDiscount
func (e *Engine) Quote(req QuoteRequest) (*Quote, error) {
	if !parking.Positive(req.DurationHours) {
		return nil, parking.Invalid("durationHours", "must be a positive number, got %v", req.DurationHours)
	}
	if req.At.IsZero() {
		return nil, parking.Invalid("at", "target time is required")
	}
	if req.Weather != nil && !req.Weather.Valid() {
		return nil, parking.Invalid("weather", "unknown weather %q", *req.Weather)
	}

	base, err := e.basePrice(req.Lot)
	if err != nil {
		return nil, err
	}
	rate, err := req.Lot.OccupancyRate()
	if err != nil {
		return nil, err
	}

	w := e.resolveWeather(req)
	q := e.compose(req, base, rate, w)
	q.Recommendations = e.savings(req, q)

	e.logger.Debug().
		Str("lot_id", req.Lot.ID).
		Float64("occupancy_rate", rate).
		Str("weather", string(w)).
		Float64("hourly_rate", q.HourlyRate).
		Float64("total_price", q.TotalPrice).
		Int("factors", len(q.Factors)).
		Msg("computed price quote")

	return q, nil
}

// TrendRequest is the input of a daily price trend.
type TrendRequest struct {
	Lot     parking.Lot
	Day     time.Time
	Weather Weather

	// IgnoreHolidays disables the holiday surcharge.
	IgnoreHolidays bool
}

// Trend returns the hourly rate for every hour of the request's date at a
// two-hour duration, holding weather fixed.
func (e *Engine) Trend(req TrendRequest) ([]HourlyPrice, error) {
	day, w := req.Day, req.Weather
	if day.IsZero() {
		return nil, parking.Invalid("date", "date is required")
	}
	if !w.Valid() {
		return nil, parking.Invalid("weather", "unknown weather %q", w)
	}
	base, err := e.basePrice(req.Lot)
	if err != nil {
		return nil, err
	}
	rate, err := req.Lot.OccupancyRate()
	if err != nil {
		return nil, err
	}

	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	trend := make([]HourlyPrice, 0, 24)
	for h := 0; h < 24; h++ {
		q := e.compose(QuoteRequest{
			Lot:            req.Lot,
			At:             midnight.Add(time.Duration(h) * time.Hour),
			DurationHours:  2,
			IgnoreHolidays: req.IgnoreHolidays,
		}, base, rate, w)
		tm, _ := timeMultiplier(h)
		trend = append(trend, HourlyPrice{
			Hour:       h,
			HourlyRate: q.HourlyRate,
			IsPeak:     tm > 1.4,
			IsOffPeak:  tm < 1.0,
		})
	}
	return trend, nil
}

func (e *Engine) basePrice(lot parking.Lot) (float64, error) {
	switch {
	case math.IsNaN(lot.BasePrice) || math.IsInf(lot.BasePrice, 0) || lot.BasePrice < 0:
		return 0, parking.Invalid("basePrice", "must be a non-negative number, got %v", lot.BasePrice)
	case lot.BasePrice == 0:
		return e.defaultBasePrice, nil
	default:
		return lot.BasePrice, nil
	}
}

func (e *Engine) resolveWeather(req QuoteRequest) Weather {
	switch {
	case req.IgnoreWeather:
		return WeatherNormal
	case req.Weather != nil:
		return *req.Weather
	default:
		w := e.sampler.Sample()
		if !w.Valid() {
			return WeatherNormal
		}
		return w
	}
}

// compose applies every factor. Inputs are already validated.
func (e *Engine) compose(req QuoteRequest, base, occupancyRate float64, w Weather) *Quote {
	var factors []Factor
	record := func(name string, m float64, desc string) float64 {
		if m != 1.0 {
			factors = append(factors, Factor{Name: name, Multiplier: m, Description: desc})
		}
		return m
	}

	hour := req.At.Hour()
	om, odesc := occupancyMultiplier(occupancyRate)
	tm, tdesc := timeMultiplier(hour)

	m := Multipliers{
		Occupancy: record(FactorOccupancy, om, odesc),
		Time:      record(FactorTime, tm, tdesc),
		Weekend:   1.0,
		Holiday:   1.0,
		Weather:   1.0,
		Duration:  1.0,
	}

	if isWeekend(req.At) {
		m.Weekend = record(FactorWeekend, 1.3, "weekend surcharge")
	}
	if !req.IgnoreHolidays {
		if name, ok := e.calendar.Holiday(req.At); ok {
			m.Holiday = record(FactorHoliday, 1.5, "public holiday: "+name)
		}
	}
	m.Weather = record(FactorWeather, w.Multiplier(), w.description())

	dm, ddesc := durationDiscount(req.DurationHours)
	m.Duration = record(FactorDuration, dm, ddesc)

	hourly := base * m.Hourly()
	total := hourly * req.DurationHours * m.Duration
	original := base * req.DurationHours

	return &Quote{
		LotID:         req.Lot.ID,
		BasePrice:     base,
		HourlyRate:    hourly,
		TotalPrice:    total,
		OriginalPrice: original,
		Savings:       math.Max(0, original-total),
		DurationHours: req.DurationHours,
		OccupancyRate: occupancyRate,
		Weather:       w,
		Multipliers:   m,
		Factors:       factors,
		At:            req.At,
	}
}

// savings builds at most two suggestions in the fixed order time, location, day.
// The time saving compares against a full quote at the suggested hour on the
// same lot, occupancy and weather.
func (e *Engine) savings(req QuoteRequest, q *Quote) []Saving {
	var out []Saving

	if isPeakHour(req.At.Hour()) {
		suggested := nextRescheduleHour(req.At.Hour())
		at := time.Date(req.At.Year(), req.At.Month(), req.At.Day(), suggested, 0, 0, 0, req.At.Location())
		if suggested < req.At.Hour() {
			at = at.AddDate(0, 0, 1)
		}
		alt := e.compose(QuoteRequest{
			Lot:            req.Lot,
			At:             at,
			DurationHours:  req.DurationHours,
			IgnoreHolidays: req.IgnoreHolidays,
		}, q.BasePrice, q.OccupancyRate, q.Weather)

		out = append(out, Saving{
			Kind:            SavingTime,
			PotentialSaving: math.Max(0, (q.HourlyRate-alt.HourlyRate)*req.DurationHours),
			SuggestedHour:   &suggested,
		})
	}

	if q.OccupancyRate > 0.8 {
		out = append(out, Saving{
			Kind:            SavingLocation,
			PotentialSaving: (q.HourlyRate - q.HourlyRate/q.Multipliers.Occupancy) * req.DurationHours,
		})
	}

	if isWeekend(req.At) {
		out = append(out, Saving{
			Kind:            SavingDay,
			PotentialSaving: (q.HourlyRate - q.HourlyRate/q.Multipliers.Weekend) * req.DurationHours,
		})
	}

	if len(out) > 2 {
		out = out[:2]
	}
	return out
}

func occupancyMultiplier(rate float64) (float64, string) {
	switch {
	case rate < 0.3:
		return 0.7, "low occupancy discount"
	case rate > 0.9:
		return 2.0, "spots nearly full"
	case rate > 0.8:
		return 1.5, "high demand"
	case rate > 0.6:
		return 1.2, "moderate demand"
	default:
		return 1.0, ""
	}
}

func timeMultiplier(hour int) (float64, string) {
	switch {
	case isPeakHour(hour):
		return 1.5, "peak hour"
	case hour >= 22 || hour < 6:
		return 0.7, "night discount"
	case hour >= 10 && hour < 14:
		return 1.2, "midday demand"
	default:
		return 1.0, ""
	}
}

func durationDiscount(hours float64) (float64, string) {
	switch {
	case hours >= 6:
		return 0.9, "all-day discount (6h+)"
	case hours >= 3:
		return 0.95, "long-stay discount (3h+)"
	default:
		return 1.0, ""
	}
}

func isPeakHour(hour int) bool {
	return (hour >= 8 && hour < 10) || (hour >= 17 && hour < 19)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nextRescheduleHour returns the first reschedule hour after hour, wrapping
// past midnight.
func nextRescheduleHour(hour int) int {
	for _, h := range rescheduleHours {
		if h > hour {
			return h
		}
	}
	return rescheduleHours[0]
}
