// Package credit scores a driver's reliability from their booking record.
package credit

import (
	"math"

	"github.com/smartpark/smartpark/internal/parking"
)

// Score bounds.
const (
	BaseScore = 600
	MinScore  = 300
	MaxScore  = 850
)

const (
	maxPaymentPoints   = 200
	missedPenalty      = 50
	complaintPenalty   = 30
	reviewPoints       = 5
	maxReviewBonus     = 50
	activeUserBonus    = 30
	activeUserMinTimes = 50
)

// Level is a credit tier.
type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelFair      Level = "fair"
	LevelPoor      Level = "poor"
	LevelBad       Level = "bad"
)

// Benefit is a privilege or restriction attached to a level.
type Benefit string

const (
	BenefitPriorityBooking    Benefit = "priority_booking"
	BenefitNoPrepayment       Benefit = "no_prepayment"
	BenefitMemberDiscount     Benefit = "member_discount_10"
	BenefitExtendedCancel     Benefit = "extended_free_cancellation"
	BenefitStandardBooking    Benefit = "standard_booking"
	BenefitStandardDiscount   Benefit = "standard_discount"
	BenefitStandardCancel     Benefit = "standard_cancellation"
	BenefitDelayedFeatures    Benefit = "delayed_features"
	BenefitStandardRate       Benefit = "standard_rate"
	BenefitPrepaymentRequired Benefit = "prepayment_required"
	BenefitLimitedBookings    Benefit = "limited_bookings"
	BenefitNoDiscount         Benefit = "no_discount"
	BenefitBookingBlocked     Benefit = "booking_blocked"
	BenefitOnSiteOnly         Benefit = "on_site_only"
	BenefitDepositRequired    Benefit = "deposit_required"
)

var benefits = map[Level][]Benefit{
	LevelExcellent: {BenefitPriorityBooking, BenefitNoPrepayment, BenefitMemberDiscount, BenefitExtendedCancel},
	LevelGood:      {BenefitStandardBooking, BenefitStandardDiscount, BenefitStandardCancel},
	LevelFair:      {BenefitStandardBooking, BenefitDelayedFeatures, BenefitStandardRate},
	LevelPoor:      {BenefitPrepaymentRequired, BenefitLimitedBookings, BenefitNoDiscount},
	LevelBad:       {BenefitBookingBlocked, BenefitOnSiteOnly, BenefitDepositRequired},
}

// FactorCode names a score adjustment.
type FactorCode string

const (
	FactorPayments   FactorCode = "payments"
	FactorMissed     FactorCode = "missed_reservations"
	FactorComplaints FactorCode = "complaints"
	FactorReviews    FactorCode = "positive_reviews"
	FactorActive     FactorCode = "active_user"
)

// Factor is one adjustment to the base score.
type Factor struct {
	Code   FactorCode `json:"factor"`
	Points int        `json:"score"`
	Value  float64    `json:"value"`
}

// Stats is a driver's booking record.
type Stats struct {
	TotalPayments      int `json:"totalPayments"`
	OnTimePayments     int `json:"onTimePayments"`
	MissedReservations int `json:"missedReservations"`
	Complaints         int `json:"complaints"`
	PositiveReviews    int `json:"positiveReviews"`
	TotalParkingTimes  int `json:"totalParkingTimes"`
}

// Validate checks that the counters are consistent.
func (s Stats) Validate() error {
	switch {
	case s.TotalPayments < 0 || s.OnTimePayments < 0:
		return parking.Invalid("payments", "counts must not be negative")
	case s.OnTimePayments > s.TotalPayments:
		return parking.Invalid("onTimePayments", "must not exceed totalPayments (%d), got %d", s.TotalPayments, s.OnTimePayments)
	case s.MissedReservations < 0 || s.Complaints < 0 || s.PositiveReviews < 0 || s.TotalParkingTimes < 0:
		return parking.Invalid("stats", "counts must not be negative")
	}
	return nil
}

// Result is a computed credit score.
type Result struct {
	Score    int       `json:"score"`
	Level    Level     `json:"level"`
	Factors  []Factor  `json:"factors"`
	Benefits []Benefit `json:"benefits"`
}

// Compute scores a booking record. The payment factor is always reported;
// the others only when they move the score.
func Compute(s Stats) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	onTime := 1.0
	if s.TotalPayments > 0 {
		onTime = float64(s.OnTimePayments) / float64(s.TotalPayments)
	}
	payment := int(math.Round(onTime * maxPaymentPoints))

	score := BaseScore + payment
	factors := []Factor{{Code: FactorPayments, Points: payment, Value: onTime}}
	adjust := func(code FactorCode, points int, value float64) {
		if points == 0 {
			return
		}
		score += points
		factors = append(factors, Factor{Code: code, Points: points, Value: value})
	}

	adjust(FactorMissed, -missedPenalty*s.MissedReservations, float64(s.MissedReservations))
	adjust(FactorComplaints, -complaintPenalty*s.Complaints, float64(s.Complaints))
	adjust(FactorReviews, min(reviewPoints*s.PositiveReviews, maxReviewBonus), float64(s.PositiveReviews))
	if s.TotalParkingTimes > activeUserMinTimes {
		adjust(FactorActive, activeUserBonus, float64(s.TotalParkingTimes))
	}

	score = max(MinScore, min(MaxScore, score))
	level := LevelFor(score)

	return &Result{
		Score:    score,
		Level:    level,
		Factors:  factors,
		Benefits: Benefits(level),
	}, nil
}

// LevelFor maps a score to its tier.
func LevelFor(score int) Level {
	switch {
	case score >= 750:
		return LevelExcellent
	case score >= 650:
		return LevelGood
	case score >= 550:
		return LevelFair
	case score >= 450:
		return LevelPoor
	default:
		return LevelBad
	}
}

// Benefits returns a copy of the benefit list for a level.
func Benefits(level Level) []Benefit {
	src := benefits[level]
	out := make([]Benefit, len(src))
	copy(out, src)
	return out
}
