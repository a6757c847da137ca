package credit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/parking"
)

func TestCompute_NewUser(t *testing.T) {
	res, err := credit.Compute(credit.Stats{})
	require.NoError(t, err)

	assert.Equal(t, 800, res.Score)
	assert.Equal(t, credit.LevelExcellent, res.Level)
	require.Len(t, res.Factors, 1)
	assert.Equal(t, credit.Factor{Code: credit.FactorPayments, Points: 200, Value: 1}, res.Factors[0])
	assert.Contains(t, res.Benefits, credit.BenefitPriorityBooking)
}

func TestCompute_AllFactors(t *testing.T) {
	res, err := credit.Compute(credit.Stats{
		TotalPayments:      20,
		OnTimePayments:     15,
		MissedReservations: 2,
		Complaints:         1,
		PositiveReviews:    3,
		TotalParkingTimes:  60,
	})
	require.NoError(t, err)

	// 600 + 150 - 100 - 30 + 15 + 30
	assert.Equal(t, 665, res.Score)
	assert.Equal(t, credit.LevelGood, res.Level)

	codes := make([]credit.FactorCode, 0, len(res.Factors))
	for _, f := range res.Factors {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []credit.FactorCode{
		credit.FactorPayments,
		credit.FactorMissed,
		credit.FactorComplaints,
		credit.FactorReviews,
		credit.FactorActive,
	}, codes)
	assert.Equal(t, -100, res.Factors[1].Points)
}

func TestCompute_ReviewBonusIsCapped(t *testing.T) {
	res, err := credit.Compute(credit.Stats{TotalPayments: 10, OnTimePayments: 5, PositiveReviews: 40})
	require.NoError(t, err)
	assert.Equal(t, 600+100+50, res.Score)
}

func TestCompute_Clamped(t *testing.T) {
	res, err := credit.Compute(credit.Stats{PositiveReviews: 20, TotalParkingTimes: 100})
	require.NoError(t, err)
	assert.Equal(t, credit.MaxScore, res.Score)

	res, err = credit.Compute(credit.Stats{TotalPayments: 10, MissedReservations: 10})
	require.NoError(t, err)
	assert.Equal(t, credit.MinScore, res.Score)
	assert.Equal(t, credit.LevelBad, res.Level)
	assert.Equal(t, []credit.Benefit{credit.BenefitBookingBlocked, credit.BenefitOnSiteOnly, credit.BenefitDepositRequired}, res.Benefits)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  credit.Level
	}{
		{850, credit.LevelExcellent},
		{750, credit.LevelExcellent},
		{749, credit.LevelGood},
		{650, credit.LevelGood},
		{550, credit.LevelFair},
		{450, credit.LevelPoor},
		{449, credit.LevelBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, credit.LevelFor(tt.score), "score %d", tt.score)
	}
}

func TestBenefitsReturnsCopy(t *testing.T) {
	b := credit.Benefits(credit.LevelGood)
	b[0] = "changed"
	assert.Equal(t, credit.BenefitStandardBooking, credit.Benefits(credit.LevelGood)[0])
}

func TestCompute_InvalidInput(t *testing.T) {
	for _, s := range []credit.Stats{
		{TotalPayments: -1},
		{TotalPayments: 3, OnTimePayments: 4},
		{Complaints: -2},
	} {
		_, err := credit.Compute(s)
		assert.ErrorIs(t, err, parking.ErrInvalidInput)
	}
}
