package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/credit"
)

func TestGetCredit(t *testing.T) {
	deps := testDeps(t)
	router := testRouter(deps)

	w := do(t, router, http.MethodGet, "/v1/users/user-1/credit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user, err := deps.Store.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	want, err := credit.Compute(user.Credit)
	require.NoError(t, err)

	resp := decode[models.CreditResponse](t, w)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, want.Score, resp.Score)
	assert.Equal(t, want.Level, resp.Level)
	assert.Equal(t, want.Benefits, resp.Benefits)
	assert.Len(t, resp.BenefitText, len(resp.Benefits))
	assert.NotContains(t, resp.BenefitText, "")
}

func TestGetCredit_UnknownUser(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/users/ghost/credit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
