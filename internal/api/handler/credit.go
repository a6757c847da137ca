package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/api/response"
	"github.com/smartpark/smartpark/internal/credit"
)

// CreditHandler handles driver credit scores.
type CreditHandler struct {
	deps Dependencies
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(deps Dependencies) *CreditHandler {
	return &CreditHandler{deps: deps.withDefaults()}
}

// GetCredit handles GET /v1/users/{userId}/credit.
func (h *CreditHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	user, err := h.deps.Store.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	result, err := credit.Compute(user.Credit)
	if err != nil {
		response.FromError(w, r, h.deps.Logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CreditResponse{
		UserID:      user.ID,
		Result:      result,
		BenefitText: benefitTexts(result.Benefits),
	})
}
