// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/api/middleware"
	"github.com/smartpark/smartpark/internal/api/models"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/provider/resilience"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/weather"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, fieldErrors []models.FieldError) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewBadRequest(traceID, detail, fieldErrors))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewNotFound(traceID, detail))
}

// RateLimitInfo contains rate limit information for 429 responses.
type RateLimitInfo struct {
	// Limit is the maximum number of requests allowed in the window.
	Limit int
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is the Unix timestamp when the rate limit window resets.
	ResetAt int64
	// RetryAfter is the number of seconds until the client should retry.
	RetryAfter int
}

// TooManyRequests writes a 429 Too Many Requests error response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, detail string) {
	TooManyRequestsWithInfo(w, r, detail, nil)
}

// TooManyRequestsWithInfo writes a 429 Too Many Requests error response with rate limit headers.
func TooManyRequestsWithInfo(w http.ResponseWriter, r *http.Request, detail string, info *RateLimitInfo) {
	if info != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt, 10))
		if info.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
		}
	}
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewTooManyRequests(traceID, detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewInternalError(traceID, detail))
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewServiceUnavailable(traceID, detail))
}

// NoContent writes a 204 No Content response.
// Includes X-Request-Id header for correlation.
func NoContent(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// FromError maps a domain error onto a problem response. Unknown errors are
// logged and hidden behind a generic 500.
func FromError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var inputErr *parking.InputError
	switch {
	case errors.As(err, &inputErr):
		BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: inputErr.Field, Message: inputErr.Reason, Code: models.FieldCodeInvalid},
		})
	case errors.Is(err, parking.ErrInvalidInput), errors.Is(err, featureflags.ErrInvalidValue):
		BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, store.ErrLotNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrVehicleNotFound),
		errors.Is(err, store.ErrSnapshotNotFound),
		errors.Is(err, store.ErrReportNotFound),
		errors.Is(err, featureflags.ErrFlagNotFound):
		NotFound(w, r, err.Error())
	case errors.Is(err, weather.ErrProviderUnavailable), errors.Is(err, resilience.ErrCircuitOpen):
		ServiceUnavailable(w, r, err.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		InternalError(w, r, "an unexpected error occurred")
	}
}
