package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/smartpark/smartpark/internal/api/models"
)

// ClientIDHeader identifies a client application, such as a kiosk or an app install.
const ClientIDHeader = "X-Client-Id"

// maxClientIDLength bounds the header so it cannot bloat the limiter's key space.
const maxClientIDLength = 64

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// AdminRateLimit applies to feature flag administration (20 req/min).
	AdminRateLimit = RateLimitConfig{
		RequestLimit: 20,
		WindowLength: time.Minute,
	}

	// ExpensiveRateLimit applies to allocation, recommendation and path search (30 req/min).
	ExpensiveRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to standard endpoints (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware using client IP address.
// Uses X-Forwarded-For header if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitByClient creates a rate limiter keyed by the X-Client-Id header.
// Requests without a usable client id fall back to the client IP.
func RateLimitByClient(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByClientOrIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

func keyByClientOrIP(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if id != "" && len(id) <= maxClientIDLength {
		return "client:" + id, nil
	}
	return httprate.KeyByRealIP(r)
}

// rateLimitExceededHandler writes an RFC7807 Problem response when rate limit is exceeded.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	traceID := GetRequestID(r.Context())

	problem := models.NewTooManyRequests(traceID, "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate does not expose the window reset, so advertise a full window.
	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
