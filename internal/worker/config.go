// Package worker provides background job processing for smartpark.
package worker

import (
	"os"
	"time"
)

// RefreshConfig holds configuration for the insights refresh job.
type RefreshConfig struct {
	// Concurrency is the number of lots processed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the work done for a single lot.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmWeather fetches current weather for every lot so the API serves
	// observed weather from cache.
	// Default: true
	WarmWeather bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
		WarmWeather: true,
	}
}

// Config holds the worker process settings.
type Config struct {
	// ProjectID enables Pub/Sub triggering when set.
	ProjectID string

	// Subscription is the Pub/Sub subscription to receive from.
	// Default: insights-refresh
	Subscription string

	// Interval is the ticker period used without Pub/Sub.
	// Default: 15 minutes
	Interval time.Duration
}

// ConfigFromEnv reads PUBSUB_PROJECT_ID, PUBSUB_SUBSCRIPTION and REFRESH_INTERVAL.
func ConfigFromEnv() Config {
	cfg := Config{
		ProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		Subscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
	}
	if cfg.Subscription == "" {
		cfg.Subscription = "insights-refresh"
	}
	interval, err := time.ParseDuration(os.Getenv("REFRESH_INTERVAL"))
	if err != nil || interval <= 0 {
		interval = 15 * time.Minute
	}
	cfg.Interval = interval
	return cfg
}

// PubSubEnabled reports whether the worker is triggered by Pub/Sub messages.
func (c Config) PubSubEnabled() bool {
	return c.ProjectID != ""
}
