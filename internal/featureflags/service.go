package featureflags

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long a repository snapshot is served.
	// Default: 1 minute
	CacheTTL time.Duration

	// DefaultFlags override DefaultFlags().
	DefaultFlags map[string]*Flag
}

// Service evaluates flags over a cached repository snapshot with defaults underneath.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration
	defaults map[string]*Flag

	mu        sync.RWMutex
	snapshot  map[string]*Flag
	expiresAt time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.DefaultFlags == nil {
		cfg.DefaultFlags = DefaultFlags()
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cfg.CacheTTL,
		defaults: cfg.DefaultFlags,
	}
}

// GetFlag returns the stored flag, else its default, else nil.
func (s *Service) GetFlag(ctx context.Context, key string) *Flag {
	if f, ok := s.load(ctx)[key]; ok {
		return f.clone()
	}
	if f, ok := s.defaults[key]; ok {
		return f.clone()
	}
	return nil
}

// List returns defaults overlaid with stored flags, ordered by key.
func (s *Service) List(ctx context.Context) []Flag {
	merged := make(map[string]*Flag, len(s.defaults))
	for k, v := range s.defaults {
		merged[k] = v
	}
	for k, v := range s.load(ctx) {
		merged[k] = v
	}

	out := make([]Flag, 0, len(merged))
	for _, f := range merged {
		out = append(out, *f)
	}
	slices.SortFunc(out, func(a, b Flag) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Update validates and stores updates. A known key must keep the JSON type
// of its default.
func (s *Service) Update(ctx context.Context, updates []FlagUpdate) error {
	flags := make([]*Flag, 0, len(updates))
	for _, u := range updates {
		if u.Key == "" {
			return fmt.Errorf("%w: key is required", ErrInvalidValue)
		}
		if def, ok := s.defaults[u.Key]; ok && !sameKind(def.Value, u.Value) {
			return fmt.Errorf("%w: %s expects %T", ErrInvalidValue, u.Key, def.Value)
		}
		flags = append(flags, &Flag{Key: u.Key, Value: u.Value})
	}

	if err := s.repo.SetFlags(ctx, flags); err != nil {
		return err
	}
	s.InvalidateCache()

	s.logger.Info().Int("count", len(flags)).Msg("feature flags updated")
	return nil
}

// InvalidateCache forces the next read to hit the repository.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.expiresAt = time.Time{}
}

// load returns the cached snapshot, refreshing it when stale. A repository
// error serves the previous snapshot, or nothing.
func (s *Service) load(ctx context.Context) map[string]*Flag {
	s.mu.RLock()
	if s.snapshot != nil && time.Now().Before(s.expiresAt) {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	flags, err := s.repo.GetAllFlags(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load feature flags, using defaults")
		return s.snapshot
	}
	s.snapshot = flags
	s.expiresAt = time.Now().Add(s.cacheTTL)
	return flags
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case bool:
		_, ok := b.(bool)
		return ok
	case float64, int:
		switch b.(type) {
		case float64, int:
			return true
		}
		return false
	case string:
		_, ok := b.(string)
		return ok
	}
	return true
}

// IsEnabled reports whether a boolean flag is on.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	return s.GetFlag(ctx, key).BoolValue(false)
}

// WeatherFactorDisabled reports whether quotes ignore weather.
func (s *Service) WeatherFactorDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableWeatherFactor)
}

// HolidaySurchargeDisabled reports whether quotes skip the holiday surcharge.
func (s *Service) HolidaySurchargeDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableHolidaySurcharge)
}

// ObservedWeatherEnabled reports whether quotes use live provider weather.
func (s *Service) ObservedWeatherEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagObservedWeather)
}

// UtilizationThreshold returns the underused-area threshold.
func (s *Service) UtilizationThreshold(ctx context.Context) float64 {
	return s.GetFlag(ctx, FlagInsightsUtilizationThreshold).Float64Value(0.4)
}

// NavigationMaxIterations returns the A* expansion cap.
func (s *Service) NavigationMaxIterations(ctx context.Context) int {
	return s.GetFlag(ctx, FlagNavigationMaxIterations).IntValue(10000)
}

// RecommendationRadius returns the candidate radius in meters.
func (s *Service) RecommendationRadius(ctx context.Context) float64 {
	return s.GetFlag(ctx, FlagRecommendationRadius).Float64Value(3000)
}
