package weather

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/s2"
	"github.com/rs/zerolog"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a location.
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache observations (default: 10 minutes).
	CacheTTL time.Duration

	// CacheLevel is the S2 cell level used to share cached observations
	// between nearby lots (default: 10, cells of roughly 10 km).
	CacheLevel int

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 1 hour).
	StaleIfErrorTTL time.Duration
}

// Service provides current weather with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheLevel      int
	staleIfErrorTTL time.Duration
	now             func() time.Time

	mu              sync.RWMutex
	cache           map[s2.CellID]*cachedObservation
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type cachedObservation struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheLevel <= 0 || cfg.CacheLevel > s2.MaxLevel {
		cfg.CacheLevel = 10
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		cacheLevel:      cfg.CacheLevel,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		now:             time.Now,
		cache:           make(map[s2.CellID]*cachedObservation),
		cleanupInterval: 5 * time.Minute,
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrentWeather returns current weather for a location.
// Uses cached data if available and not expired.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.observation, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, lat, lon, key)
}

// fetch asks the provider and updates the cache.
func (s *Service) fetch(ctx context.Context, lat, lon float64, key s2.CellID) (*Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		return cached.observation, nil
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching weather from provider")

	obs, err := s.provider.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch weather")

		if cached, ok := s.cache[key]; ok && s.now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale weather data due to provider error")
			return cached.observation, nil
		}
		return nil, ErrProviderUnavailable
	}

	now := s.now()
	s.cache[key] = &cachedObservation{
		observation: obs,
		fetchedAt:   now,
		expiresAt:   now.Add(s.cacheTTL),
	}
	s.cleanupIfNeeded(now)

	return obs, nil
}

// cacheKey maps a point to the S2 cell shared by its neighbours.
func (s *Service) cacheKey(lat, lon float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(s.cacheLevel)
}

// cleanupIfNeeded drops entries too old to serve even as stale data.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	expired := 0
	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired weather cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[s2.CellID]*cachedObservation)
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		Entries:      len(s.cache),
		FreshEntries: fresh,
		Provider:     s.provider.Name(),
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries      int    `json:"entries"`
	FreshEntries int    `json:"freshEntries"`
	Provider     string `json:"provider"`
}

// validateCoordinates checks if coordinates are valid.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
