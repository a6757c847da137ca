package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/telemetry"
	"github.com/smartpark/smartpark/internal/weather"
)

// InsightsRefreshJob regenerates and stores the insight report of every lot.
type InsightsRefreshJob struct {
	config         RefreshConfig
	store          store.Repository
	flags          *featureflags.Service
	weatherService *weather.Service
	instruments    *telemetry.Instruments
	now            func() time.Time
	logger         zerolog.Logger

	metrics *RefreshMetrics
}

// RefreshMetrics tracks totals across runs.
type RefreshMetrics struct {
	mu sync.RWMutex

	Runs          int64
	Generated     int64
	Skipped       int64
	Failed        int64
	WeatherWarmed int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// RefreshJobConfig holds configuration for creating an InsightsRefreshJob.
type RefreshJobConfig struct {
	Config RefreshConfig

	// Store is read for lots and snapshots and receives reports (required).
	Store store.Repository

	// Flags supplies the utilization threshold. Nil uses the generator default.
	Flags *featureflags.Service

	// WeatherService is warmed per lot when set.
	WeatherService *weather.Service

	// Instruments records generated insights.
	// Default: instruments on the global meter provider
	Instruments *telemetry.Instruments

	// Now stamps reports.
	// Default: time.Now
	Now func() time.Time

	Logger zerolog.Logger
}

// NewInsightsRefreshJob creates a new refresh job.
func NewInsightsRefreshJob(cfg RefreshJobConfig) *InsightsRefreshJob {
	config := cfg.Config
	defaults := DefaultRefreshConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if cfg.Instruments == nil {
		cfg.Instruments = telemetry.MustInstruments(telemetry.Meter(telemetry.InstrumentationName))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &InsightsRefreshJob{
		config:         config,
		store:          cfg.Store,
		flags:          cfg.Flags,
		weatherService: cfg.WeatherService,
		instruments:    cfg.Instruments,
		now:            cfg.Now,
		logger:         cfg.Logger,
		metrics:        &RefreshMetrics{},
	}
}

// RefreshStats is the outcome of one run.
type RefreshStats struct {
	Lots          int
	Generated     int
	Skipped       int
	Failed        int
	WeatherWarmed int
	Duration      time.Duration
	Errors        []LotError
}

// LotError records a lot that could not be refreshed.
type LotError struct {
	LotID string
	Error string
}

type lotOutcome int

const (
	outcomeGenerated lotOutcome = iota
	outcomeSkipped
	outcomeFailed
)

type lotResult struct {
	lotID   string
	outcome lotOutcome
	warmed  bool
	err     error
}

// Run refreshes every lot in the store. It fails only when the lots
// cannot be listed; per-lot failures are reported in the stats.
func (j *InsightsRefreshJob) Run(ctx context.Context) (*RefreshStats, error) {
	start := time.Now()

	lots, err := j.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	threshold := insights.DefaultUtilizationThreshold
	if j.flags != nil {
		threshold = j.flags.UtilizationThreshold(ctx)
	}
	generator := insights.NewGenerator(insights.Config{
		UtilizationThreshold: threshold,
		Logger:               j.logger,
	})

	j.logger.Info().
		Int("lots", len(lots)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting insights refresh job")

	lotsChan := make(chan parking.Lot, len(lots))
	resultsChan := make(chan lotResult, len(lots))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, generator, lotsChan, resultsChan)
		}()
	}

	for _, lot := range lots {
		lotsChan <- lot
	}
	close(lotsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	stats := &RefreshStats{Lots: len(lots)}
	for res := range resultsChan {
		switch res.outcome {
		case outcomeGenerated:
			stats.Generated++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeFailed:
			stats.Failed++
			stats.Errors = append(stats.Errors, LotError{LotID: res.lotID, Error: res.err.Error()})
		}
		if res.warmed {
			stats.WeatherWarmed++
		}
	}
	stats.Duration = time.Since(start)

	j.updateMetrics(stats)

	j.logger.Info().
		Dur("duration", stats.Duration).
		Int("generated", stats.Generated).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("weather_warmed", stats.WeatherWarmed).
		Msg("insights refresh job completed")

	return stats, nil
}

func (j *InsightsRefreshJob) refreshWorker(ctx context.Context, generator *insights.Generator, lots <-chan parking.Lot, results chan<- lotResult) {
	for lot := range lots {
		select {
		case <-ctx.Done():
			results <- lotResult{lotID: lot.ID, outcome: outcomeFailed, err: ctx.Err()}
		default:
			results <- j.refreshLot(ctx, generator, lot)
		}
	}
}

func (j *InsightsRefreshJob) refreshLot(ctx context.Context, generator *insights.Generator, lot parking.Lot) lotResult {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	result := lotResult{lotID: lot.ID}
	result.warmed = j.warmWeather(ctx, lot)

	snapshot, err := j.store.GetSnapshot(ctx, lot.ID)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		j.logger.Debug().Str("lot_id", lot.ID).Msg("no snapshot, skipping lot")
		result.outcome = outcomeSkipped
		return result
	}
	if err != nil {
		return j.failed(result, err)
	}

	found, err := generator.Generate(*snapshot)
	if err != nil {
		return j.failed(result, err)
	}

	report := &store.InsightReport{
		ID:          uuid.New().String(),
		LotID:       lot.ID,
		GeneratedAt: j.now().UTC(),
		Insights:    found,
	}
	if err := j.store.SaveInsights(ctx, report); err != nil {
		return j.failed(result, err)
	}
	for _, in := range found {
		j.instruments.Insight(ctx, lot.ID, string(in.Priority))
	}

	result.outcome = outcomeGenerated
	return result
}

func (j *InsightsRefreshJob) failed(result lotResult, err error) lotResult {
	j.logger.Warn().Err(err).Str("lot_id", result.lotID).Msg("failed to refresh lot insights")
	result.outcome = outcomeFailed
	result.err = err
	return result
}

// warmWeather errors are non-fatal; the API falls back to sampled weather.
func (j *InsightsRefreshJob) warmWeather(ctx context.Context, lot parking.Lot) bool {
	if !j.config.WarmWeather || j.weatherService == nil {
		return false
	}
	if _, err := j.weatherService.GetCurrentWeather(ctx, lot.Location.Lat, lot.Location.Lng); err != nil {
		j.logger.Warn().Err(err).Str("lot_id", lot.ID).Msg("weather warm-up failed")
		return false
	}
	return true
}

func (j *InsightsRefreshJob) updateMetrics(stats *RefreshStats) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.Runs++
	j.metrics.Generated += int64(stats.Generated)
	j.metrics.Skipped += int64(stats.Skipped)
	j.metrics.Failed += int64(stats.Failed)
	j.metrics.WeatherWarmed += int64(stats.WeatherWarmed)
	j.metrics.LastRunAt = j.now()
	j.metrics.LastRunDuration = stats.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *InsightsRefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		Runs:            j.metrics.Runs,
		Generated:       j.metrics.Generated,
		Skipped:         j.metrics.Skipped,
		Failed:          j.metrics.Failed,
		WeatherWarmed:   j.metrics.WeatherWarmed,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for health output.
func (j *InsightsRefreshJob) MetricsSnapshot() map[string]any {
	m := j.GetMetrics()
	return map[string]any{
		"runs":              m.Runs,
		"generated":         m.Generated,
		"skipped":           m.Skipped,
		"failed":            m.Failed,
		"weather_warmed":    m.WeatherWarmed,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
	}
}

// Ping checks that the store answers.
func (j *InsightsRefreshJob) Ping(ctx context.Context) error {
	_, err := j.store.ListLots(ctx)
	return err
}
