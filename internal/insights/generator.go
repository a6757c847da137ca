package insights

import (
	"sort"

	"github.com/rs/zerolog"
)

// Default generator settings.
const (
	DefaultUtilizationThreshold = 0.4
	DefaultDailyRevenue         = 45000.0
	DefaultMaxResults           = 5
)

// Config holds configuration for the insight generator.
type Config struct {
	// UtilizationThreshold flags areas occupied below this rate.
	// Default: 0.4
	UtilizationThreshold float64

	// DailyRevenue is assumed when neither the snapshot nor its history
	// carries revenue.
	// Default: 45000
	DailyRevenue float64

	// MaxResults caps the number of insights.
	// Default: 5
	MaxResults int

	// Logger for generator operations.
	Logger zerolog.Logger
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		UtilizationThreshold: DefaultUtilizationThreshold,
		DailyRevenue:         DefaultDailyRevenue,
		MaxResults:           DefaultMaxResults,
		Logger:               zerolog.Nop(),
	}
}

// Generator runs the analyzers over snapshots.
type Generator struct {
	utilizationThreshold float64
	defaultRevenue       float64
	maxResults           int
	analyzers            []analyzer
	logger               zerolog.Logger
}

// NewGenerator creates a new insight generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.UtilizationThreshold <= 0 || cfg.UtilizationThreshold > 1 {
		cfg.UtilizationThreshold = DefaultUtilizationThreshold
	}
	if cfg.DailyRevenue <= 0 {
		cfg.DailyRevenue = DefaultDailyRevenue
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	return &Generator{
		utilizationThreshold: cfg.UtilizationThreshold,
		defaultRevenue:       cfg.DailyRevenue,
		maxResults:           cfg.MaxResults,
		analyzers: []analyzer{
			analyzeUtilization,
			analyzeRevenue,
			analyzePeak,
			analyzeBehavior,
			analyzeDevices,
		},
		logger: cfg.Logger,
	}
}

// UtilizationThreshold returns the configured area utilization threshold.
func (g *Generator) UtilizationThreshold() float64 {
	return g.utilizationThreshold
}

// Generate runs every analyzer and returns their insights, most urgent
// first. Equal priorities keep analyzer order.
func (g *Generator) Generate(s Snapshot) ([]Insight, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := make([]Insight, 0, len(g.analyzers))
	for _, analyze := range g.analyzers {
		if in := analyze(g, s); in != nil {
			out = append(out, *in)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	if len(out) > g.maxResults {
		out = out[:g.maxResults]
	}

	g.logger.Debug().
		Str("lot_id", s.LotID).
		Int("areas", len(s.Areas)).
		Int("devices", len(s.Devices)).
		Int("insights", len(out)).
		Msg("generated insights")

	return out, nil
}

// dailyRevenue returns the snapshot revenue, else the mean of its history,
// else the configured default.
func (g *Generator) dailyRevenue(s Snapshot) float64 {
	if s.DailyRevenue > 0 {
		return s.DailyRevenue
	}
	var sum float64
	var n int
	for _, d := range s.History {
		if d.Revenue > 0 {
			sum += d.Revenue
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	return g.defaultRevenue
}
