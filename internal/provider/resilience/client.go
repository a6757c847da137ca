package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the provider while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider.
	Name string

	// Timeout bounds a single attempt.
	// Default: 5 seconds
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a transient failure.
	// Zero disables retries.
	MaxRetries uint64

	// InitialInterval is the first backoff delay.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	// Default: 2 seconds
	MaxInterval time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig(Name).
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives health updates when set.
	Registry *Registry

	// Logger for retries and breaker transitions.
	Logger zerolog.Logger
}

// DefaultClientConfig returns the settings used for provider clients.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         5 * time.Second,
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Client is an HTTP client that retries 5xx and network errors behind a breaker.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	registry *Registry
	logger   zerolog.Logger

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewClient creates a new resilient HTTP client and registers it when a
// registry is configured.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	cbCfg := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbCfg = *cfg.CircuitBreaker
	}
	logger := cfg.Logger.With().Str("provider", cfg.Name).Logger()
	if cbCfg.OnStateChange == nil {
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		}
	}

	c := &Client{
		name:            cfg.Name,
		http:            &http.Client{Timeout: cfg.Timeout},
		breaker:         NewCircuitBreaker[*http.Response](cbCfg), //nolint:bodyclose // type param, not response
		registry:        cfg.Registry,
		logger:          logger,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
	if c.registry != nil {
		c.registry.Register(c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do executes req. A 5xx that survives every retry is returned as a
// response, not an error, so callers can read the status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = c.maxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)

	var last *http.Response
	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.http.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		if resp != nil {
			if last != nil && last != resp {
				last.Body.Close()
			}
			last = resp
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug().Err(err).Dur("wait", wait).Msg("retrying provider request")
	}

	err := backoff.RetryNotify(attempt, policy, notify)
	switch {
	case err == nil:
		c.record(nil)
		return last, nil
	case last != nil:
		c.record(err)
		return last, nil
	default:
		c.record(err)
		return nil, err
	}
}

func (c *Client) record(err error) {
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.name, err)
		return
	}
	c.registry.RecordSuccess(c.name)
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError is a 5xx provider response.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
