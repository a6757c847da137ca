package resilience

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Provider health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Health is a point-in-time view of one provider.
type Health struct {
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	State         string     `json:"circuitState"`
	Requests      uint32     `json:"requests"`
	Failures      uint32     `json:"failures"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// StatusFor maps a breaker state to a health status.
func StatusFor(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return StatusHealthy
	case gobreaker.StateHalfOpen:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

// Registry tracks provider clients for the status endpoint.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// GlobalRegistry is the process-wide registry.
var GlobalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds or replaces a client under its name.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[c.Name()] = &entry{client: c}
}

// RecordSuccess stamps the last successful call.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastSuccessAt = &now
	}
}

// RecordFailure stamps the last failed call.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastFailureAt = &now
		if err != nil {
			e.lastError = err.Error()
		}
	}
}

// Health returns one provider's health.
func (r *Registry) Health(name string) (Health, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Health{}, false
	}
	return e.health(name), true
}

// All returns every provider's health ordered by name.
func (r *Registry) All() []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, e.health(name))
	}
	slices.SortFunc(out, func(a, b Health) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (e *entry) health(name string) Health {
	state := e.client.State()
	counts := e.client.Counts()
	return Health{
		Name:          name,
		Status:        StatusFor(state),
		State:         state.String(),
		Requests:      counts.Requests,
		Failures:      counts.TotalFailures,
		LastSuccessAt: e.lastSuccessAt,
		LastFailureAt: e.lastFailureAt,
		LastError:     e.lastError,
	}
}
