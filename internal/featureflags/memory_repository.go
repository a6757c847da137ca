package featureflags

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps flags in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	flags map[string]*Flag
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty repository. Reads fall back to
// DefaultFlags through the Service.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{flags: make(map[string]*Flag)}
}

// GetFlag retrieves a single feature flag by key.
func (r *InMemoryRepository) GetFlag(_ context.Context, key string) (*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flag, ok := r.flags[key]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return flag.clone(), nil
}

// GetAllFlags retrieves all stored flags.
func (r *InMemoryRepository) GetAllFlags(_ context.Context) (map[string]*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Flag, len(r.flags))
	for k, v := range r.flags {
		out[k] = v.clone()
	}
	return out, nil
}

// SetFlags creates or updates flags.
func (r *InMemoryRepository) SetFlags(_ context.Context, flags []*Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, f := range flags {
		r.flags[f.Key] = &Flag{Key: f.Key, Value: f.Value, UpdatedAt: now}
	}
	return nil
}

// DeleteFlag removes a flag.
func (r *InMemoryRepository) DeleteFlag(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flags[key]; !ok {
		return ErrFlagNotFound
	}
	delete(r.flags, key)
	return nil
}
