package featureflags

import (
	"context"
	"errors"
)

// Feature flag errors.
var (
	ErrFlagNotFound = errors.New("feature flag not found")
	ErrInvalidValue = errors.New("feature flag value has the wrong type")
)

// Repository defines the interface for feature flag storage.
type Repository interface {
	// GetFlag retrieves a single feature flag by key.
	GetFlag(ctx context.Context, key string) (*Flag, error)

	// GetAllFlags retrieves all stored feature flags.
	GetAllFlags(ctx context.Context) (map[string]*Flag, error)

	// SetFlags creates or updates flags in one transaction.
	SetFlags(ctx context.Context, flags []*Flag) error

	// DeleteFlag removes a feature flag by key.
	DeleteFlag(ctx context.Context, key string) error
}
