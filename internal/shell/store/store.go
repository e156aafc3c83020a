package store

import (
	"context"
	"time"

	"github.com/artpar/hwdb/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for inventory records.
//
// Listings are returned in id order. Systems returned by one call share
// the deployment pointers of that call.
type Store interface {
	// Deployment operations
	ListDeployments(ctx context.Context) ([]*domain.Deployment, error)
	GetDeployment(ctx context.Context, id int64) (*domain.Deployment, error)

	// System operations
	ListSystems(ctx context.Context) ([]*domain.System, error)
	GetSystem(ctx context.Context, id int64) (*domain.System, error)

	// Snapshot import, replacing all records
	ImportSnapshot(ctx context.Context, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error)
	ListImports(ctx context.Context, opts ListOptions) ([]Import, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Import records one snapshot import run.
type Import struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Deployments int       `json:"deployments"`
	Systems     int       `json:"systems"`
	ImportedAt  time.Time `json:"imported_at"`
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
