package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/jellydator/ttlcache/v3"
)

// =============================================================================
// Cached Store
// =============================================================================

const (
	deploymentsKey = "deployments"
	systemsKey     = "systems"
)

// CachedStore keeps full listings of the wrapped store for a fixed TTL.
//
// Listings are handed out as fresh slices so callers may sort them in place.
// The cache is dropped whenever a snapshot is imported through this store.
// A listing read from the wrapped store is only cached if no invalidation
// happened while it was in flight.
type CachedStore struct {
	Store
	deployments *ttlcache.Cache[string, []*domain.Deployment]
	systems     *ttlcache.Cache[string, []*domain.System]

	mu         sync.Mutex // guards generation and cache writes
	generation uint64
}

// NewCachedStore wraps s with listing caches that expire after ttl.
// A non-positive ttl returns s unchanged.
func NewCachedStore(s Store, ttl time.Duration) Store {
	if ttl <= 0 {
		return s
	}
	return &CachedStore{
		Store: s,
		deployments: ttlcache.New[string, []*domain.Deployment](
			ttlcache.WithTTL[string, []*domain.Deployment](ttl),
		),
		systems: ttlcache.New[string, []*domain.System](
			ttlcache.WithTTL[string, []*domain.System](ttl),
		),
	}
}

func (c *CachedStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	if item := c.deployments.Get(deploymentsKey, ttlcache.WithDisableTouchOnHit[string, []*domain.Deployment]()); item != nil {
		return slices.Clone(item.Value()), nil
	}

	gen := c.currentGeneration()
	deployments, err := c.Store.ListDeployments(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.generation == gen {
		c.deployments.Set(deploymentsKey, deployments, ttlcache.DefaultTTL)
	}
	c.mu.Unlock()
	return slices.Clone(deployments), nil
}

func (c *CachedStore) ListSystems(ctx context.Context) ([]*domain.System, error) {
	if item := c.systems.Get(systemsKey, ttlcache.WithDisableTouchOnHit[string, []*domain.System]()); item != nil {
		return slices.Clone(item.Value()), nil
	}

	gen := c.currentGeneration()
	systems, err := c.Store.ListSystems(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.generation == gen {
		c.systems.Set(systemsKey, systems, ttlcache.DefaultTTL)
	}
	c.mu.Unlock()
	return slices.Clone(systems), nil
}

func (c *CachedStore) ImportSnapshot(ctx context.Context, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error) {
	defer c.Invalidate()
	return c.Store.ImportSnapshot(ctx, deployments, systems, source)
}

func (c *CachedStore) WithTx(ctx context.Context, fn func(Store) error) error {
	defer c.Invalidate()
	return c.Store.WithTx(ctx, fn)
}

// Invalidate drops all cached listings. Listings already in flight are
// returned to their callers but not cached.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.deployments.DeleteAll()
	c.systems.DeleteAll()
}

func (c *CachedStore) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
