package store

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts listing calls that reach the database.
type countingStore struct {
	Store
	deploymentLists int
	systemLists     int
}

func (c *countingStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	c.deploymentLists++
	return c.Store.ListDeployments(ctx)
}

func (c *countingStore) ListSystems(ctx context.Context) ([]*domain.System, error) {
	c.systemLists++
	return c.Store.ListSystems(ctx)
}

// blockingStore holds ListDeployments between reading its records and
// returning them, so an import can land in between.
type blockingStore struct {
	Store
	mu          sync.Mutex
	deployments []*domain.Deployment
	read        chan struct{}
	release     chan struct{}
}

func (b *blockingStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	b.mu.Lock()
	snapshot := slices.Clone(b.deployments)
	b.mu.Unlock()

	if b.read != nil {
		close(b.read)
		b.read = nil
		<-b.release
	}
	return snapshot, nil
}

func (b *blockingStore) ImportSnapshot(ctx context.Context, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deployments = deployments
	return &Import{Source: source, Deployments: len(deployments)}, nil
}

func newCountingStore(t *testing.T) *countingStore {
	t.Helper()
	s := setupTestStore(t)
	importTestRecords(t, s)
	return &countingStore{Store: s}
}

func TestNewCachedStore_DisabledTTL(t *testing.T) {
	inner := newCountingStore(t)
	assert.Same(t, inner, NewCachedStore(inner, 0))
}

func TestCachedStore_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore(t)
	s := NewCachedStore(inner, time.Minute)

	first, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	second, err := s.ListDeployments(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.deploymentLists)
	assert.Equal(t, first, second)

	_, err = s.ListSystems(ctx)
	require.NoError(t, err)
	_, err = s.ListSystems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.systemLists)
}

func TestCachedStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(newCountingStore(t), time.Minute)

	first, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	require.Greater(t, len(first), 1)
	first[0], first[len(first)-1] = first[len(first)-1], first[0]

	second, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	assert.Less(t, second[0].ID, second[len(second)-1].ID)
}

func TestCachedStore_ImportInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore(t)
	s := NewCachedStore(inner, time.Minute)

	_, err := s.ListDeployments(ctx)
	require.NoError(t, err)

	deployments, _ := testRecords()
	_, err = s.ImportSnapshot(ctx, deployments[:1], nil, "smaller")
	require.NoError(t, err)

	deployments, err = s.ListDeployments(ctx)
	require.NoError(t, err)
	assert.Len(t, deployments, 1)
	assert.Equal(t, 2, inner.deploymentLists)
}

func TestCachedStore_Expires(t *testing.T) {
	ctx := context.Background()
	inner := newCountingStore(t)
	s := NewCachedStore(inner, 20*time.Millisecond)

	_, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = s.ListDeployments(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.deploymentLists)
}

func TestCachedStore_ImportDuringListingIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	inner := &blockingStore{
		deployments: []*domain.Deployment{{ID: 1}},
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	read := inner.read
	s := NewCachedStore(inner, time.Minute)

	type result struct {
		deployments []*domain.Deployment
		err         error
	}
	done := make(chan result, 1)
	go func() {
		d, err := s.ListDeployments(ctx)
		done <- result{d, err}
	}()

	<-read
	_, err := s.ImportSnapshot(ctx, []*domain.Deployment{{ID: 2}}, nil, "newer")
	require.NoError(t, err)
	close(inner.release)

	stale := <-done
	require.NoError(t, stale.err)
	require.Len(t, stale.deployments, 1)
	assert.Equal(t, int64(1), stale.deployments[0].ID)

	fresh, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, int64(2), fresh[0].ID)
}
