package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startWatcher runs w until the test ends and waits for it to stop.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	var reloads atomic.Int32
	var seen atomic.Value
	w := NewWatcher(path, func(ctx context.Context, p string) error {
		seen.Store(p)
		reloads.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, path, seen.Load())
}

func TestWatcher_ReloadsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	var reloads atomic.Int32
	w := NewWatcher(path, func(ctx context.Context, p string) error {
		reloads.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	startWatcher(t, w)

	tmp := filepath.Join(dir, ".inventory.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(testSnapshot), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	var reloads atomic.Int32
	w := NewWatcher(path, func(ctx context.Context, p string) error {
		reloads.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o600))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	var reloads atomic.Int32
	w := NewWatcher(path, func(ctx context.Context, p string) error {
		reloads.Add(1)
		return nil
	}, WithDebounce(300*time.Millisecond))
	startWatcher(t, w)

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestWatcher_ReloadErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	var reloads atomic.Int32
	w := NewWatcher(path, func(ctx context.Context, p string) error {
		reloads.Add(1)
		return errors.New("bad snapshot")
	}, WithDebounce(20*time.Millisecond))
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))
	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("b"), 0o600))
	require.Eventually(t, func() bool { return reloads.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "inventory.yaml"), func(context.Context, string) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
