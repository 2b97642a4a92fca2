package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs a watcher on root and forwards its batches.
func serve(t *testing.T, root string) <-chan []FileEvent {
	t.Helper()
	w, err := New(root, Options{DebounceWindow: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []FileEvent, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Serve(ctx, func(_ context.Context, b []FileEvent) error {
			batches <- b
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return batches
}

func paths(batch []FileEvent) []string {
	out := make([]string, 0, len(batch))
	for _, e := range batch {
		out = append(out, e.Path)
	}
	return out
}

func nextWatchBatch(t *testing.T, batches <-chan []FileEvent) []FileEvent {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("no batch within 3s")
		return nil
	}
}

func TestWatcher_ReportsFileInExistingMod(t *testing.T) {
	// Given: a library with one mod folder
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "skins", "Estella"), 0o755))
	batches := serve(t, root)

	// When: a texture is written into the mod
	require.NoError(t, os.WriteFile(filepath.Join(root, "skins", "Estella", "body.dds"), []byte("x"), 0o644))

	// Then: the batch names it relative to the root
	assert.Contains(t, paths(nextWatchBatch(t, batches)), "skins/Estella/body.dds")
}

func TestWatcher_FollowsNewFolders(t *testing.T) {
	// Given: an empty library
	root := t.TempDir()
	batches := serve(t, root)

	// When: a mod folder is created, then a file inside it
	require.NoError(t, os.MkdirAll(filepath.Join(root, "skins", "New"), 0o755))
	assert.NotEmpty(t, nextWatchBatch(t, batches))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skins", "New", "mod.ini"), []byte("x"), 0o644))

	// Then: the nested file is reported too
	assert.Contains(t, paths(nextWatchBatch(t, batches)), "skins/New/mod.ini")
}

func TestWatcher_IgnoresActivePack(t *testing.T) {
	// Given: an existing _active folder
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "_active", "skins"), 0o755))
	batches := serve(t, root)

	// When: only _active changes
	require.NoError(t, os.WriteFile(filepath.Join(root, "_active", "skins", "a.dds"), []byte("x"), 0o644))

	// Then: nothing is emitted
	select {
	case b := <-batches:
		t.Fatalf("unexpected batch: %v", b)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNew_MissingRoot(t *testing.T) {
	// Given: a mods root that does not exist
	root := filepath.Join(t.TempDir(), "missing")

	// When: creating a watcher on it
	w, err := New(root, DefaultOptions())

	// Then: it fails instead of watching nothing
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Nil(t, w)
}

func TestRun_CreatesRootAndStopsOnCancel(t *testing.T) {
	// Given: Run on a root that does not exist yet
	root := filepath.Join(t.TempDir(), "mods")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, root, Options{DebounceWindow: 20 * time.Millisecond}, func(context.Context, []FileEvent) error {
			select {
			case called <- struct{}{}:
			default:
			}
			return nil
		})
	}()
	require.Eventually(t, func() bool {
		_, err := os.Stat(root)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	// When: a file is added
	require.NoError(t, os.WriteFile(filepath.Join(root, "note.txt"), []byte("x"), 0o644))

	// Then: the batch func runs, and cancel stops Run cleanly
	select {
	case <-called:
	case <-time.After(3 * time.Second):
		t.Fatal("batch func not called")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}
