package watcher

import (
	"context"
	"fmt"
	"os"
)

// BatchFunc handles one debounced batch of changes.
type BatchFunc func(ctx context.Context, batch []FileEvent) error

// Run watches root, creating it first so a fresh install can be watched,
// and calls fn for every batch until ctx is cancelled.
func Run(ctx context.Context, root string, opts Options, fn BatchFunc) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create mods root: %w", err)
	}
	w, err := New(root, opts)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Serve(ctx, fn)
}
