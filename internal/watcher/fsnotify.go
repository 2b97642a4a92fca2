package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher follows every folder below a mods root. fsnotify is not
// recursive, so folders created later are added as they appear.
type Watcher struct {
	fsw  *fsnotify.Watcher
	deb  *Debouncer
	root string
	opts Options
	log  *slog.Logger
}

// New registers root and all of its non-ignored folders.
func New(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve mods root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	opts = opts.WithDefaults()
	w := &Watcher{
		fsw:  fsw,
		deb:  NewDebouncer(opts.DebounceWindow, opts.MaxWait),
		root: abs,
		opts: opts,
		log:  slog.Default().With(slog.String("root", abs)),
	}
	if err := w.watchTree(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	return w, nil
}

// Root returns the absolute mods root.
func (w *Watcher) Root() string { return w.root }

// Close stops watching. Pending changes are discarded.
func (w *Watcher) Close() error {
	w.deb.Stop()
	return w.fsw.Close()
}

// Serve feeds events through the debouncer and calls fn once per batch,
// one batch at a time, until ctx is done or the watcher is closed. An
// error from fn is logged and does not stop watching.
func (w *Watcher) Serve(ctx context.Context, fn BatchFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if fe, keep := w.translate(ev); keep {
				w.deb.Add(fe)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", slog.String("error", err.Error()))
		case batch, ok := <-w.deb.Output():
			if !ok {
				return nil
			}
			if err := fn(ctx, batch); err != nil {
				w.log.Warn("rebuild after change failed",
					slog.Int("changes", len(batch)),
					slog.String("error", err.Error()))
			}
		}
	}
}

// translate maps an fsnotify event to a FileEvent relative to the root.
// Folders that appear are watched before their event is reported.
func (w *Watcher) translate(ev fsnotify.Event) (FileEvent, bool) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || w.opts.Ignored(rel) {
		return FileEvent{}, false
	}

	fe := FileEvent{Path: filepath.ToSlash(rel), Timestamp: time.Now()}
	if info, err := os.Stat(ev.Name); err == nil {
		fe.IsDir = info.IsDir()
	}

	switch {
	case ev.Has(fsnotify.Create):
		fe.Operation = OpCreate
		if fe.IsDir {
			if err := w.watchTree(ev.Name); err != nil {
				w.log.Debug("new folder not watched", slog.String("path", fe.Path), slog.String("error", err.Error()))
			}
		}
	case ev.Has(fsnotify.Write):
		fe.Operation = OpModify
	case ev.Has(fsnotify.Remove):
		fe.Operation = OpDelete
	case ev.Has(fsnotify.Rename):
		fe.Operation = OpRename
	default:
		return FileEvent{}, false
	}
	return fe, true
}

// watchTree adds dir and every folder below it that is not ignored.
// An unreadable dir is an error; folders below it that vanish during the
// walk are skipped.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(w.root, path); rel != "." && w.opts.Ignored(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
