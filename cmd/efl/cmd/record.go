package cmd

import (
	"context"
	"log/slog"

	"github.com/endfield-mods/efl/internal/config"
	"github.com/endfield-mods/efl/internal/history"
)

// recordAction adds a deploy or restore entry to the history when enabled.
// History failures are logged and otherwise ignored.
func recordAction(ctx context.Context, dir string, cfg *config.Config, e history.Entry) {
	if !cfg.Launch.RecordHistory {
		return
	}
	store, err := history.Open(config.DataDir(dir))
	if err != nil {
		slog.Debug("history unavailable", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	e.Dir = dir
	if _, err := store.Record(ctx, e); err != nil {
		slog.Warn("failed to record history", slog.String("error", err.Error()))
	}
}
