// Package watcher rebuilds the active pack when the mods library changes.
//
// fsnotify events below the mods root are filtered, so the generated
// _active folder never retriggers a rebuild. They are then merged into
// batches: extracting an archive or saving from an editor produces one
// rebuild, not hundreds.
//
//	err := watcher.Run(ctx, modsRoot, watcher.DefaultOptions(), func(ctx context.Context, batch []watcher.FileEvent) error {
//	    _, _, err := pack.Build(modsRoot, cfg.Mods.Enabled)
//	    return err
//	})
package watcher
