// Package pack builds the active pack: a generated copy of every enabled mod
// under <mods>/_active, laid out by relative path. Deploy reads from it.
package pack

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/mods"
)

// Stats summarizes a build.
type Stats struct {
	Mods    int      `json:"mods"`
	Files   int      `json:"files"`
	Missing []string `json:"missing,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

// ProgressFunc is called after each enabled mod is processed.
type ProgressFunc func(done, total int, rel string)

// Builder builds active packs.
type Builder struct {
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ActiveRoot returns the active pack directory for modsRoot.
func ActiveRoot(modsRoot string) string {
	return filepath.Join(modsRoot, mods.ActiveDirName)
}

// Build wipes and recreates the active pack from the enabled relative paths,
// in order; later mods overwrite files of earlier ones. Blank entries,
// "#" comments, paths inside _active and missing folders are skipped.
func Build(modsRoot string, enabled []string) (string, Stats, error) {
	return NewBuilder().Build(modsRoot, enabled)
}

// Build implements the package-level Build.
func (b *Builder) Build(modsRoot string, enabled []string) (string, Stats, error) {
	var stats Stats
	activeRoot := ActiveRoot(modsRoot)

	if err := os.RemoveAll(activeRoot); err != nil {
		return "", stats, fmt.Errorf("failed to clear active pack: %w", err)
	}
	if err := os.MkdirAll(activeRoot, 0o755); err != nil {
		return "", stats, fmt.Errorf("failed to create active pack: %w", err)
	}

	for i, raw := range enabled {
		rel := strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/"))
		rel = strings.Trim(rel, "/")

		n, err := b.buildOne(modsRoot, activeRoot, rel, &stats)
		if err != nil {
			return activeRoot, stats, err
		}
		stats.Files += n
		if b.progress != nil {
			b.progress(i+1, len(enabled), rel)
		}
	}

	b.logger.Info("active pack built",
		slog.String("root", activeRoot),
		slog.Int("mods", stats.Mods),
		slog.Int("files", stats.Files),
		slog.Int("missing", len(stats.Missing)))
	return activeRoot, stats, nil
}

func (b *Builder) buildOne(modsRoot, activeRoot, rel string, stats *Stats) (int, error) {
	if rel == "" || strings.HasPrefix(rel, "#") {
		return 0, nil
	}
	if rel == mods.ActiveDirName || strings.HasPrefix(rel, mods.ActiveDirName+"/") {
		stats.Skipped = append(stats.Skipped, rel)
		return 0, nil
	}

	src, err := fsutil.SafeJoin(modsRoot, rel)
	if err != nil {
		stats.Skipped = append(stats.Skipped, rel)
		b.logger.Warn("skipping unsafe mod path", slog.String("mod", rel))
		return 0, nil
	}
	if !fsutil.IsDir(src) {
		stats.Missing = append(stats.Missing, rel)
		b.logger.Warn("enabled mod not found", slog.String("mod", rel))
		return 0, nil
	}
	dst := filepath.Join(activeRoot, filepath.FromSlash(rel))

	var n int
	if m := readConfigManifest(src); m != nil && len(m.Copy) > 0 {
		n, err = copyConfigMod(src, dst, m.Copy)
	} else {
		n, err = fsutil.CopyDir(src, dst)
	}
	if err != nil {
		return n, fmt.Errorf("failed to copy mod %s: %w", rel, err)
	}
	stats.Mods++
	return n, nil
}

// readConfigManifest returns the manifest of a type=config mod, or nil.
// Unreadable manifests fall back to a whole-folder copy.
func readConfigManifest(src string) *mods.Manifest {
	m, err := mods.ReadManifest(filepath.Join(src, mods.ManifestName))
	if err != nil || m.Type != string(mods.TypeConfig) {
		return nil
	}
	return m
}

// copyConfigMod copies manifest.json plus the entries listed in copy.
// Entries escaping the mod folder and missing entries are skipped.
func copyConfigMod(src, dst string, copyList []string) (int, error) {
	if err := fsutil.CopyFile(filepath.Join(src, mods.ManifestName), filepath.Join(dst, mods.ManifestName)); err != nil {
		return 0, err
	}
	count := 1

	for _, entry := range copyList {
		rel := strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(entry), `\`, "/"), "/")
		if rel == "" {
			continue
		}
		from, err := fsutil.SafeJoin(src, rel)
		if err != nil {
			continue
		}
		if !fsutil.Exists(from) {
			continue
		}
		to := filepath.Join(dst, filepath.FromSlash(rel))
		n, err := fsutil.Copy(from, to)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// CopyTargets returns the active-pack relative paths a config mod's copy
// list writes, for conflict detection. Unsafe entries are omitted.
func CopyTargets(copyList []string) []string {
	var out []string
	for _, entry := range copyList {
		rel := strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(entry), `\`, "/"), "/")
		if rel == "" {
			continue
		}
		if _, err := fsutil.SafeJoin("base", rel); err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel))))
	}
	return out
}
