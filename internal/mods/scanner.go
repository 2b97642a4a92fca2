package mods

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Scanner discovers mods under a mods root.
type Scanner struct {
	cache   *ManifestCache
	workers int
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds how many folders are classified concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache shares a manifest cache between scanners.
func WithCache(c *ManifestCache) Option {
	return func(s *Scanner) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewScanner creates a Scanner.
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		cache, err := NewManifestCache(DefaultManifestCacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Cache returns the scanner's manifest cache.
func (s *Scanner) Cache() *ManifestCache {
	return s.cache
}

// dirInfo accumulates what a walk learns about one directory.
type dirInfo struct {
	path     string
	rel      string
	depth    int
	internal bool // the folder or an ancestor is a mod-internal folder
	hasFile  bool // any file below, desktop.ini aside
	hasMig   bool // any .dds/.buf below
	hasCfg   bool // any .ini/.cfg/.txt/.json below
	migMark  bool // Texture/, Buffer/ or d3dx.ini directly inside
	assetMrk bool // an asset root directly inside

	candidate       bool
	childCandidates bool
}

func (d *dirInfo) looksLikeMod() bool {
	return d.migMark || d.hasMig || d.assetMrk || d.hasCfg
}

func (d *dirInfo) classify() Type {
	switch {
	case d.migMark || d.hasMig:
		return TypeMigoto
	case d.assetMrk:
		return TypeAsset
	case d.hasCfg:
		return TypeConfig
	default:
		return TypeFolder
	}
}

// Scan discovers all mods under root, sorted by type, name, then path.
// A missing root yields no mods and no error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Mod, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat mods root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mods root is not a directory: %s", absRoot)
	}

	dirs, order, err := s.walk(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	found := selectModDirs(dirs, order)

	mods := make([]Mod, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, d := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mods[i] = s.describe(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortMods(mods)
	s.logger.Debug("mods scanned",
		slog.String("root", absRoot),
		slog.Int("dirs", len(order)),
		slog.Int("mods", len(mods)))
	return mods, nil
}

func (s *Scanner) walk(ctx context.Context, root string) (map[string]*dirInfo, []string, error) {
	dirs := make(map[string]*dirInfo)
	var order []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}

		name := d.Name()
		parent := dirs[filepath.Dir(path)]

		if d.IsDir() {
			if skipDirs[name] {
				return fs.SkipDir
			}
			rel, _ := filepath.Rel(root, path)
			depth := strings.Count(filepath.ToSlash(rel), "/") + 1
			info := &dirInfo{
				path:  path,
				rel:   filepath.ToSlash(rel),
				depth: depth,
				// asset roots inside a mod mirror the game tree
				internal: internalDirs[strings.ToLower(name)] || (depth >= 3 && IsAssetRoot(name)) ||
					(parent != nil && parent.internal),
			}
			dirs[path] = info
			order = append(order, path)

			if parent != nil {
				lower := strings.ToLower(name)
				if lower == "texture" || lower == "buffer" {
					parent.migMark = true
				}
				if IsAssetRoot(name) {
					parent.assetMrk = true
				}
			}
			return nil
		}

		if parent != nil {
			if strings.EqualFold(name, "d3dx.ini") {
				parent.migMark = true
			}
			if IsAssetRoot(name) {
				parent.assetMrk = true
			}
		}

		junk := strings.EqualFold(name, "desktop.ini")
		mig := hasExt(name, migotoExts)
		cfg := !junk && hasExt(name, configExts)
		for p := filepath.Dir(path); p != root; p = filepath.Dir(p) {
			a := dirs[p]
			if a == nil {
				break
			}
			a.hasFile = a.hasFile || !junk
			a.hasMig = a.hasMig || mig
			a.hasCfg = a.hasCfg || cfg
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk mods root: %w", err)
	}
	return dirs, order, nil
}

// selectModDirs applies the listing rules: first-level folders are
// containers, mod-internal folders are never listed, empty folders are
// skipped, and a folder that does not look like a mod is kept only when no
// folder below it is a candidate.
func selectModDirs(dirs map[string]*dirInfo, order []string) []*dirInfo {
	for _, p := range order {
		d := dirs[p]
		d.candidate = d.depth >= 2 && !d.internal && d.hasFile
	}
	for _, p := range order {
		if !dirs[p].candidate {
			continue
		}
		for a := filepath.Dir(p); ; a = filepath.Dir(a) {
			anc, ok := dirs[a]
			if !ok {
				break
			}
			anc.childCandidates = true
		}
	}

	var out []*dirInfo
	for _, p := range order {
		d := dirs[p]
		if !d.candidate {
			continue
		}
		if d.looksLikeMod() || !d.childCandidates {
			out = append(out, d)
		}
	}
	return out
}

// describe builds the Mod for a folder, applying its manifest if present.
func (s *Scanner) describe(d *dirInfo) Mod {
	m := Mod{
		Name:    filepath.Base(d.path),
		RelPath: d.rel,
		Path:    d.path,
		Type:    d.classify(),
	}

	manifestPath := filepath.Join(d.path, ManifestName)
	if _, err := os.Stat(manifestPath); err != nil {
		return m
	}
	m.HasManifest = true

	mf, err := s.cache.Read(manifestPath)
	if err != nil {
		m.Errors = append(m.Errors, fmt.Sprintf("manifest.json parse error: %v", err))
		s.logger.Warn("invalid manifest", slog.String("mod", d.rel), slog.String("error", err.Error()))
		return m
	}
	ApplyManifest(&m, mf)
	return m
}

// ApplyManifest copies manifest metadata onto m and records validation warnings.
func ApplyManifest(m *Mod, mf *Manifest) {
	if mf.Name != "" {
		m.Name = mf.Name
	}
	m.ID = mf.ID
	m.Version = mf.Version
	m.Author = mf.Author
	m.Description = mf.Description
	m.Copy = mf.Copy

	if mf.Type != "" {
		if t, ok := ParseType(mf.Type); ok {
			m.Type = t
		} else {
			m.Warnings = append(m.Warnings, fmt.Sprintf("Unknown type %q in manifest; using %s.", mf.Type, m.Type))
		}
	}
	if mf.ID == "" {
		m.Warnings = append(m.Warnings, "Missing 'id' in manifest (recommended).")
	}
	if m.Type == TypeConfig && len(mf.Copy) == 0 {
		m.Warnings = append(m.Warnings, "type=config but 'copy' list is empty.")
	}
}

// SortMods orders mods by type, then name, then relative path (case-insensitive).
func SortMods(mods []Mod) {
	sort.SliceStable(mods, func(i, j int) bool {
		a, b := mods[i], mods[j]
		if a.Type.Order() != b.Type.Order() {
			return a.Type.Order() < b.Type.Order()
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return strings.ToLower(a.RelPath) < strings.ToLower(b.RelPath)
	})
}
