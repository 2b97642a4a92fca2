// Package importer installs downloaded mods into the mods library.
//
// Archives are extracted to a temporary directory, the folder that actually
// holds the mod is located, and it is copied to <mods>/misc/<name>.
package importer

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/mods"
)

// DestCategory is the category folder imports are placed in.
const DestCategory = "misc"

// maxUnwrap bounds how many single-folder levels are descended.
const maxUnwrap = 6

// genericNames are archive folder names that say nothing about the mod.
var genericNames = map[string]bool{
	"files": true, "file": true, "mod": true, "mods": true,
	"data": true, "release": true, "download": true,
}

// Result describes an installed mod.
type Result struct {
	Source  string    `json:"source"`
	Dest    string    `json:"dest"`
	RelPath string    `json:"rel_path"`
	Type    mods.Type `json:"type"`
	Files   int       `json:"files"`
}

// ImportZip extracts a zip archive and installs the mod folder it contains
// under <modsRoot>/misc. Existing folders are never overwritten; the name
// gets a _1, _2... suffix instead.
func ImportZip(zipPath, modsRoot string) (*Result, error) {
	if !fsutil.Exists(zipPath) || fsutil.IsDir(zipPath) {
		return nil, eflerrors.New(eflerrors.ErrCodeFileNotFound, "archive not found: "+zipPath, nil)
	}

	tmp, err := os.MkdirTemp("", "efl-import-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := Extract(zipPath, tmp); err != nil {
		return nil, err
	}

	chosen := PickModFolder(tmp)
	stem := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	name := filepath.Base(chosen)
	if chosen == tmp || genericNames[strings.ToLower(name)] {
		name = stem
	}

	parent := filepath.Join(modsRoot, DestCategory)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", parent, err)
	}
	dest := UniqueDest(parent, name)

	n, err := fsutil.CopyDir(chosen, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", filepath.Base(zipPath), err)
	}
	res := newResult(zipPath, dest, modsRoot, n)
	slog.Info("mod imported",
		slog.String("archive", zipPath),
		slog.String("dest", res.RelPath),
		slog.String("type", string(res.Type)),
		slog.Int("files", n))
	return res, nil
}

// InstallFolder copies an unpacked mod folder to <modsRoot>/misc/<name>.
// An existing folder of that name is replaced when overwrite is set,
// otherwise the install fails.
func InstallFolder(src, modsRoot string, overwrite bool) (*Result, error) {
	if !fsutil.IsDir(src) {
		return nil, eflerrors.New(eflerrors.ErrCodeFileNotFound, "folder not found: "+src, nil)
	}
	src = filepath.Clean(src)
	name := SafeName(filepath.Base(src))
	dest := filepath.Join(modsRoot, DestCategory, name)

	if rel, err := filepath.Rel(src, dest); err == nil && !strings.HasPrefix(rel, "..") {
		return nil, eflerrors.New(eflerrors.ErrCodeInvalidPath, "cannot install a folder into itself", nil)
	}

	if fsutil.Exists(dest) {
		if !overwrite {
			return nil, eflerrors.New(eflerrors.ErrCodeInvalidInput, dest+" already exists", nil).
				WithSuggestion("Use --overwrite to replace it")
		}
		if err := os.RemoveAll(dest); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", dest, err)
		}
	}

	n, err := fsutil.CopyDir(src, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", name, err)
	}
	res := newResult(src, dest, modsRoot, n)
	slog.Info("mod folder installed", slog.String("source", src), slog.String("dest", res.RelPath))
	return res, nil
}

func newResult(src, dest, modsRoot string, files int) *Result {
	rel, _ := filepath.Rel(modsRoot, dest)
	return &Result{
		Source:  src,
		Dest:    dest,
		RelPath: filepath.ToSlash(rel),
		Type:    Classify(dest),
		Files:   files,
	}
}

// Extract unpacks a zip archive into dir. Entries that would land outside
// dir are rejected, and symlinks are skipped.
func Extract(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return eflerrors.New(eflerrors.ErrCodeInvalidPath, "unsafe path in "+filepath.Base(zipPath), err)
	}
	if err != nil {
		return eflerrors.New(eflerrors.ErrCodeInvalidInput, "could not unpack "+filepath.Base(zipPath), err).
			WithSuggestion("Only .zip is supported; extract other archives manually, then use 'efl import --folder'")
	}
	defer r.Close()

	for _, f := range r.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if name == "" {
			continue
		}
		target, err := fsutil.SafeJoin(dir, name)
		if err != nil {
			return eflerrors.New(eflerrors.ErrCodeInvalidPath, "unsafe path in archive: "+f.Name, err)
		}

		mode := f.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			continue
		case f.FileInfo().IsDir() || strings.HasSuffix(name, "/"):
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !f.Modified.IsZero() {
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}

// Unwrap descends through folders that contain exactly one subfolder and
// no files, ignoring __MACOSX and dot entries. It stops at a folder that
// holds an asset root, so the asset root itself is never picked.
func Unwrap(root string) string {
	cur := root
	for i := 0; i < maxUnwrap; i++ {
		if LooksAsset(cur) {
			break
		}
		entries, err := os.ReadDir(cur)
		if err != nil {
			break
		}
		var dirs []string
		files := 0
		for _, e := range entries {
			if ignored(e.Name()) {
				continue
			}
			if e.IsDir() {
				dirs = append(dirs, e.Name())
			} else {
				files++
			}
		}
		if len(dirs) != 1 || files != 0 {
			break
		}
		cur = filepath.Join(cur, dirs[0])
	}
	return cur
}

// PickModFolder chooses the folder to install from an extracted archive:
// the unwrapped root if it already looks like a mod, otherwise the
// shallowest 3DMigoto folder, then the shallowest asset folder, then the
// unwrapped root.
func PickModFolder(extracted string) string {
	base := Unwrap(extracted)
	if LooksMigoto(base) || LooksAsset(base) {
		return base
	}

	type candidate struct {
		path   string
		migoto bool
		depth  int
	}
	var candidates []candidate
	_ = filepath.WalkDir(base, func(path string, e fs.DirEntry, err error) error {
		if err != nil || !e.IsDir() || path == base {
			return nil
		}
		if ignored(e.Name()) {
			return filepath.SkipDir
		}
		migoto := LooksMigoto(path)
		if migoto || LooksAsset(path) {
			rel, _ := filepath.Rel(base, path)
			candidates = append(candidates, candidate{
				path:   path,
				migoto: migoto,
				depth:  strings.Count(filepath.ToSlash(rel), "/"),
			})
		}
		return nil
	})
	if len(candidates) == 0 {
		return base
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.migoto != b.migoto {
			return a.migoto
		}
		return a.depth < b.depth
	})
	return candidates[0].path
}

// LooksMigoto reports whether dir has 3DMigoto markers: a Texture or
// Buffer folder, a d3dx.ini, or any .dds/.buf file below it.
func LooksMigoto(dir string) bool {
	for _, marker := range []string{"Texture", "Buffer", "d3dx.ini"} {
		if fsutil.Exists(filepath.Join(dir, marker)) {
			return true
		}
	}
	found := false
	_ = filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if !e.IsDir() {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext == ".dds" || ext == ".buf" {
				found = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	return found
}

// LooksAsset reports whether dir has an asset root folder directly inside it.
func LooksAsset(dir string) bool {
	for _, root := range mods.AssetRoots {
		if fsutil.Exists(filepath.Join(dir, root)) {
			return true
		}
	}
	return false
}

// Classify guesses the type of an installed folder.
func Classify(dir string) mods.Type {
	switch {
	case LooksMigoto(dir):
		return mods.TypeMigoto
	case LooksAsset(dir):
		return mods.TypeAsset
	default:
		return mods.TypeFolder
	}
}

// SafeName strips characters that are invalid in Windows file names.
func SafeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) || r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "ImportedMod"
	}
	return name
}

// UniqueDest returns parent/name, or parent/name_N for the first free N.
func UniqueDest(parent, name string) string {
	safe := SafeName(name)
	dest := filepath.Join(parent, safe)
	if !fsutil.Exists(dest) {
		return dest
	}
	for i := 1; i < 1000; i++ {
		cand := filepath.Join(parent, fmt.Sprintf("%s_%d", safe, i))
		if !fsutil.Exists(cand) {
			return cand
		}
	}
	return filepath.Join(parent, fmt.Sprintf("%s_%d", safe, os.Getpid()))
}

func ignored(name string) bool {
	return name == "__MACOSX" || strings.HasPrefix(name, ".")
}
