package deploy

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/mods"
	"github.com/endfield-mods/efl/internal/pack"
)

// Conflict kinds.
const (
	ConflictCopy  = "copy"
	ConflictAsset = "asset"
)

// Conflict is a destination path written by more than one enabled mod.
type Conflict struct {
	Kind string   `json:"kind"`
	Path string   `json:"path"`
	Mods []string `json:"mods"`
}

// String formats the conflict for display.
func (c Conflict) String() string {
	return c.Path + " <- " + strings.Join(c.Mods, ", ")
}

// CopyConflicts finds manifest copy targets shared by enabled mods. Paths
// are relative to each mod folder, which is how the game sees them once
// mounted. Mods without a copy list never conflict here.
func CopyConflicts(enabled []mods.Mod) []Conflict {
	writers := map[string][]string{}
	for _, m := range enabled {
		for _, target := range pack.CopyTargets(m.Copy) {
			src := filepath.Join(m.Path, filepath.FromSlash(target))
			if fsutil.IsDir(src) {
				_ = filepath.WalkDir(src, func(path string, e fs.DirEntry, err error) error {
					if err == nil && e.Type().IsRegular() {
						rel, _ := filepath.Rel(m.Path, path)
						writers[filepath.ToSlash(rel)] = append(writers[filepath.ToSlash(rel)], m.RelPath)
					}
					return nil
				})
				continue
			}
			writers[target] = append(writers[target], m.RelPath)
		}
	}
	return collect(ConflictCopy, writers)
}

// AssetConflicts finds game files that more than one enabled mod would overwrite.
func AssetConflicts(enabled []mods.Mod) []Conflict {
	writers := map[string][]string{}
	for _, m := range enabled {
		files, err := assetFiles(m.Path)
		if err != nil {
			continue
		}
		for _, f := range files {
			writers[f] = append(writers[f], m.RelPath)
		}
	}
	return collect(ConflictAsset, writers)
}

// Conflicts returns copy and asset conflicts together.
func Conflicts(enabled []mods.Mod) []Conflict {
	return append(CopyConflicts(enabled), AssetConflicts(enabled)...)
}

func collect(kind string, writers map[string][]string) []Conflict {
	var out []Conflict
	for path, ms := range writers {
		uniq := unique(ms)
		if len(uniq) > 1 {
			out = append(out, Conflict{Kind: kind, Path: path, Mods: uniq})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func unique(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
