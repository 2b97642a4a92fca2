// Package mods discovers and classifies mods under the mods root.
//
// A mod is a folder at depth two or more below the root (the first level
// holds category folders such as skins/ or configs/). Folders are classified
// by their contents: 3DMigoto mods, game asset overrides, config mods and
// plain folders. An optional manifest.json refines name, version and type.
package mods

import "strings"

// Type is the kind of mod.
type Type string

// Mod types in display order.
const (
	TypeMigoto Type = "migoto"
	TypeAsset  Type = "asset"
	TypeConfig Type = "config"
	TypeFolder Type = "folder"
)

// Order returns the sort rank of t; unknown types sort last.
func (t Type) Order() int {
	switch t {
	case TypeMigoto:
		return 0
	case TypeAsset:
		return 1
	case TypeConfig:
		return 2
	case TypeFolder:
		return 3
	default:
		return 99
	}
}

// ParseType maps a manifest type string to a Type.
func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeMigoto, TypeAsset, TypeConfig, TypeFolder:
		return t, true
	}
	return "", false
}

// ActiveDirName is the generated pack folder under the mods root.
const ActiveDirName = "_active"

// ManifestName is the optional per-mod metadata file.
const ManifestName = "manifest.json"

// CategoryFolders are the conventional first-level folders under the mods root.
var CategoryFolders = []string{"misc", "skins", "configs", "assets", "folders"}

// AssetRoots are top-level folders of an asset mod that mirror the game directory.
var AssetRoots = []string{"Endfield_Data", "resources", "game_files", "translations", "plugins"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	ActiveDirName: true,
	"__pycache__": true,
	".git":        true,
}

// internalDirs are subfolders of a mod, never mods themselves.
var internalDirs = map[string]bool{
	"texture": true, "textures": true,
	"buffer": true, "buffers": true,
	"shader": true, "shaders": true,
	"output": true, "outputs": true,
	"cache": true, "caches": true,
	"override": true, "overrides": true,
	"resource": true, "resources": true,
	"__pycache__": true,
}

var (
	migotoExts = []string{".dds", ".buf"}
	configExts = []string{".ini", ".cfg", ".txt", ".json"}
)

// Mod is a discovered mod folder.
type Mod struct {
	Name        string   `json:"name"`
	RelPath     string   `json:"rel_path"`
	Path        string   `json:"-"`
	Type        Type     `json:"type"`
	ID          string   `json:"id,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	HasManifest bool     `json:"has_manifest"`
	Copy        []string `json:"copy,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Broken reports whether the mod has errors that block deployment.
func (m Mod) Broken() bool {
	return len(m.Errors) > 0
}

// IsAssetRoot reports whether name is one of AssetRoots (case-insensitive).
func IsAssetRoot(name string) bool {
	for _, r := range AssetRoots {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}
