package mods

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, root string) []Mod {
	t.Helper()
	s, err := NewScanner(WithWorkers(2))
	require.NoError(t, err)
	mods, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	return mods
}

func rels(mods []Mod) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.RelPath
	}
	return out
}

func TestScan_MissingRoot(t *testing.T) {
	mods := scan(t, filepath.Join(t.TempDir(), "mods"))

	assert.Empty(t, mods)
}

func TestScan_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"mods": "x"})
	s, err := NewScanner()
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), filepath.Join(root, "mods"))

	assert.Error(t, err)
}

func TestScan_ClassifiesAndSorts(t *testing.T) {
	// Given: one mod of each type in category folders
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/Fov/fov.cfg":                     "",
		"skins/Estella/Texture/body.dds":          "",
		"skins/Estella/Estella.ini":               "",
		"assets/Voice/Endfield_Data/voice.bank":   "",
		"misc/Readme Pack/readme.md":              "",
		"skins/Alpha/mesh.buf":                    "",
		"misc/Empty/":                             "",
		"misc/OnlyJunk/desktop.ini":               "",
		"_active/skins/Estella/Texture/body.dds":  "",
		".git/objects/aa":                         "",
		"toplevel.ini":                            "",
	})

	// When: scanning
	mods := scan(t, root)

	// Then: type order, then name; containers, empty folders and _active are skipped
	assert.Equal(t, []string{
		"skins/Alpha",
		"skins/Estella",
		"assets/Voice",
		"configs/Fov",
		"misc/Readme Pack",
	}, rels(mods))
	assert.Equal(t, TypeMigoto, mods[0].Type)
	assert.Equal(t, TypeAsset, mods[2].Type)
	assert.Equal(t, TypeConfig, mods[3].Type)
	assert.Equal(t, TypeFolder, mods[4].Type)
	assert.Equal(t, filepath.Join(root, "skins", "Estella"), mods[1].Path)
}

func TestScan_InternalFoldersAreNotMods(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"skins/Estella/d3dx.ini":                 "",
		"skins/Estella/Textures/Body/body.dds":   "",
		"skins/Estella/Shaders/a.hlsl":           "",
		"skins/Estella/Buffer/vb.buf":            "",
		"assets/Voice/resources/voice/a.bank":    "",
	})

	mods := scan(t, root)

	assert.Equal(t, []string{"skins/Estella", "assets/Voice"}, rels(mods))
	assert.Equal(t, TypeAsset, mods[1].Type)
}

func TestScan_AssetRootsInsideModsAreInternal(t *testing.T) {
	// Given: an asset mod whose game tree has its own subfolders
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"assets/Voice/Endfield_Data/voice.bank":             "",
		"assets/Voice/Endfield_Data/StreamingAssets/a.bank": "",
		"assets/Voice/translations/en.json":                 "",
	})

	// When: scanning
	mods := scan(t, root)

	// Then: only the mod itself is listed, not its game folders
	assert.Equal(t, []string{"assets/Voice"}, rels(mods))
	assert.Equal(t, TypeAsset, mods[0].Type)
}

func TestScan_NestedContainers(t *testing.T) {
	// Given: a pack folder that only groups two mods
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"skins/Pack/One/one.png": "",
		"skins/Pack/Two/two.png": "",
		"skins/Pack/credits.md":  "",
	})

	mods := scan(t, root)

	// Then: the plain grouping folder is dropped, its children are listed
	assert.Equal(t, []string{"skins/Pack/One", "skins/Pack/Two"}, rels(mods))
}

func TestScan_ModLikeParentIsKept(t *testing.T) {
	// A folder that looks like a mod is kept even with candidate children.
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/Big/settings.ini":    "",
		"configs/Big/Extra/readme.md": "",
	})

	mods := scan(t, root)

	assert.ElementsMatch(t, []string{"configs/Big", "configs/Big/Extra"}, rels(mods))
}

func TestScan_ManifestApplied(t *testing.T) {
	// Given: mods with valid, invalid and empty manifests
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/Estella/manifest.json": "\xEF\xBB\xBF" + `{"id":"est","name":"Estella Tweaks","version":2,"author":"kay","type":"config","copy":["a.ini","sub/"]}`,
		"configs/Estella/a.ini":         "",
		"misc/Bad/manifest.json":        "{not json",
		"misc/Empty/manifest.json":      "   ",
		"misc/NoID/manifest.json":       `{"name":"No Id","type":"config"}`,
	})

	// When: scanning
	mods := scan(t, root)
	byRel := map[string]Mod{}
	for _, m := range mods {
		byRel[m.RelPath] = m
	}

	// Then: metadata and validation messages are set
	est := byRel["configs/Estella"]
	assert.Equal(t, "Estella Tweaks", est.Name)
	assert.Equal(t, "2", est.Version)
	assert.Equal(t, "kay", est.Author)
	assert.Equal(t, []string{"a.ini", "sub/"}, est.Copy)
	assert.Empty(t, est.Warnings)
	assert.False(t, est.Broken())

	bad := byRel["misc/Bad"]
	assert.True(t, bad.Broken())
	assert.Contains(t, bad.Errors[0], "manifest.json parse error")

	assert.True(t, byRel["misc/Empty"].Broken())
	assert.Contains(t, byRel["misc/Empty"].Errors[0], "empty")

	noID := byRel["misc/NoID"]
	assert.Equal(t, TypeConfig, noID.Type)
	assert.Contains(t, noID.Warnings, "Missing 'id' in manifest (recommended).")
	assert.Contains(t, noID.Warnings, "type=config but 'copy' list is empty.")
}

func TestScan_ReusesManifestCache(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/A/manifest.json": `{"id":"a"}`,
	})
	s, err := NewScanner()
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), root)
	require.NoError(t, err)
	_, err = s.Scan(context.Background(), root)
	require.NoError(t, err)

	hits, misses := s.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestScan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"skins/A/a.dds": ""})
	s, err := NewScanner()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Scan(ctx, root)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortMods(t *testing.T) {
	mods := []Mod{
		{Name: "b", RelPath: "x/b", Type: TypeFolder},
		{Name: "B", RelPath: "a/B", Type: TypeFolder},
		{Name: "z", RelPath: "z", Type: TypeMigoto},
		{Name: "q", RelPath: "q", Type: Type("weird")},
	}

	SortMods(mods)

	assert.Equal(t, []string{"z", "a/B", "x/b", "q"}, rels(mods))
}
