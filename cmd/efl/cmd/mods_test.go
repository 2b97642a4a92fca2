package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endfield-mods/efl/internal/config"
	"github.com/endfield-mods/efl/internal/output"
	"github.com/endfield-mods/efl/internal/ui"
)

// libraryFolder creates a game folder with a small mod library.
func libraryFolder(t *testing.T) string {
	t.Helper()
	dir := gameFolder(t)
	writeFiles(t, dir, map[string]string{
		"mods/skins/Hero/Hero.ini":                   "[TextureOverride]",
		"mods/skins/Hero/Texture/hero.dds":           "dds",
		"mods/skins/Villain/Villain.ini":             "[TextureOverride]",
		"mods/skins/Villain/villain.buf":             "buf",
		"mods/assets/Lang/Endfield_Data/lang/en.txt": "hello",
		"mods/configs/Tweak/tweak.cfg":               "fov=90",
		"mods/configs/Broken/manifest.json":          "{not json",
		"mods/configs/Broken/broken.ini":             "",
	})
	return dir
}

func listMods(t *testing.T, dir string, args ...string) []modView {
	t.Helper()
	out, err := runEfl(t, dir, "", append([]string{"mods", "list", "--json"}, args...)...)
	require.NoError(t, err)
	var views []modView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	return views
}

func TestModsList_JSON(t *testing.T) {
	// Given: a library with migoto, asset and config mods
	dir := libraryFolder(t)

	// When: listing as JSON
	views := listMods(t, dir)

	// Then: every mod is found and none is enabled
	rels := make([]string, 0, len(views))
	for _, v := range views {
		rels = append(rels, v.RelPath)
		assert.False(t, v.Enabled)
	}
	assert.ElementsMatch(t, []string{
		"skins/Hero", "skins/Villain", "assets/Lang", "configs/Tweak", "configs/Broken",
	}, rels)
}

func TestModsList_Filter(t *testing.T) {
	// Given: a library
	dir := libraryFolder(t)

	// When: filtering by a name fragment
	views := listMods(t, dir, "villain")

	// Then: only the matching mod is listed
	require.Len(t, views, 1)
	assert.Equal(t, "skins/Villain", views[0].RelPath)
}

func TestModsEnableDisable(t *testing.T) {
	// Given: a library
	dir := libraryFolder(t)

	// When: enabling two mods, one by name, then disabling one
	_, err := runEfl(t, dir, "", "mods", "enable", "skins/Hero", "Villain")
	require.NoError(t, err)
	_, err = runEfl(t, dir, "", "mods", "disable", "skins/Hero")
	require.NoError(t, err)

	// Then: the config keeps only the remaining mod
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"skins/Villain"}, cfg.Mods.Enabled)

	views := listMods(t, dir, "--enabled")
	require.Len(t, views, 1)
	assert.Equal(t, "skins/Villain", views[0].RelPath)
}

func TestModsEnable_Unknown(t *testing.T) {
	// Given: a library
	dir := libraryFolder(t)

	// When: enabling a mod that does not exist
	_, err := runEfl(t, dir, "", "mods", "enable", "Nope")

	// Then: the command fails and nothing is saved
	require.Error(t, err)
	assert.False(t, config.Exists(dir))
}

func TestModsEnable_NoArgs(t *testing.T) {
	dir := libraryFolder(t)

	_, err := runEfl(t, dir, "", "mods", "enable")

	require.Error(t, err)
}

func TestModsDisable_StaleEntry(t *testing.T) {
	// Given: an enabled entry whose folder was deleted
	dir := libraryFolder(t)
	cfg := config.NewConfig()
	cfg.Mods.Enabled = []string{"skins/Gone"}
	require.NoError(t, cfg.Save(dir))

	// When: disabling it
	_, err := runEfl(t, dir, "", "mods", "disable", "skins/Gone")

	// Then: it is removed
	require.NoError(t, err)
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Mods.Enabled)
}

func TestModsInfo(t *testing.T) {
	// Given: a mod with a broken manifest
	dir := libraryFolder(t)

	// When: showing its info as JSON
	out, err := runEfl(t, dir, "", "mods", "info", "configs/Broken", "--json")

	// Then: the manifest error is reported
	require.NoError(t, err)
	var view modView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "configs/Broken", view.RelPath)
	assert.NotEmpty(t, view.Errors)
}

func TestModsPick_NotInteractive(t *testing.T) {
	// Given: stdin and stdout that are not terminals
	dir := libraryFolder(t)

	// When: starting the picker
	_, err := runEfl(t, dir, "", "mods", "pick")

	// Then: it refuses with a hint
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestApplyPicked(t *testing.T) {
	// Given: one enabled mod
	dir := libraryFolder(t)
	cfg := config.NewConfig()
	cfg.Mods.Enabled = []string{"skins/Hero"}
	mc := &modsContext{dir: dir, cfg: cfg, root: cfg.ModsRoot(dir)}

	// When: the picker disables it and enables another
	out := new(bytes.Buffer)
	err := applyPicked(mc, []ui.PickerItem{
		{RelPath: "skins/Hero", Enabled: false},
		{RelPath: "skins/Villain", Enabled: true},
	}, output.NewWithColor(out, false))

	// Then: the new selection is saved
	require.NoError(t, err)
	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"skins/Villain"}, loaded.Mods.Enabled)
	assert.Contains(t, out.String(), "2 change(s) saved")
}

func TestBuildCmd(t *testing.T) {
	// Given: two enabled mods and one stale entry
	dir := libraryFolder(t)
	cfg := config.NewConfig()
	cfg.Mods.Enabled = []string{"skins/Hero", "configs/Tweak", "skins/Gone"}
	require.NoError(t, cfg.Save(dir))

	// When: building the active pack
	out, err := runEfl(t, dir, "", "build")

	// Then: both mods are copied and the stale one is reported
	require.NoError(t, err)
	assert.Contains(t, out, "skins/Gone")
	assert.FileExists(t, filepath.Join(dir, "mods", "_active", "skins", "Hero", "Texture", "hero.dds"))
	assert.FileExists(t, filepath.Join(dir, "mods", "_active", "configs", "Tweak", "tweak.cfg"))
}
