package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePreset(t *testing.T) {
	assert.Equal(t, "B", NormalizePreset(" b "))
	assert.Equal(t, "A", NormalizePreset("z"))
	assert.Equal(t, "A", NormalizePreset(""))
	assert.True(t, ValidPreset("C"))
	assert.False(t, ValidPreset("c"))
}

func TestSaveAndLoadPreset(t *testing.T) {
	// Given: a config with two enabled mods saved as preset B
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.SetEnabled("skins/A", true)
	cfg.SetEnabled("configs/B", true)
	require.NoError(t, cfg.SavePreset(dir, "b"))
	assert.Equal(t, "B", cfg.Mods.Preset)
	assert.FileExists(t, PresetPath(dir, "B"))

	// When: the selection changes and preset B is loaded back
	cfg.SetEnabled("skins/A", false)
	found, err := cfg.LoadPreset(dir, "B")

	// Then: the saved selection is restored and persisted
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"skins/A", "configs/B"}, cfg.Mods.Enabled)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "B", reloaded.Mods.Preset)
	assert.Equal(t, cfg.Mods.Enabled, reloaded.Mods.Enabled)
}

func TestLoadPreset_MissingClearsSelection(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.SetEnabled("skins/A", true)

	found, err := cfg.LoadPreset(dir, "C")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, cfg.Mods.Enabled)
	assert.Equal(t, "C", cfg.Mods.Preset)
}

func TestLoadPreset_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := PresetPath(dir, "A")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("enabled_mods: {"), 0o644))

	_, err := NewConfig().LoadPreset(dir, "A")

	assert.Error(t, err)
}

func TestListPresets(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.SetEnabled("skins/A", true)
	require.NoError(t, cfg.SavePreset(dir, "C"))

	infos, err := cfg.ListPresets(dir)

	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.False(t, infos[0].Exists)
	assert.True(t, infos[2].Exists)
	assert.Equal(t, 1, infos[2].Count)
	assert.True(t, infos[2].Current)
}
