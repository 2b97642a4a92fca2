package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endfield-mods/efl/internal/mods"
)

func TestCopyConflicts(t *testing.T) {
	// Given: two config mods copying the same file and one distinct file
	f := newFixture(t)
	writeFiles(t, f.modsRoot, map[string]string{
		"configs/A/settings/gfx.cfg": "a",
		"configs/B/settings/gfx.cfg": "b",
		"configs/B/other.cfg":        "b",
	})
	a := f.mod("configs/A", mods.TypeConfig)
	a.Copy = []string{"settings"}
	b := f.mod("configs/B", mods.TypeConfig)
	b.Copy = []string{`settings\gfx.cfg`, "other.cfg"}

	// When: checking copy conflicts
	got := CopyConflicts([]mods.Mod{a, b})

	// Then: only the shared file is reported
	require.Len(t, got, 1)
	assert.Equal(t, ConflictCopy, got[0].Kind)
	assert.Equal(t, "settings/gfx.cfg", got[0].Path)
	assert.Equal(t, []string{"configs/A", "configs/B"}, got[0].Mods)
}

func TestAssetConflicts(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.modsRoot, map[string]string{
		"assets/A/Endfield_Data/voice.bank": "a",
		"assets/B/Endfield_Data/voice.bank": "b",
		"assets/B/Endfield_Data/music.bank": "b",
	})

	got := AssetConflicts([]mods.Mod{
		f.mod("assets/A", mods.TypeAsset),
		f.mod("assets/B", mods.TypeAsset),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Endfield_Data/voice.bank", got[0].Path)
	assert.Equal(t, "Endfield_Data/voice.bank <- assets/A, assets/B", got[0].String())
}

func TestConflicts_SameModTwiceIsNotAConflict(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.modsRoot, map[string]string{"assets/A/Endfield_Data/x.bank": "a"})
	a := f.mod("assets/A", mods.TypeAsset)

	assert.Empty(t, Conflicts([]mods.Mod{a, a}))
}
