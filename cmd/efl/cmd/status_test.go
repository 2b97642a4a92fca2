package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_JSON(t *testing.T) {
	// Given: a library with one enabled broken mod and a built pack
	dir := libraryFolder(t)
	enable(t, dir, "skins/Hero", "configs/Broken")
	_, err := runEfl(t, dir, "", "build")
	require.NoError(t, err)

	// When: reading the status
	out, err := runEfl(t, dir, "", "status", "--json")

	// Then: injector, library and pack state are reported
	require.NoError(t, err)
	var info StatusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.Marker)
	assert.True(t, info.Library)
	assert.Equal(t, "d3dx.ini", info.MarkerFile)
	assert.Equal(t, 5, info.Mods)
	assert.Equal(t, 2, info.Enabled)
	assert.Equal(t, 1, info.Broken)
	assert.Positive(t, info.ActiveFiles)
	assert.Empty(t, info.ModSafeDir)
	assert.False(t, info.GameRunning)
}

func TestStatus_Text(t *testing.T) {
	// Given: a folder without the injector marker
	dir := t.TempDir()

	// When: printing the status
	out, err := runEfl(t, dir, "", "status")

	// Then: the missing marker is called out
	require.NoError(t, err)
	assert.Contains(t, out, "d3dx.ini missing")
	assert.Contains(t, out, "0 found, 0 enabled")
}
