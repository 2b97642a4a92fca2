package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LegacyConfigPath is where the old Python mod loader kept its settings, relative to its project root.
var LegacyConfigPath = filepath.Join("launcher", "data", "config.json")

type legacyConfig struct {
	EnabledMods   []any  `json:"enabled_mods"`
	GameExe       any    `json:"game_exe"`
	CurrentPreset string `json:"current_preset"`
}

// ImportLegacy merges the old mod loader's config.json at path into c.
// Entries of enabled_mods are stringified and normalized; a non-list value is a parse error.
func (c *Config) ImportLegacy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read legacy config: %w", err)
	}

	var legacy legacyConfig
	if err := json.Unmarshal(trimBOM(data), &legacy); err != nil {
		return fmt.Errorf("failed to parse legacy config %s: %w", path, err)
	}

	enabled := make([]string, 0, len(legacy.EnabledMods))
	for _, e := range legacy.EnabledMods {
		enabled = append(enabled, fmt.Sprint(e))
	}
	c.Mods.Enabled = normalizeList(enabled)

	if exe, ok := legacy.GameExe.(string); ok && exe != "" {
		c.Game.Executable = exe
	}
	c.Mods.Preset = NormalizePreset(legacy.CurrentPreset)
	return nil
}
