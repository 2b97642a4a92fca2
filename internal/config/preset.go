package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PresetNames are the preset slots.
var PresetNames = []string{"A", "B", "C"}

// Preset is a saved list of enabled mods.
type Preset struct {
	EnabledMods []string `yaml:"enabled_mods"`
}

// PresetInfo describes a preset slot for listing.
type PresetInfo struct {
	Name    string
	Exists  bool
	Count   int
	Current bool
}

// ValidPreset reports whether name is a preset slot (case-sensitive, upper case).
func ValidPreset(name string) bool {
	for _, n := range PresetNames {
		if n == name {
			return true
		}
	}
	return false
}

// NormalizePreset upper-cases name and maps anything unknown to "A".
func NormalizePreset(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !ValidPreset(name) {
		return PresetNames[0]
	}
	return name
}

// PresetPath returns the file backing preset name in dir.
func PresetPath(dir, name string) string {
	return filepath.Join(DataDir(dir), "presets", "preset_"+NormalizePreset(name)+".yaml")
}

// SavePreset stores the current enabled list as preset name and makes it current.
func (c *Config) SavePreset(dir, name string) error {
	name = NormalizePreset(name)
	data, err := yaml.Marshal(Preset{EnabledMods: normalizeList(c.Mods.Enabled)})
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := writeFileAtomic(PresetPath(dir, name), data); err != nil {
		return err
	}
	c.Mods.Preset = name
	return c.Save(dir)
}

// LoadPreset replaces the enabled list with preset name and makes it current.
// A preset that was never saved loads as an empty list; found reports which case applied.
func (c *Config) LoadPreset(dir, name string) (found bool, err error) {
	name = NormalizePreset(name)
	p, found, err := readPreset(PresetPath(dir, name))
	if err != nil {
		return false, err
	}
	c.Mods.Enabled = normalizeList(p.EnabledMods)
	c.Mods.Preset = name
	return found, c.Save(dir)
}

// ListPresets describes every preset slot in dir.
func (c *Config) ListPresets(dir string) ([]PresetInfo, error) {
	infos := make([]PresetInfo, 0, len(PresetNames))
	for _, name := range PresetNames {
		p, found, err := readPreset(PresetPath(dir, name))
		if err != nil {
			return nil, err
		}
		infos = append(infos, PresetInfo{
			Name:    name,
			Exists:  found,
			Count:   len(p.EnabledMods),
			Current: c.Mods.Preset == name,
		})
	}
	return infos, nil
}

func readPreset(path string) (Preset, bool, error) {
	var p Preset
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("failed to read preset: %w", err)
	}
	if err := yaml.Unmarshal(trimBOM(data), &p); err != nil {
		return p, false, fmt.Errorf("failed to parse preset %s: %w", filepath.Base(path), err)
	}
	return p, true, nil
}
