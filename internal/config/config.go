// Package config loads and saves efl settings.
//
// Settings live in efl.yaml next to the launcher. The file is optional: with
// no file every value below is the default and the launcher behaves like the
// plain "check d3dx.ini, start Endfield.exe" flow. Precedence, lowest first:
// defaults, efl.yaml, EFL_* environment variables, command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file name looked up in the launcher directory.
	FileName = "efl.yaml"
	// AltFileName is accepted when FileName is absent.
	AltFileName = "efl.yml"
	// DataDirName is the per-game-directory folder holding efl state.
	DataDirName = ".efl"
)

// Renderer values accepted in game.renderer.
const (
	RendererAuto = "auto"
	RendererDX11 = "dx11"
	RendererDX12 = "dx12"
)

// Config is the complete efl configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Game     GameConfig     `yaml:"game" json:"game"`
	Injector InjectorConfig `yaml:"injector" json:"injector"`
	Launch   LaunchConfig   `yaml:"launch" json:"launch"`
	Mods     ModsConfig     `yaml:"mods" json:"mods"`
	Deploy   DeployConfig   `yaml:"deploy" json:"deploy"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// GameConfig describes the game executable.
type GameConfig struct {
	// Executable is a file name relative to the launcher directory, or an absolute path.
	Executable string `yaml:"executable" json:"executable"`
	// Args are appended after the renderer arguments.
	Args []string `yaml:"args" json:"args"`
	// Renderer is auto, dx11 or dx12.
	Renderer string `yaml:"renderer" json:"renderer"`
}

// InjectorConfig names the files the graphics injector needs next to the game.
type InjectorConfig struct {
	// Marker must exist or the launch is refused (d3dx.ini).
	Marker string `yaml:"marker" json:"marker"`
	// Library is the proxy DLL; missing only warns (dxgi.dll).
	Library string `yaml:"library" json:"library"`
	// Alternates are accepted substitutes for Library (d3d11.dll).
	Alternates []string `yaml:"alternates" json:"alternates"`
}

// LaunchConfig tunes the launch flow.
type LaunchConfig struct {
	PauseOnError       bool `yaml:"pause_on_error" json:"pause_on_error"`
	DeployBeforeLaunch bool `yaml:"deploy_before_launch" json:"deploy_before_launch"`
	RecordHistory      bool `yaml:"record_history" json:"record_history"`
}

// ModsConfig holds the mod library location and selection.
type ModsConfig struct {
	Root    string   `yaml:"root" json:"root"`
	Enabled []string `yaml:"enabled" json:"enabled"`
	Preset  string   `yaml:"preset" json:"preset"`
}

// DeployConfig configures where mods are deployed inside the game directory.
type DeployConfig struct {
	FolderName string `yaml:"folder_name" json:"folder_name"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Game: GameConfig{
			Executable: "Endfield.exe",
			Args:       []string{},
			Renderer:   RendererAuto,
		},
		Injector: InjectorConfig{
			Marker:     "d3dx.ini",
			Library:    "dxgi.dll",
			Alternates: []string{"d3d11.dll"},
		},
		Launch: LaunchConfig{
			PauseOnError:       true,
			DeployBeforeLaunch: false,
			RecordHistory:      true,
		},
		Mods: ModsConfig{
			Root:    "mods",
			Enabled: []string{},
			Preset:  "A",
		},
		Deploy: DeployConfig{
			FolderName: "EndfieldModSafe",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 5,
			MaxFiles:  3,
		},
	}
}

// Load reads the configuration for the launcher directory dir.
// A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path, ok := findFile(dir); ok {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Path returns the config file path for dir: the existing file if any, else efl.yaml.
func Path(dir string) string {
	if path, ok := findFile(dir); ok {
		return path
	}
	return filepath.Join(dir, FileName)
}

// Exists reports whether dir has a config file.
func Exists(dir string) bool {
	_, ok := findFile(dir)
	return ok
}

// DataDir returns the .efl state directory for dir.
func DataDir(dir string) string {
	return filepath.Join(dir, DataDirName)
}

func findFile(dir string) (string, bool) {
	for _, name := range []string{FileName, AltFileName} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// loadYAML decodes over the defaults so keys absent from the file keep their defaults.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	data = trimBOM(data)
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies EFL_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EFL_GAME_EXE"); v != "" {
		c.Game.Executable = v
	}
	if v := os.Getenv("EFL_RENDERER"); v != "" {
		c.Game.Renderer = v
	}
	if v := os.Getenv("EFL_MODS_ROOT"); v != "" {
		c.Mods.Root = v
	}
	if v := os.Getenv("EFL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EFL_NO_PAUSE"); v != "" {
		if b, ok := parseBool(v); ok {
			c.Launch.PauseOnError = !b
		}
	}
}

func (c *Config) normalize() {
	c.Game.Renderer = strings.ToLower(strings.TrimSpace(c.Game.Renderer))
	if c.Game.Renderer == "" {
		c.Game.Renderer = RendererAuto
	}
	c.Mods.Preset = NormalizePreset(c.Mods.Preset)
	c.Mods.Enabled = normalizeList(c.Mods.Enabled)
	if c.Game.Args == nil {
		c.Game.Args = []string{}
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Game.Renderer {
	case RendererAuto, RendererDX11, RendererDX12:
	default:
		return fmt.Errorf("game.renderer must be 'auto', 'dx11' or 'dx12', got %q", c.Game.Renderer)
	}

	if strings.TrimSpace(c.Game.Executable) == "" {
		return fmt.Errorf("game.executable must not be empty")
	}
	if err := plainName("injector.marker", c.Injector.Marker); err != nil {
		return err
	}
	if err := plainName("injector.library", c.Injector.Library); err != nil {
		return err
	}
	for _, alt := range c.Injector.Alternates {
		if err := plainName("injector.alternates", alt); err != nil {
			return err
		}
	}
	if err := plainName("deploy.folder_name", c.Deploy.FolderName); err != nil {
		return err
	}
	if strings.TrimSpace(c.Mods.Root) == "" {
		return fmt.Errorf("mods.root must not be empty")
	}
	if !ValidPreset(c.Mods.Preset) {
		return fmt.Errorf("mods.preset must be one of %s, got %q", strings.Join(PresetNames, ", "), c.Mods.Preset)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn' or 'error', got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging.max_size_mb and logging.max_files must be non-negative")
	}
	return nil
}

// plainName rejects empty values and anything that is not a bare file name.
func plainName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if strings.ContainsAny(v, `/\`) || v == "." || v == ".." {
		return fmt.Errorf("%s must be a file name, got %q", field, v)
	}
	return nil
}

// Save writes the configuration to dir's config file.
func (c *Config) Save(dir string) error {
	return c.WriteYAML(Path(dir))
}

// WriteYAML writes the configuration to path, replacing it atomically.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeFileAtomic(path, data)
}

// GamePath returns the absolute game executable path for dir.
func (c *Config) GamePath(dir string) string {
	if filepath.IsAbs(c.Game.Executable) {
		return c.Game.Executable
	}
	return filepath.Join(dir, c.Game.Executable)
}

// ModsRoot returns the absolute mods root for dir.
func (c *Config) ModsRoot(dir string) string {
	if filepath.IsAbs(c.Mods.Root) {
		return c.Mods.Root
	}
	return filepath.Join(dir, c.Mods.Root)
}

// RendererArgs returns the command-line switches for the configured renderer.
func (c *Config) RendererArgs() []string {
	return RendererArgs(c.Game.Renderer)
}

// LaunchArgs returns renderer switches followed by game.args.
func (c *Config) LaunchArgs() []string {
	args := append([]string{}, c.RendererArgs()...)
	return append(args, c.Game.Args...)
}

// RendererArgs maps a renderer name to the game's command-line switches.
func RendererArgs(renderer string) []string {
	switch strings.ToLower(renderer) {
	case RendererDX11:
		return []string{"-force-d3d11", "-force-feature-level-11-0"}
	case RendererDX12:
		return []string{"-force-d3d12"}
	default:
		return nil
	}
}

// IsEnabled reports whether the mod at rel is enabled.
func (c *Config) IsEnabled(rel string) bool {
	rel = NormalizeRelPath(rel)
	for _, e := range c.Mods.Enabled {
		if e == rel {
			return true
		}
	}
	return false
}

// SetEnabled enables or disables the mod at rel, keeping enable order.
// Returns true if the list changed.
func (c *Config) SetEnabled(rel string, enabled bool) bool {
	rel = NormalizeRelPath(rel)
	if rel == "" {
		return false
	}
	if enabled {
		if c.IsEnabled(rel) {
			return false
		}
		c.Mods.Enabled = append(c.Mods.Enabled, rel)
		return true
	}

	out := c.Mods.Enabled[:0]
	changed := false
	for _, e := range c.Mods.Enabled {
		if e == rel {
			changed = true
			continue
		}
		out = append(out, e)
	}
	c.Mods.Enabled = out
	return changed
}

// NormalizeRelPath converts a mod path to forward slashes without surrounding slashes.
func NormalizeRelPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	return strings.Trim(p, "/")
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p = NormalizeRelPath(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
