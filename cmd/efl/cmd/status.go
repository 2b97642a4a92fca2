package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	"github.com/endfield-mods/efl/internal/deploy"
	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/output"
	"github.com/endfield-mods/efl/internal/pack"
	"github.com/endfield-mods/efl/internal/preflight"
	"github.com/endfield-mods/efl/internal/process"
)

// StatusInfo is the output of 'efl status --json'.
type StatusInfo struct {
	Dir          string `json:"dir"`
	ConfigFile   string `json:"config_file,omitempty"`
	Executable   string `json:"executable"`
	MarkerFile   string `json:"marker_file"`
	Marker       bool   `json:"marker_present"`
	LibraryFile  string `json:"library_file"`
	Library      bool   `json:"library_present"`
	ModsRoot     string `json:"mods_root"`
	Mods         int    `json:"mods"`
	Enabled      int    `json:"enabled"`
	Broken       int    `json:"broken"`
	Preset       string `json:"preset"`
	ActiveFiles  int    `json:"active_files"`
	ModSafeDir   string `json:"modsafe_dir,omitempty"`
	ModSafeFiles int    `json:"modsafe_files"`
	AssetFiles   int    `json:"asset_files"`
	GameRunning  bool   `json:"game_running"`
	GamePID      int    `json:"game_pid,omitempty"`
	HistoryCount int    `json:"history_count"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show injector, library and deploy state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}
			info := collectStatus(cmd, mc)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printStatus(output.New(cmd.OutOrStdout()), info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func collectStatus(cmd *cobra.Command, mc *modsContext) StatusInfo {
	cfg := mc.cfg
	root := gameRoot(mc.dir, cfg)
	checker := preflight.New(
		preflight.WithInjector(cfg.Injector.Marker, cfg.Injector.Library),
		preflight.WithAlternates(cfg.Injector.Alternates...),
	)

	info := StatusInfo{
		Dir:         mc.dir,
		Executable:  cfg.GamePath(mc.dir),
		MarkerFile:  checker.Marker(),
		LibraryFile: checker.Library(),
		Marker:      checker.CheckMarker(mc.dir).Status == preflight.StatusPass,
		Library:     checker.CheckProxyLibrary(mc.dir).Status == preflight.StatusPass,
		ModsRoot:    mc.root,
		Mods:        len(mc.all),
		Enabled:     len(cfg.Mods.Enabled),
		Preset:      cfg.Mods.Preset,
	}
	if config.Exists(mc.dir) {
		info.ConfigFile = config.Path(mc.dir)
	}
	for _, m := range mc.all {
		if m.Broken() && cfg.IsEnabled(m.RelPath) {
			info.Broken++
		}
	}

	if active := pack.ActiveRoot(mc.root); fsutil.IsDir(active) {
		info.ActiveFiles = fsutil.CountFiles(active)
	}
	if _, _, activeDir := deploy.ModSafePaths(root, cfg.Deploy.FolderName); fsutil.IsDir(activeDir) {
		info.ModSafeDir = activeDir
		info.ModSafeFiles = fsutil.CountFiles(activeDir)
	}
	if r := newDeployer(mc.dir, cfg).LoadAssetReceipt(); r != nil {
		info.AssetFiles = len(r.Files)
	}

	pf := process.NewPIDFile(filepath.Join(config.DataDir(mc.dir), process.PIDFileName))
	info.GamePID, info.GameRunning = pf.Running()

	if fsutil.Exists(history.Path(config.DataDir(mc.dir))) {
		if store, err := history.Open(config.DataDir(mc.dir)); err == nil {
			info.HistoryCount, _ = store.Count(cmd.Context())
			_ = store.Close()
		}
	}
	return info
}

func printStatus(out *output.Writer, info StatusInfo) {
	out.Header("efl status")
	out.Newline()

	out.Statusf("📁", "Game dir:   %s", info.Dir)
	if info.ConfigFile != "" {
		out.Statusf("⚙️", "Config:     %s", info.ConfigFile)
	} else {
		out.Status("⚙️", "Config:     defaults (no efl.yaml)")
	}
	out.Statusf("🎮", "Executable: %s", info.Executable)
	if info.Marker {
		out.Successf("%s present", info.MarkerFile)
	} else {
		out.Errorf("%s missing: launch will be refused", info.MarkerFile)
	}
	if info.Library {
		out.Successf("%s present", info.LibraryFile)
	} else {
		out.Warningf("%s missing (an alternate may be in use)", info.LibraryFile)
	}
	out.Newline()

	out.Statusf("📦", "Mods:       %d found, %d enabled (preset %s)", info.Mods, info.Enabled, info.Preset)
	if info.Broken > 0 {
		out.Warningf("%d enabled mod(s) have errors", info.Broken)
	}
	out.Statusf("🧩", "Active:     %d file(s)", info.ActiveFiles)
	if info.ModSafeDir != "" {
		out.Statusf("🚚", "Deployed:   %d file(s) in %s", info.ModSafeFiles, info.ModSafeDir)
	} else {
		out.Status("🚚", "Deployed:   nothing")
	}
	if info.AssetFiles > 0 {
		out.Statusf("🗂️", "Assets:     %d game file(s) replaced", info.AssetFiles)
	}
	out.Newline()

	if info.GameRunning {
		out.Statusf("▶️", "Game running (pid %d)", info.GamePID)
	}
	out.Dim(fmt.Sprintf("%d history entr(ies)", info.HistoryCount))
}
