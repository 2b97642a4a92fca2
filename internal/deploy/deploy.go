// Package deploy copies enabled mods into the game directory and undoes it.
//
// Three targets are written on deploy:
//   - ModSafe: the active pack mounted under Endfield_Data (VFS or StreamingAssets)
//   - 3DMigoto: migoto mods copied to <game>/Mods/<name>
//   - Assets: files under asset roots overwriting game files, with backups
//
// Deploy and restore hold an exclusive file lock in the data directory.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/mods"
	"github.com/endfield-mods/efl/internal/pack"
)

// DefaultFolderName is the default ModSafe folder name.
const DefaultFolderName = "EndfieldModSafe"

// Options configures a Deployer.
type Options struct {
	// GameRoot is the directory containing the game executable.
	GameRoot string
	// ModsRoot is the mod library.
	ModsRoot string
	// DataDir holds the lock, asset receipt and backups (.efl).
	DataDir string
	// FolderName is the ModSafe folder name.
	FolderName string
	// LockWait is how long to wait for another process's deploy lock.
	// Zero fails at once.
	LockWait time.Duration
	Logger   *slog.Logger
}

// Deployer deploys and restores mods for one game directory.
type Deployer struct {
	gameRoot   string
	modsRoot   string
	dataDir    string
	folderName string
	lockWait   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Deployer.
func New(opts Options) *Deployer {
	d := &Deployer{
		gameRoot:   opts.GameRoot,
		modsRoot:   opts.ModsRoot,
		dataDir:    opts.DataDir,
		folderName: opts.FolderName,
		lockWait:   opts.LockWait,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if d.folderName == "" {
		d.folderName = DefaultFolderName
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Result summarizes a full deploy.
type Result struct {
	Backend     string   `json:"backend"`
	ActiveDir   string   `json:"active_dir"`
	SafeFiles   int      `json:"safe_files"`
	MigotoMods  int      `json:"migoto_mods"`
	MigotoFiles int      `json:"migoto_files"`
	AssetMods   int      `json:"asset_mods"`
	AssetFiles  int      `json:"asset_files"`
	Missing     []string `json:"missing,omitempty"`
}

// RestoreResult summarizes a restore.
type RestoreResult struct {
	ModSafeRemoved bool `json:"modsafe_removed"`
	AssetsRestored int  `json:"assets_restored"`
}

// Check returns an error when the enabled selection cannot be deployed:
// conflicting destinations or mods with errors.
func Check(enabled []mods.Mod) error {
	if conflicts := Conflicts(enabled); len(conflicts) > 0 {
		lines := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			lines = append(lines, c.String())
		}
		return eflerrors.New(eflerrors.ErrCodeModConflict,
			fmt.Sprintf("%d conflicting path(s): %s", len(conflicts), strings.Join(lines, "; ")), nil).
			WithSuggestion("Disable one of the mods writing each path, then deploy again")
	}

	var broken []string
	for _, m := range enabled {
		if m.Broken() {
			broken = append(broken, m.RelPath)
		}
	}
	if len(broken) > 0 {
		return eflerrors.New(eflerrors.ErrCodeModBroken,
			"enabled mods have errors: "+strings.Join(broken, ", "), nil).
			WithSuggestion("Run 'efl mods info <mod>' to see the errors")
	}
	return nil
}

// Deploy rebuilds the active pack and deploys it to every target.
// all is the full scan result; enabled is the ordered enabled list.
func (d *Deployer) Deploy(ctx context.Context, all []mods.Mod, enabled []string) (*Result, error) {
	selected, missing := mods.Selected(all, enabled)
	if err := Check(selected); err != nil {
		return nil, err
	}

	unlock, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	activeRoot, _, err := pack.NewBuilder(pack.WithLogger(d.logger)).Build(d.modsRoot, enabled)
	if err != nil {
		return nil, err
	}

	receipt, err := d.DeployModSafe(activeRoot, enabled)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Backend:   receipt.Backend,
		ActiveDir: receipt.DestActive,
		SafeFiles: receipt.FileCount,
		Missing:   missing,
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.MigotoMods, res.MigotoFiles, err = d.DeployMigoto(selected); err != nil {
		return res, err
	}
	if res.AssetMods, res.AssetFiles, err = d.DeployAssets(selected); err != nil {
		return res, err
	}

	d.logger.Info("deploy complete",
		slog.String("backend", res.Backend),
		slog.Int("safe_files", res.SafeFiles),
		slog.Int("migoto_files", res.MigotoFiles),
		slog.Int("asset_files", res.AssetFiles))
	return res, nil
}

// Restore removes the ModSafe folder and restores asset originals.
func (d *Deployer) Restore(ctx context.Context) (*RestoreResult, error) {
	unlock, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res := &RestoreResult{}
	if res.ModSafeRemoved, err = d.RestoreModSafe(); err != nil {
		return res, err
	}
	res.AssetsRestored, err = d.RestoreAssets()
	d.logger.Info("restore complete",
		slog.Bool("modsafe_removed", res.ModSafeRemoved),
		slog.Int("assets_restored", res.AssetsRestored))
	return res, err
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(strings.ReplaceAll(s, `\`, "/")), "/")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
