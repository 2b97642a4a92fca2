package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/mods"
)

// AssetReceiptName is the asset receipt file inside <data dir>/deploy.
const AssetReceiptName = "receipt.json"

// AssetReceipt maps each game-relative path written by asset deploys to its
// backup and the mods that wrote it.
type AssetReceipt struct {
	Files map[string]AssetEntry `json:"files"`
}

// AssetEntry is one deployed asset file. An empty Backup means the file did
// not exist before deploy and restore removes it.
type AssetEntry struct {
	Backup string   `json:"backup,omitempty"`
	Mods   []string `json:"mods"`
}

// AssetReceiptPath returns the asset receipt file.
func (d *Deployer) AssetReceiptPath() string {
	return filepath.Join(d.deployDir(), AssetReceiptName)
}

func (d *Deployer) deployDir() string {
	return filepath.Join(d.dataDir, "deploy")
}

// LoadAssetReceipt reads the asset receipt. A missing or unreadable receipt is empty.
func (d *Deployer) LoadAssetReceipt() *AssetReceipt {
	r := &AssetReceipt{Files: map[string]AssetEntry{}}
	data, err := os.ReadFile(d.AssetReceiptPath())
	if err != nil {
		return r
	}
	if err := json.Unmarshal(trimBOM(data), r); err != nil || r.Files == nil {
		d.logger.Warn("ignoring unreadable asset receipt", slog.String("path", d.AssetReceiptPath()))
		return &AssetReceipt{Files: map[string]AssetEntry{}}
	}
	return r
}

func (d *Deployer) saveAssetReceipt(r *AssetReceipt) error {
	return writeJSON(d.AssetReceiptPath(), r)
}

// assetFiles lists a mod's files that live under an asset root, as
// game-relative slash paths, sorted.
func assetFiles(modDir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(modDir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		rel, _ := filepath.Rel(modDir, path)
		rel = filepath.ToSlash(rel)
		first, _, found := strings.Cut(rel, "/")
		if found && mods.IsAssetRoot(first) {
			out = append(out, rel)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// DeployAssets copies asset files of every enabled mod into the game
// directory. Each original is backed up once before its first overwrite.
// Returns mods and files deployed.
func (d *Deployer) DeployAssets(enabled []mods.Mod) (int, int, error) {
	receipt := d.LoadAssetReceipt()
	deployedMods, copied := 0, 0

	for _, m := range enabled {
		files, err := assetFiles(m.Path)
		if err != nil {
			return deployedMods, copied, fmt.Errorf("failed to list %s: %w", m.RelPath, err)
		}
		if len(files) == 0 {
			continue
		}

		for _, rel := range files {
			dst, err := fsutil.SafeJoin(d.gameRoot, rel)
			if err != nil {
				continue
			}
			// a tracked path already holds efl's copy; only untracked
			// paths can hold a game original
			entry, tracked := receipt.Files[rel]
			if !tracked {
				backup, err := d.backupOnce(rel)
				if err != nil {
					// keep what was written so far restorable
					_ = d.saveAssetReceipt(receipt)
					return deployedMods, copied, err
				}
				entry.Backup = backup
			}
			if !contains(entry.Mods, m.RelPath) {
				entry.Mods = append(entry.Mods, m.RelPath)
			}
			receipt.Files[rel] = entry

			if err := fsutil.CopyFile(filepath.Join(m.Path, filepath.FromSlash(rel)), dst); err != nil {
				_ = d.saveAssetReceipt(receipt)
				return deployedMods, copied, fmt.Errorf("failed to deploy %s: %w", rel, err)
			}
			copied++
		}
		deployedMods++
		d.logger.Info("asset mod applied", slog.String("mod", m.RelPath), slog.Int("files", len(files)))
	}

	if err := d.saveAssetReceipt(receipt); err != nil {
		return deployedMods, copied, err
	}
	return deployedMods, copied, nil
}

// backupOnce copies the game's original file into the backup tree unless a
// backup already exists. Returns the backup path relative to the deploy
// directory, or "" when there is no original.
func (d *Deployer) backupOnce(rel string) (string, error) {
	src := filepath.Join(d.gameRoot, filepath.FromSlash(rel))
	if !fsutil.Exists(src) {
		return "", nil
	}
	backupRel := "backup/" + rel
	backupAbs := filepath.Join(d.deployDir(), filepath.FromSlash(backupRel))
	if fsutil.Exists(backupAbs) {
		return backupRel, nil
	}
	if _, err := fsutil.Copy(src, backupAbs); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", rel, err)
	}
	d.logger.Debug("original backed up", slog.String("path", rel))
	return backupRel, nil
}

// RestoreAssets puts back every original recorded in the receipt and
// removes files that deploy created, then clears the receipt.
// Returns the number of paths restored or removed.
func (d *Deployer) RestoreAssets() (int, error) {
	receipt := d.LoadAssetReceipt()
	if len(receipt.Files) == 0 {
		return 0, nil
	}

	paths := make([]string, 0, len(receipt.Files))
	for p := range receipt.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	restored := 0
	var errs []error
	for _, rel := range paths {
		entry := receipt.Files[rel]
		dst, err := fsutil.SafeJoin(d.gameRoot, strings.TrimLeft(rel, "/"))
		if err != nil {
			continue
		}

		if entry.Backup != "" {
			backupAbs, err := fsutil.SafeJoin(d.deployDir(), entry.Backup)
			if err != nil || !fsutil.Exists(backupAbs) {
				d.logger.Warn("missing backup, skipped", slog.String("path", rel))
				continue
			}
			if fsutil.IsDir(backupAbs) {
				_ = os.RemoveAll(dst)
			}
			if _, err := fsutil.Copy(backupAbs, dst); err != nil {
				errs = append(errs, fmt.Errorf("restore %s: %w", rel, err))
				continue
			}
			restored++
			continue
		}

		if fsutil.Exists(dst) {
			if err := os.RemoveAll(dst); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", rel, err))
				continue
			}
			fsutil.RemoveEmptyDirs(filepath.Dir(dst), d.gameRoot)
			restored++
		}
	}

	if err := d.saveAssetReceipt(&AssetReceipt{Files: map[string]AssetEntry{}}); err != nil {
		errs = append(errs, err)
	}
	return restored, errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
