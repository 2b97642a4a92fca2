package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/fsutil"
)

// ModSafe backends.
const (
	BackendVFS             = "vfs"
	BackendStreamingAssets = "streamingassets"
)

// ModSafeReceiptName is written into the ModSafe folder after each deploy.
const ModSafeReceiptName = "receipt.json"

// ModSafePaths locates the ModSafe folder for a game directory. The
// Persistent/VFS mount is preferred; StreamingAssets is the fallback.
func ModSafePaths(gameRoot, folderName string) (backend, safeRoot, activeDir string) {
	data := filepath.Join(gameRoot, "Endfield_Data")
	base := filepath.Join(data, "Persistent", "VFS")
	backend = BackendVFS
	if !fsutil.IsDir(base) {
		base = filepath.Join(data, "StreamingAssets")
		backend = BackendStreamingAssets
	}
	safeRoot = filepath.Join(base, folderName)
	return backend, safeRoot, filepath.Join(safeRoot, "active")
}

// ModSafeReceipt records a ModSafe deploy.
type ModSafeReceipt struct {
	FolderName   string    `json:"folder_name"`
	Backend      string    `json:"backend"`
	SafeRoot     string    `json:"safe_root"`
	DestActive   string    `json:"dest_active"`
	SourceActive string    `json:"source_active"`
	EnabledMods  []string  `json:"enabled_mods"`
	FileCount    int       `json:"file_count"`
	DeployedAt   time.Time `json:"deployed_at"`
}

// DeployModSafe replaces the ModSafe active folder with a copy of the active pack.
func (d *Deployer) DeployModSafe(activeRoot string, enabled []string) (*ModSafeReceipt, error) {
	if !fsutil.IsDir(activeRoot) {
		return nil, eflerrors.New(eflerrors.ErrCodeActivePack, "active pack not found: "+activeRoot, nil).
			WithSuggestion("Run 'efl build' first")
	}

	backend, safeRoot, dest := ModSafePaths(d.gameRoot, d.folderName)
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", dest, err)
	}
	n, err := fsutil.CopyDir(activeRoot, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to copy active pack: %w", err)
	}

	receipt := &ModSafeReceipt{
		FolderName:   d.folderName,
		Backend:      backend,
		SafeRoot:     safeRoot,
		DestActive:   dest,
		SourceActive: activeRoot,
		EnabledMods:  normalizeAll(enabled),
		FileCount:    n,
		DeployedAt:   d.now().UTC(),
	}
	if err := writeJSON(filepath.Join(safeRoot, ModSafeReceiptName), receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// RestoreModSafe removes the ModSafe active folder, and the ModSafe folder
// itself if nothing else is left in it. Returns true if active was removed.
func (d *Deployer) RestoreModSafe() (bool, error) {
	_, safeRoot, dest := ModSafePaths(d.gameRoot, d.folderName)
	removed := false
	if fsutil.Exists(dest) {
		if err := os.RemoveAll(dest); err != nil {
			return false, fmt.Errorf("failed to remove %s: %w", dest, err)
		}
		removed = true
	}
	// only succeeds when empty
	_ = os.Remove(safeRoot)
	return removed, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
