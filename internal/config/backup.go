package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/endfield-mods/efl/internal/fsutil"
)

const (
	// MaxBackups is how many backups Backup keeps.
	MaxBackups   = 3
	BackupSuffix = ".bak"

	backupStamp = "20060102-150405.000"
)

// BackupDir is <dir>/.efl/backups.
func BackupDir(dir string) string {
	return filepath.Join(DataDir(dir), "backups")
}

// Backup copies the config file of dir to <stamp>_<name>.bak in BackupDir
// and prunes all but the newest MaxBackups. With no config file it does
// nothing and returns "".
func Backup(dir string) (string, error) {
	src, ok := findFile(dir)
	if !ok {
		return "", nil
	}

	name := time.Now().Format(backupStamp) + "_" + filepath.Base(src) + BackupSuffix
	dst := filepath.Join(BackupDir(dir), name)
	if err := fsutil.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to back up config: %w", err)
	}

	if backups, err := ListBackups(dir); err == nil && len(backups) > MaxBackups {
		for _, old := range backups[MaxBackups:] {
			_ = os.Remove(old)
		}
	}
	return dst, nil
}

// ListBackups returns the backups of dir, newest first.
func ListBackups(dir string) ([]string, error) {
	backups, err := filepath.Glob(filepath.Join(BackupDir(dir), "*_*"+BackupSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	// the stamp prefix sorts chronologically
	slices.Sort(backups)
	slices.Reverse(backups)
	return backups, nil
}

// Rollback replaces the config file of dir with the newest backup and
// removes that backup, so repeated calls step further back. It returns
// the backup that was restored.
func Rollback(dir string) (string, error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", os.ErrNotExist
	}

	latest := backups[0]
	target := filepath.Join(dir, backupSource(latest))
	if base := filepath.Base(target); base != FileName && base != AltFileName {
		target = Path(dir)
	}
	current, hadCurrent := findFile(dir)
	if err := fsutil.CopyFile(latest, target); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", filepath.Base(latest), err)
	}
	// efl.yaml shadows efl.yml, so drop whichever one was not restored
	if hadCurrent && current != target {
		_ = os.Remove(current)
	}
	_ = os.Remove(latest)
	return latest, nil
}

// backupSource returns the config file name a backup was taken from.
func backupSource(backup string) string {
	name := strings.TrimSuffix(filepath.Base(backup), BackupSuffix)
	_, src, _ := strings.Cut(name, "_")
	return src
}
