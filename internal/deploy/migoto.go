package deploy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/mods"
)

// MigotoModsDir is the 3DMigoto mod folder inside the game directory.
const MigotoModsDir = "Mods"

// DeployMigoto copies each enabled 3DMigoto mod to <game>/Mods/<folder name>,
// replacing any previous copy. Returns mods and files deployed.
func (d *Deployer) DeployMigoto(enabled []mods.Mod) (int, int, error) {
	out := filepath.Join(d.gameRoot, MigotoModsDir)
	deployed, files := 0, 0

	for _, m := range enabled {
		if m.Type != mods.TypeMigoto {
			continue
		}
		name := filepath.Base(m.Path)
		dst := filepath.Join(out, name)
		if err := os.RemoveAll(dst); err != nil {
			return deployed, files, fmt.Errorf("failed to replace %s: %w", dst, err)
		}
		n, err := fsutil.CopyDir(m.Path, dst)
		if err != nil {
			return deployed, files, fmt.Errorf("failed to deploy %s: %w", m.RelPath, err)
		}
		deployed++
		files += n
		d.logger.Info("3dmigoto mod deployed",
			slog.String("mod", m.RelPath),
			slog.Int("files", n),
			slog.String("dest", dst))
	}
	return deployed, files, nil
}
