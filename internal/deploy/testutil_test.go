package deploy

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/endfield-mods/efl/internal/mods"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type fixture struct {
	game     string
	modsRoot string
	dataDir  string
	d        *Deployer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	game := t.TempDir()
	f := &fixture{
		game:     game,
		modsRoot: filepath.Join(game, "mods"),
		dataDir:  filepath.Join(game, ".efl"),
	}
	f.d = New(Options{
		GameRoot: f.game,
		ModsRoot: f.modsRoot,
		DataDir:  f.dataDir,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	f.d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return f
}

func (f *fixture) mod(rel string, typ mods.Type) mods.Mod {
	return mods.Mod{
		Name:    filepath.Base(rel),
		RelPath: rel,
		Path:    filepath.Join(f.modsRoot, filepath.FromSlash(rel)),
		Type:    typ,
	}
}
