package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/process"
)

// fakeStarter records every spawn instead of starting a process.
type fakeStarter struct {
	mu    sync.Mutex
	specs []process.Spec
	pid   int
	err   error
}

func (f *fakeStarter) Start(_ context.Context, spec process.Spec) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)
	return f.pid, f.err
}

func (f *fakeStarter) calls() []process.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]process.Spec(nil), f.specs...)
}

// useStarter replaces the process starter for one test.
func useStarter(t *testing.T, s process.Starter) {
	t.Helper()
	old := newStarter
	newStarter = func() process.Starter { return s }
	t.Cleanup(func() { newStarter = old })
}

// runEfl executes the root command against dir and returns combined output.
func runEfl(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() {
		_ = stopLogging(nil, nil)
		slog.SetDefault(old)
		dirFlag = ""
		debugMode = false
	})
	t.Setenv("EFL_DIR", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// gameFolder creates a game directory with the injector files in place.
func gameFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"d3dx.ini":     "[Loader]",
		"dxgi.dll":     "",
		"Endfield.exe": "",
	})
	return dir
}

func TestRootCmd_NoArgs_Launches(t *testing.T) {
	// Given: a game folder with the injector files and a fake starter
	dir := gameFolder(t)
	starter := &fakeStarter{pid: 4242}
	useStarter(t, starter)

	// When: running efl without a command
	out, err := runEfl(t, dir, "")

	// Then: the game is started from the game folder
	require.NoError(t, err)
	assert.Contains(t, out, "Starting Endfield...")
	calls := starter.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join(dir, "Endfield.exe"), calls[0].Path)
	assert.Equal(t, dir, calls[0].Dir)
}

func TestRootCmd_DashArgs_PassedToGame(t *testing.T) {
	// Given: a game folder and a fake starter
	dir := gameFolder(t)
	starter := &fakeStarter{pid: 1}
	useStarter(t, starter)

	// When: passing game arguments after --
	_, err := runEfl(t, dir, "", "--", "-popupwindow")

	// Then: the argument reaches the game
	require.NoError(t, err)
	calls := starter.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-popupwindow"}, calls[0].Args)
}

func TestRootCmd_UnknownCommand_DoesNotLaunch(t *testing.T) {
	// Given: a game folder and a fake starter
	dir := gameFolder(t)
	starter := &fakeStarter{pid: 1}
	useStarter(t, starter)

	// When: mistyping a command
	_, err := runEfl(t, dir, "", "deplyo")

	// Then: it fails without starting the game
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Empty(t, starter.calls())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain error", assert.AnError, ExitFailure},
		{"explicit code", &exitCodeError{code: 7}, 7},
		{"invalid input", eflerrors.New(eflerrors.ErrCodeInvalidInput, "bad", nil), ExitUsage},
		{"invalid config", eflerrors.New(eflerrors.ErrCodeConfigInvalid, "bad", nil), ExitUsage},
		{"invalid preset", eflerrors.New(eflerrors.ErrCodeInvalidPreset, "bad", nil), ExitUsage},
		{"mod conflict", eflerrors.New(eflerrors.ErrCodeModConflict, "clash", nil), ExitFailure},
		{"deploy locked", eflerrors.New(eflerrors.ErrCodeLocked, "busy", nil), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestUsageErrors_ExitWithTwo(t *testing.T) {
	// Given: command lines that are wrong before anything runs
	dir := t.TempDir()
	useStarter(t, &fakeStarter{})
	lines := map[string][]string{
		"unknown flag":    {"status", "--bogus"},
		"bad flag value":  {"history", "--limit", "many"},
		"too many args":   {"mods", "info", "a", "b"},
		"unknown command": {"lanch"},
	}

	for name, args := range lines {
		t.Run(name, func(t *testing.T) {
			// When: running them
			_, err := runEfl(t, dir, "", args...)

			// Then: the exit code is 2, never the marker-missing 1
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Equal(t, eflerrors.ErrCodeInvalidInput, eflerrors.GetCode(err))
		})
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// Then: every command is registered
	for _, name := range []string{
		"launch", "doctor", "mods", "preset", "build", "deploy", "restore",
		"conflicts", "import", "config", "history", "status", "version",
	} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}
