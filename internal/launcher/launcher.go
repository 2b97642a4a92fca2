// Package launcher runs the launch flow: verify the injector files next to
// the game, then start the game detached and exit.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/preflight"
	"github.com/endfield-mods/efl/internal/process"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitMarkerMissing = 1
)

// PauseMessage is printed before waiting for acknowledgment on the fatal path.
const PauseMessage = "Press any key to continue . . ."

// Recorder stores launch attempts.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Options configures a Launcher. Zero values fall back to defaults.
type Options struct {
	// Dir is the anchor directory holding the game and injector files.
	Dir    string
	Config *config.Config
	Stdout io.Writer
	Stdin  io.Reader
	// Pause waits for a line on Stdin after the fatal error.
	Pause bool
	// ChangeDir makes Dir the process working directory before checking.
	ChangeDir bool
	// ExtraArgs are appended after the configured game arguments.
	ExtraArgs []string
	Starter   process.Starter
	History   Recorder
	// BeforeLaunch runs after the checks pass, before spawning. Its error
	// is reported as a warning.
	BeforeLaunch func(ctx context.Context) error
	Logger       *slog.Logger
}

// Launcher runs the launch flow for one directory.
type Launcher struct {
	dir          string
	cfg          *config.Config
	out          io.Writer
	in           io.Reader
	pause        bool
	chdir        bool
	extraArgs    []string
	starter      process.Starter
	checker      *preflight.Checker
	history      Recorder
	beforeLaunch func(ctx context.Context) error
	logger       *slog.Logger
}

// New creates a Launcher.
func New(opts Options) *Launcher {
	l := &Launcher{
		dir:          opts.Dir,
		cfg:          opts.Config,
		out:          opts.Stdout,
		in:           opts.Stdin,
		pause:        opts.Pause,
		chdir:        opts.ChangeDir,
		extraArgs:    opts.ExtraArgs,
		starter:      opts.Starter,
		history:      opts.History,
		beforeLaunch: opts.BeforeLaunch,
		logger:       opts.Logger,
	}
	if l.cfg == nil {
		l.cfg = config.NewConfig()
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.in == nil {
		l.in = os.Stdin
	}
	if l.starter == nil {
		l.starter = process.Detached{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.checker = preflight.New(
		preflight.WithInjector(l.cfg.Injector.Marker, l.cfg.Injector.Library),
		preflight.WithAlternates(l.cfg.Injector.Alternates...),
		preflight.WithExecutable(l.cfg.Game.Executable),
	)
	return l
}

// Dir returns the anchor directory.
func (l *Launcher) Dir() string {
	return l.dir
}

// Run performs the launch flow and returns the process exit code.
func (l *Launcher) Run(ctx context.Context) int {
	if l.chdir {
		if err := os.Chdir(l.dir); err != nil {
			l.logger.Warn("failed to change directory", slog.String("dir", l.dir), slog.String("error", err.Error()))
		}
	}

	entry := history.Entry{
		Dir:        l.dir,
		Executable: l.cfg.GamePath(l.dir),
		Args:       l.args(),
	}

	marker := l.checker.CheckMarker(l.dir)
	if marker.Status == preflight.StatusFail {
		fmt.Fprintf(l.out, "ERROR: %s\n", marker.Message)
		blocked := eflerrors.New(eflerrors.ErrCodeMarkerMissing, marker.Message, nil).
			WithDetail("marker", l.checker.Marker()).
			WithDetail("dir", l.dir)
		l.logger.Error("launch blocked", eflerrors.LogAttrs(blocked)...)
		entry.Outcome = history.OutcomeBlocked
		entry.Error = marker.Message
		l.record(ctx, entry)
		l.waitForAck()
		return ExitMarkerMissing
	}

	library := l.checker.CheckProxyLibrary(l.dir)
	if library.Status == preflight.StatusWarn {
		fmt.Fprintf(l.out, "WARNING: %s\n", library.Message)
		entry.Warnings = append(entry.Warnings, library.Message)
		l.logger.Warn("proxy library missing",
			slog.String("library", l.checker.Library()),
			slog.String("details", library.Details))
	}

	if l.beforeLaunch != nil {
		if err := l.beforeLaunch(ctx); err != nil {
			msg := "deploy before launch failed: " + err.Error()
			fmt.Fprintf(l.out, "WARNING: %s\n", msg)
			entry.Warnings = append(entry.Warnings, msg)
			l.logger.Warn("deploy before launch failed", slog.String("error", err.Error()))
		}
	}

	fmt.Fprintln(l.out, "Starting Endfield...")

	pid, err := l.starter.Start(ctx, process.Spec{
		Path: entry.Executable,
		Args: entry.Args,
		Dir:  l.dir,
	})
	if err != nil {
		fmt.Fprintf(l.out, "WARNING: %v\n", err)
		code := eflerrors.ErrCodeSpawnFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = eflerrors.ErrCodeExecutableAbsent
		}
		spawnErr := eflerrors.New(code, "game did not start", err).WithDetail("path", entry.Executable)
		l.logger.Error("spawn failed", eflerrors.LogAttrs(spawnErr)...)
		entry.Outcome = history.OutcomeFailed
		entry.Error = err.Error()
		l.record(ctx, entry)
		return ExitOK
	}

	entry.Outcome = history.OutcomeLaunched
	entry.PID = pid
	l.logger.Info("game started", slog.String("path", entry.Executable), slog.Int("pid", pid))
	if pid > 0 {
		pf := process.NewPIDFile(filepath.Join(config.DataDir(l.dir), process.PIDFileName))
		if err := pf.Write(pid); err != nil {
			l.logger.Debug("pid file not written", slog.String("error", err.Error()))
		}
	}
	l.record(ctx, entry)
	return ExitOK
}

func (l *Launcher) args() []string {
	args := l.cfg.LaunchArgs()
	return append(args, l.extraArgs...)
}

func (l *Launcher) record(ctx context.Context, e history.Entry) {
	if l.history == nil {
		return
	}
	if _, err := l.history.Record(ctx, e); err != nil {
		l.logger.Debug("history not recorded", slog.String("error", err.Error()))
	}
}

// waitForAck blocks until a line (or EOF) arrives on stdin.
func (l *Launcher) waitForAck() {
	if !l.pause {
		return
	}
	fmt.Fprintln(l.out, PauseMessage)
	_, _ = bufio.NewReader(l.in).ReadString('\n')
}

// ResolveDir returns the directory containing the running executable,
// with symlinks resolved.
func ResolveDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
