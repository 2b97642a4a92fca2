// Package cmd provides the CLI commands for efl.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/launcher"
	"github.com/endfield-mods/efl/internal/logging"
	"github.com/endfield-mods/efl/internal/process"
	"github.com/endfield-mods/efl/pkg/version"
)

// Global flags
var (
	dirFlag        string
	debugMode      bool
	loggingCleanup func()
)

// newStarter builds the process starter; tests replace it.
var newStarter = func() process.Starter { return process.Detached{} }

// exitCodeError carries a process exit code without an error message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Exit codes besides the launcher's own (0 launched, 1 marker missing).
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// usageCodes are the error codes reported as ExitUsage: bad flags,
// arguments or configuration rather than a failed operation.
var usageCodes = map[string]bool{
	eflerrors.ErrCodeConfigNotFound: true,
	eflerrors.ErrCodeConfigInvalid:  true,
	eflerrors.ErrCodeInvalidInput:   true,
	eflerrors.ErrCodeInvalidPath:    true,
	eflerrors.ErrCodeInvalidPreset:  true,
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	if usageCodes[eflerrors.GetCode(err)] {
		return ExitUsage
	}
	return ExitFailure
}

func usageError(cmd *cobra.Command, err error) error {
	return eflerrors.New(eflerrors.ErrCodeInvalidInput, err.Error(), err).
		WithSuggestion(fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
}

// codeArgErrors makes argument validation failures of cmd and its
// subcommands usage errors.
func codeArgErrors(cmd *cobra.Command) {
	if validate := cmd.Args; validate != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			if err := validate(c, args); err != nil {
				if eflerrors.GetCode(err) != "" {
					return err
				}
				return usageError(c, err)
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		codeArgErrors(sub)
	}
}

// NewRootCmd creates the root command for the efl CLI.
func NewRootCmd() *cobra.Command {
	var lf launchFlags

	cmd := &cobra.Command{
		Use:   "efl [-- game args...]",
		Short: "Endfield launcher and mod manager",
		Long: `efl launches Endfield after checking that the 3DMigoto injector
files (d3dx.ini, dxgi.dll) are next to the game, and manages the mods
library that gets deployed into the game folder.

Run without a command (or double-click the executable) to launch.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          dashArgsOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, lf, args)
		},
	}

	cmd.SetVersionTemplate("efl version {{.Version}}\n")

	lf.register(cmd)
	cmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Game directory (default: the directory containing efl)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Debug logging, mirrored to stderr")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newLaunchCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newModsCmd())
	cmd.AddCommand(newPresetCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newConflictsCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	cmd.SetFlagErrorFunc(usageError)
	codeArgErrors(cmd)
	return cmd
}

// dashArgsOnly accepts positional args only after "--", so a mistyped
// command is reported instead of being passed to the game.
func dashArgsOnly(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && cmd.ArgsLenAtDash() != 0 {
		return eflerrors.New(eflerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()), nil).
			WithSuggestion("Pass game arguments after --, e.g. efl -- -popupwindow")
	}
	return nil
}

// startLogging installs the file logger. Failure only disables logging.
func startLogging(cmd *cobra.Command, _ []string) error {
	dir, err := gameDir()
	if err != nil {
		return nil
	}

	logCfg := logging.DefaultConfig(dir)
	if cfg, err := config.Load(dir); err == nil {
		logCfg.Level = cfg.Logging.Level
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		logCfg.MaxFiles = cfg.Logging.MaxFiles
	}
	if debugMode {
		logCfg = logCfg.Debug()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		if debugMode {
			fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
		}
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("dir", dir),
		slog.String("version", version.Short()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.Execute()
	var ec *exitCodeError
	if err != nil && !errors.As(err, &ec) {
		slog.Error("command failed", eflerrors.LogAttrs(err)...)
		fmt.Fprint(os.Stderr, eflerrors.FormatForCLI(err))
	}
	// PersistentPostRunE is skipped when RunE fails
	_ = stopLogging(cmd, nil)
	return ExitCode(err)
}

// gameDir returns the directory efl operates on: --dir, EFL_DIR, or the
// directory containing the executable.
func gameDir() (string, error) {
	dir := dirFlag
	if dir == "" {
		dir = os.Getenv("EFL_DIR")
	}
	if dir == "" {
		return launcher.ResolveDir()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", eflerrors.New(eflerrors.ErrCodeInvalidPath, "invalid --dir: "+dir, err)
	}
	return abs, nil
}

// loadConfig loads the config for dir as a coded error.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, eflerrors.New(eflerrors.ErrCodeConfigInvalid, err.Error(), err).
			WithDetail("path", config.Path(dir)).
			WithSuggestion("Fix the file or run 'efl config init --force' to reset it")
	}
	return cfg, nil
}
