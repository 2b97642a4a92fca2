package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	"github.com/endfield-mods/efl/internal/deploy"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/launcher"
	"github.com/endfield-mods/efl/internal/mods"
)

// launchFlags are shared by the root command and 'efl launch'.
type launchFlags struct {
	noPause  bool
	renderer string
	deploy   bool
}

func (f *launchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noPause, "no-pause", false, "Do not wait for a key press after a fatal error")
	cmd.Flags().StringVar(&f.renderer, "renderer", "", "Override game.renderer (auto, dx11, dx12)")
	cmd.Flags().BoolVar(&f.deploy, "deploy", false, "Build and deploy enabled mods before launching")
}

func newLaunchCmd() *cobra.Command {
	var lf launchFlags

	cmd := &cobra.Command{
		Use:   "launch [-- game args...]",
		Short: "Check injector files and start the game",
		Long: `Check that d3dx.ini exists next to the game (required) and that
dxgi.dll exists (warning only; d3d11.dll may be used instead), then start
Endfield.exe detached and exit.

Exit codes: 0 launch issued, 1 d3dx.ini missing, 2 invalid flags or arguments.`,
		Example: `  # Launch from the game folder
  efl launch

  # Force DirectX 11 and pass extra arguments
  efl launch --renderer dx11 -- -popupwindow`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, lf, args)
		},
	}
	lf.register(cmd)
	return cmd
}

func runLaunch(cmd *cobra.Command, lf launchFlags, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := gameDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		// the launch flow never fails on configuration
		fmt.Fprintf(cmd.OutOrStdout(), "WARNING: %v (using defaults)\n", err)
		slog.Warn("config ignored", slog.String("error", err.Error()))
		cfg = config.NewConfig()
	}
	if lf.renderer != "" {
		cfg.Game.Renderer = strings.ToLower(lf.renderer)
		if err := cfg.Validate(); err != nil {
			return eflerrors.New(eflerrors.ErrCodeInvalidInput, err.Error(), nil)
		}
	}

	opts := launcher.Options{
		Dir:       dir,
		Config:    cfg,
		Stdout:    cmd.OutOrStdout(),
		Stdin:     cmd.InOrStdin(),
		Pause:     cfg.Launch.PauseOnError && !lf.noPause,
		ChangeDir: dirFlag == "",
		ExtraArgs: args,
		Starter:   newStarter(),
		Logger:    slog.Default(),
	}

	if cfg.Launch.RecordHistory {
		store, err := history.Open(config.DataDir(dir))
		if err != nil {
			slog.Debug("history unavailable", slog.String("error", err.Error()))
		} else {
			defer store.Close()
			opts.History = store
		}
	}

	if cfg.Launch.DeployBeforeLaunch || lf.deploy {
		opts.BeforeLaunch = func(ctx context.Context) error {
			_, err := deployEnabled(ctx, dir, cfg)
			return err
		}
	}

	if code := launcher.New(opts).Run(ctx); code != launcher.ExitOK {
		return &exitCodeError{code: code}
	}
	return nil
}

// deployEnabled scans the library and deploys the enabled mods for dir.
func deployEnabled(ctx context.Context, dir string, cfg *config.Config) (*deploy.Result, error) {
	all, err := scanMods(ctx, cfg.ModsRoot(dir))
	if err != nil {
		return nil, err
	}
	return newDeployer(dir, cfg).Deploy(ctx, all, cfg.Mods.Enabled)
}

func newDeployer(dir string, cfg *config.Config) *deploy.Deployer {
	return deploy.New(deploy.Options{
		GameRoot:   gameRoot(dir, cfg),
		ModsRoot:   cfg.ModsRoot(dir),
		DataDir:    config.DataDir(dir),
		FolderName: cfg.Deploy.FolderName,
		LockWait:   deploy.DefaultLockWait,
		Logger:     slog.Default(),
	})
}

// gameRoot is the directory holding the game executable.
func gameRoot(dir string, cfg *config.Config) string {
	return filepath.Dir(cfg.GamePath(dir))
}

func scanMods(ctx context.Context, root string) ([]mods.Mod, error) {
	s, err := mods.NewScanner(mods.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, root)
}
