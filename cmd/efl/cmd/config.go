package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage efl.yaml",
		Long: `Manage the efl.yaml file next to the launcher.

The file is optional. Precedence (lowest to highest):
  1. Built-in defaults
  2. efl.yaml
  3. Environment variables (EFL_*)
  4. Command-line flags`,
		Example: `  # Write efl.yaml with the defaults
  efl config init

  # Show effective configuration
  efl config show

  # Bring over settings from the old mod loader
  efl config import`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigImportCmd())
	cmd.AddCommand(newConfigRollbackCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create efl.yaml with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			if config.Exists(dir) {
				if !force {
					out.Warning("Configuration already exists")
					out.Statusf("📁", "Location: %s", config.Path(dir))
					out.Status("💡", "Use --force to reset it to defaults (a backup is kept)")
					return nil
				}
				backup, err := config.Backup(dir)
				if err != nil {
					return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to back up config", err)
				}
				if backup != "" {
					out.Statusf("💾", "Backup: %s", backup)
				}
			}

			if err := config.NewConfig().Save(dir); err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to write config", err)
			}
			out.Successf("Created %s", config.Path(dir))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeInternal, "failed to marshal config", err)
			}
			if !config.Exists(dir) {
				fmt.Fprintln(cmd.OutOrStdout(), "# no efl.yaml, showing defaults")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.Path(dir))
			return nil
		},
	}
}

func newConfigRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the config from the newest backup",
		Long: `Replace efl.yaml with the newest file in .efl/backups. init --force and
import back up the config before writing it. Each rollback consumes
one backup, so running it again steps further back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			backup, err := config.Rollback(dir)
			if errors.Is(err, os.ErrNotExist) {
				return eflerrors.New(eflerrors.ErrCodeFileNotFound, "no config backups in "+config.BackupDir(dir), nil)
			}
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to roll back config", err)
			}
			if _, err := config.Load(dir); err != nil {
				output.New(cmd.OutOrStdout()).Warningf("restored config does not load: %v", err)
			}
			output.New(cmd.OutOrStdout()).Successf("Restored %s from %s", config.Path(dir), filepath.Base(backup))
			return nil
		},
	}
}

func newConfigImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [config.json]",
		Short: "Import enabled mods, game exe and preset from the old mod loader",
		Long: `Merge the old mod loader's config.json into efl.yaml. Without an
argument, launcher/data/config.json under the game directory is read.
The current efl.yaml is backed up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}

			src := filepath.Join(dir, config.LegacyConfigPath)
			if len(args) == 1 {
				src = args[0]
			}
			if err := cfg.ImportLegacy(src); err != nil {
				return eflerrors.New(eflerrors.ErrCodeConfigInvalid, "failed to import legacy config", err).
					WithDetail("path", src)
			}
			if err := cfg.Validate(); err != nil {
				return eflerrors.New(eflerrors.ErrCodeConfigInvalid, err.Error(), nil)
			}

			out := output.New(cmd.OutOrStdout())
			if backup, err := config.Backup(dir); err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to back up config", err)
			} else if backup != "" {
				out.Statusf("💾", "Backup: %s", backup)
			}
			if err := cfg.Save(dir); err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to write config", err)
			}
			out.Successf("Imported %s: %d enabled mod(s), preset %s", src, len(cfg.Mods.Enabled), cfg.Mods.Preset)
			return nil
		},
	}
}
