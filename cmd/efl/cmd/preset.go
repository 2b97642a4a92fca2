package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/output"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save and load enabled-mod presets (A, B, C)",
	}
	cmd.AddCommand(newPresetSaveCmd(), newPresetLoadCmd(), newPresetListCmd())
	return cmd
}

// presetArg validates a preset slot name from the command line.
// Unlike config files, the CLI rejects unknown names instead of falling back to A.
func presetArg(args []string, current string) (string, error) {
	if len(args) == 0 {
		return config.NormalizePreset(current), nil
	}
	name := strings.ToUpper(strings.TrimSpace(args[0]))
	if !config.ValidPreset(name) {
		return "", eflerrors.New(eflerrors.ErrCodeInvalidPreset,
			fmt.Sprintf("unknown preset %q", args[0]), nil).
			WithSuggestion("Use one of: " + strings.Join(config.PresetNames, ", "))
	}
	return name, nil
}

func newPresetSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [A|B|C]",
		Short: "Save the enabled mods to a preset (default: current preset)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			name, err := presetArg(args, cfg.Mods.Preset)
			if err != nil {
				return err
			}
			if err := cfg.SavePreset(dir, name); err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to save preset", err)
			}
			output.New(cmd.OutOrStdout()).Successf("Preset %s saved (%d mod(s))", name, len(cfg.Mods.Enabled))
			return nil
		},
	}
}

func newPresetLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <A|B|C>",
		Short: "Replace the enabled mods with a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			name, err := presetArg(args, cfg.Mods.Preset)
			if err != nil {
				return err
			}
			found, err := cfg.LoadPreset(dir, name)
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeConfigInvalid, "failed to load preset", err)
			}
			out := output.New(cmd.OutOrStdout())
			if !found {
				out.Warningf("Preset %s was never saved; enabled list cleared", name)
				return nil
			}
			out.Successf("Preset %s loaded (%d mod(s))", name, len(cfg.Mods.Enabled))
			return nil
		},
	}
}

func newPresetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show preset slots",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			infos, err := cfg.ListPresets(dir)
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeConfigInvalid, "failed to read presets", err)
			}
			w := cmd.OutOrStdout()
			for _, p := range infos {
				mark := " "
				if p.Current {
					mark = "*"
				}
				state := "empty"
				if p.Exists {
					state = fmt.Sprintf("%d mod(s)", p.Count)
				}
				fmt.Fprintf(w, "%s %s  %s\n", mark, p.Name, state)
			}
			return nil
		},
	}
}
