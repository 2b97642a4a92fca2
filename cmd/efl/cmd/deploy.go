package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/output"
)

func newDeployCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build the active pack and deploy enabled mods into the game",
		Long: `Deploy the enabled mods into the game folder:

  - ModSafe: mods/_active is copied under Endfield_Data (Persistent/VFS when
    present, otherwise StreamingAssets)
  - 3DMigoto mods are copied to <game>/Mods/<name>
  - asset mods overwrite game files, originals are backed up once

Deploy refuses to run while enabled mods conflict or have errors.
Undo with 'efl restore'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}

			res, err := deployEnabled(ctx, dir, cfg)
			if err != nil {
				recordAction(ctx, dir, cfg, history.Entry{Outcome: history.OutcomeFailed, Error: err.Error()})
				if eflerrors.GetCode(err) != "" {
					return err
				}
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "deploy failed", err)
			}
			recordAction(ctx, dir, cfg, history.Entry{Outcome: history.OutcomeDeployed, Warnings: missingWarnings(res.Missing)})

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			out := output.New(cmd.OutOrStdout())
			for _, rel := range res.Missing {
				out.Warningf("enabled mod not found: %s", rel)
			}
			out.Successf("ModSafe (%s): %d file(s) in %s", res.Backend, res.SafeFiles, res.ActiveDir)
			out.Successf("3DMigoto: %d mod(s), %d file(s)", res.MigotoMods, res.MigotoFiles)
			out.Successf("Assets: %d mod(s), %d file(s)", res.AssetMods, res.AssetFiles)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the deploy summary as JSON")
	return cmd
}

func missingWarnings(missing []string) []string {
	if len(missing) == 0 {
		return nil
	}
	out := make([]string, 0, len(missing))
	for _, rel := range missing {
		out = append(out, "enabled mod not found: "+rel)
	}
	return out
}
