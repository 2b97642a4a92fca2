package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/output"
)

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Remove deployed mods and restore original game files",
		Long: `Undo 'efl deploy': remove the ModSafe active folder and put back the
game files that asset mods replaced. Files created by asset mods are removed.
3DMigoto mods in <game>/Mods are left in place.`,
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

			res, err := newDeployer(dir, cfg).Restore(ctx)
			if err != nil {
				recordAction(ctx, dir, cfg, history.Entry{Outcome: history.OutcomeFailed, Error: err.Error()})
				if eflerrors.GetCode(err) != "" {
					return err
				}
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "restore failed", err)
			}
			recordAction(ctx, dir, cfg, history.Entry{Outcome: history.OutcomeRestored})

			out := output.New(cmd.OutOrStdout())
			if res.ModSafeRemoved {
				out.Success("ModSafe folder removed")
			} else {
				out.Dim("no ModSafe folder to remove")
			}
			out.Successf("%d game file(s) restored", res.AssetsRestored)
			return nil
		},
	}
}
