package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/output"
	"github.com/endfield-mods/efl/internal/pack"
)

func newBuildCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild mods/_active from the enabled mods",
		Long: `Wipe mods/_active and copy every enabled mod into it, in order.
Later mods overwrite files from earlier ones. Config mods with a copy list
only contribute their manifest and the listed entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			opts := []pack.Option{pack.WithLogger(slog.Default())}
			if !quiet && out.UseColor() {
				opts = append(opts, pack.WithProgress(func(done, total int, rel string) {
					out.Progress(done, total, rel)
				}))
			}

			active, stats, err := pack.NewBuilder(opts...).Build(cfg.ModsRoot(dir), cfg.Mods.Enabled)
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to build active pack", err)
			}
			for _, rel := range stats.Missing {
				out.Warningf("enabled mod not found: %s", rel)
			}
			out.Successf("Built %s: %d mod(s), %d file(s)", active, stats.Mods, stats.Files)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "No progress bar")
	return cmd
}
