package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/deploy"
	"github.com/endfield-mods/efl/internal/mods"
	"github.com/endfield-mods/efl/internal/output"
)

func newConflictsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List paths written by more than one enabled mod",
		Long: `Report destination paths that more than one enabled mod writes, either
through a manifest copy list or as asset files. Exits 1 when conflicts exist,
since 'efl deploy' would refuse to run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}
			selected, _ := mods.Selected(mc.all, mc.cfg.Mods.Enabled)
			found := deploy.Conflicts(selected)

			if jsonOutput {
				if found == nil {
					found = []deploy.Conflict{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(found); err != nil {
					return err
				}
			} else {
				out := output.New(cmd.OutOrStdout())
				if len(found) == 0 {
					out.Success("No conflicts")
					return nil
				}
				for _, c := range found {
					out.Error(fmt.Sprintf("[%s] %s", c.Kind, c))
				}
			}

			if len(found) > 0 {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
