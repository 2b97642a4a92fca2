package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the efl version, commit, build date, Go version and platform.
Builds without release stamps report what the Go toolchain embedded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			w := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(w, info.Version)
				return err
			case asJSON:
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s\n", data)
				return err
			default:
				_, err := fmt.Fprintln(w, info)
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}
