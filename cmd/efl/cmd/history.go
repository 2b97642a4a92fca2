package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/history"
	"github.com/endfield-mods/efl/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		prune      bool
		keep       int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent launches, deploys and restores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := gameDir()
			if err != nil {
				return err
			}
			store, err := history.Open(config.DataDir(dir))
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to open history", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			out := output.New(cmd.OutOrStdout())

			if prune {
				n, err := store.Prune(ctx, keep)
				if err != nil {
					return eflerrors.New(eflerrors.ErrCodeInternal, "failed to prune history", err)
				}
				out.Successf("Removed %d entr(ies), kept the newest %d", n, keep)
				return nil
			}

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return eflerrors.New(eflerrors.ErrCodeInternal, "failed to read history", err)
			}

			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				out.Dim("No history yet")
				return nil
			}
			st := out.Styles()
			for _, e := range entries {
				outcome := string(e.Outcome)
				switch e.Outcome {
				case history.OutcomeBlocked, history.OutcomeFailed:
					outcome = out.Render(st.Error, outcome)
				default:
					outcome = out.Render(st.Success, outcome)
				}
				line := fmt.Sprintf("%s  %-8s", e.Time.Local().Format("2006-01-02 15:04:05"), outcome)
				if e.PID > 0 {
					line += fmt.Sprintf("  pid %d", e.PID)
				}
				if len(e.Args) > 0 {
					line += "  " + strings.Join(e.Args, " ")
				}
				if e.Error != "" {
					line += "  " + out.Render(st.Dim, e.Error)
				}
				fmt.Fprintln(out.Out(), line)
				for _, w := range e.Warnings {
					fmt.Fprintln(out.Out(), "    "+out.Render(st.Warning, w))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete old entries instead of listing")
	cmd.Flags().IntVar(&keep, "keep", history.DefaultKeep, "Entries to keep with --prune")
	return cmd
}
