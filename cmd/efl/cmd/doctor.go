package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
		minFree    string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the game folder and diagnose launch problems",
		Long: `Run every preflight check against the game folder:

  - d3dx.ini present (required)
  - dxgi.dll present (warning; d3d11.dll may be used instead)
  - game executable present
  - write permissions (needed for deploy)
  - free disk space (500 MiB unless --min-free is given)`,
		Example: `  efl doctor
  efl doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var threshold uint64
			if minFree != "" {
				n, err := humanize.ParseBytes(minFree)
				if err != nil {
					return eflerrors.New(eflerrors.ErrCodeInvalidInput, "invalid --min-free value "+minFree, err).
						WithSuggestion("use a size such as 2GB or 800MiB")
				}
				threshold = n
			}
			return runDoctor(cmd, verbose, jsonOutput, threshold)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&minFree, "min-free", "", "Free disk space below which to warn, e.g. 2GB")

	return cmd
}

func runDoctor(cmd *cobra.Command, verbose, jsonOutput bool, minFree uint64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := gameDir()
	if err != nil {
		return err
	}
	cfg, cfgErr := config.Load(dir)
	if cfgErr != nil {
		cfg = config.NewConfig()
	}

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithInjector(cfg.Injector.Marker, cfg.Injector.Library),
		preflight.WithAlternates(cfg.Injector.Alternates...),
		preflight.WithExecutable(cfg.Game.Executable),
		preflight.WithMinFreeSpace(minFree),
	)
	results := checker.RunAll(ctx, dir)
	results = append(results, configResult(cfgErr))

	if jsonOutput {
		if err := outputJSON(cmd, dir, results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return &exitCodeError{code: 1}
	}
	return nil
}

func configResult(err error) preflight.CheckResult {
	r := preflight.CheckResult{Name: "config"}
	if err != nil {
		r.Status = preflight.StatusWarn
		r.Message = "config ignored, defaults in use"
		r.Details = err.Error()
		return r
	}
	r.Status = preflight.StatusPass
	r.Message = "config valid"
	return r
}

// JSONOutput is the doctor --json document.
type JSONOutput struct {
	Dir    string                  `json:"dir"`
	Checks []preflight.CheckResult `json:"checks"`
	preflight.Report
}

func outputJSON(cmd *cobra.Command, dir string, results []preflight.CheckResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONOutput{
		Dir:    dir,
		Checks: results,
		Report: preflight.Summarize(results),
	})
}
