package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/logging"
	"github.com/endfield-mods/efl/internal/ui"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the efl log",
		Long: `Show the last lines of .efl/logs/efl.log, including rotated files.
Use -f to follow new entries (like 'tail -f').`,
		Example: `  efl logs -n 100
  efl logs --level warn
  efl logs -f --filter deploy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only lines matching this regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	dir, err := gameDir()
	if err != nil {
		return err
	}
	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return eflerrors.New(eflerrors.ErrCodeInvalidInput, "invalid --level: "+opts.level, nil)
	}
	var pattern *regexp.Regexp
	if opts.filter != "" {
		if pattern, err = regexp.Compile(opts.filter); err != nil {
			return eflerrors.New(eflerrors.ErrCodeInvalidInput, "invalid --filter pattern", err)
		}
	}

	maxFiles := config.NewConfig().Logging.MaxFiles
	if cfg, err := config.Load(dir); err == nil {
		maxFiles = cfg.Logging.MaxFiles
	}

	path := logging.LogPath(dir)
	paths := logging.RotatedPaths(path, maxFiles)
	if len(paths) == 0 {
		return eflerrors.New(eflerrors.ErrCodeFileNotFound, "no log file at "+path, nil)
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !ui.UseColor(out),
	}, out)

	entries, err := viewer.Tail(paths, opts.lines)
	if err != nil {
		return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to read log", err)
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), "--- following (Ctrl+C to stop)")
	ch := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() { errCh <- viewer.Follow(ctx, path, ch) }()

	for {
		select {
		case e := <-ch:
			fmt.Fprintln(out, viewer.FormatEntry(e))
		case err := <-errCh:
			return err
		}
	}
}
