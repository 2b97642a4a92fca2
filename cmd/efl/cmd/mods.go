package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/endfield-mods/efl/internal/config"
	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/mods"
	"github.com/endfield-mods/efl/internal/output"
	"github.com/endfield-mods/efl/internal/pack"
	"github.com/endfield-mods/efl/internal/ui"
	"github.com/endfield-mods/efl/internal/watcher"
)

func newModsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mods",
		Short: "List, enable and disable mods in the library",
	}
	cmd.AddCommand(newModsListCmd())
	cmd.AddCommand(newModsToggleCmd(true))
	cmd.AddCommand(newModsToggleCmd(false))
	cmd.AddCommand(newModsPickCmd())
	cmd.AddCommand(newModsWatchCmd())
	cmd.AddCommand(newModsInfoCmd())
	return cmd
}

// modsContext loads what every mods command needs.
type modsContext struct {
	dir  string
	cfg  *config.Config
	root string
	all  []mods.Mod
}

func loadMods(ctx context.Context) (*modsContext, error) {
	dir, err := gameDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	root := cfg.ModsRoot(dir)
	all, err := scanMods(ctx, root)
	if err != nil {
		return nil, eflerrors.New(eflerrors.ErrCodeFileNotFound, "failed to scan mods: "+err.Error(), err)
	}
	return &modsContext{dir: dir, cfg: cfg, root: root, all: all}, nil
}

// modView is a mod as listed by 'efl mods list --json'.
type modView struct {
	mods.Mod
	Enabled bool `json:"enabled"`
}

func newModsListCmd() *cobra.Command {
	var (
		jsonOutput  bool
		enabledOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list [filter]",
		Aliases: []string{"ls"},
		Short:   "List mods found in the library",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}
			list := mc.all
			if len(args) == 1 {
				list = mods.Filter(list, args[0])
			}

			views := make([]modView, 0, len(list))
			for _, m := range list {
				v := modView{Mod: m, Enabled: mc.cfg.IsEnabled(m.RelPath)}
				if enabledOnly && !v.Enabled {
					continue
				}
				views = append(views, v)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			printModList(output.New(cmd.OutOrStdout()), mc.root, views)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only list enabled mods")
	return cmd
}

func printModList(out *output.Writer, root string, views []modView) {
	if len(views) == 0 {
		out.Status("📂", "No mods found in "+root)
		return
	}
	st := out.Styles()
	enabled := 0
	for _, v := range views {
		box := "[ ]"
		if v.Enabled {
			box = out.Render(st.Checked, "[x]")
			enabled++
		}
		line := fmt.Sprintf("%s %s %s", box, v.RelPath, out.Render(st.Dim, "("+string(v.Type)+")"))
		if v.Broken() {
			line += " " + out.Render(st.Broken, "ERROR")
		} else if len(v.Warnings) > 0 {
			line += " " + out.Render(st.Warning, "warn")
		}
		fmt.Fprintln(out.Out(), line)
	}
	out.Newline()
	out.Dim(fmt.Sprintf("%d mod(s), %d enabled", len(views), enabled))
}

func newModsToggleCmd(enable bool) *cobra.Command {
	use, short := "enable", "Enable mods by relative path or name"
	if !enable {
		use, short = "disable", "Disable mods by relative path or name"
	}

	var all bool
	cmd := &cobra.Command{
		Use:   use + " <mod>...",
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return eflerrors.New(eflerrors.ErrCodeInvalidInput, "name at least one mod, or use --all", nil)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			targets := args
			if all {
				targets = nil
				for _, m := range mc.all {
					targets = append(targets, m.RelPath)
				}
			}

			changed := 0
			for _, arg := range targets {
				rel := config.NormalizeRelPath(arg)
				if m, ok := mods.Resolve(mc.all, arg); ok {
					rel = m.RelPath
				} else if enable {
					return eflerrors.New(eflerrors.ErrCodeInvalidInput, "no mod matches "+arg, nil).
						WithSuggestion("Run 'efl mods list' to see relative paths")
				}
				if mc.cfg.SetEnabled(rel, enable) {
					changed++
					out.Success(fmt.Sprintf("%sd %s", use, rel))
				} else {
					out.Dim(rel + " already " + use + "d")
				}
			}

			if changed == 0 {
				return nil
			}
			if err := mc.cfg.Save(mc.dir); err != nil {
				return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to save config", err)
			}
			slog.Info("mods toggled", slog.String("action", use), slog.Int("changed", changed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Apply to every mod in the library")
	return cmd
}

func newModsPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose enabled mods in an interactive checklist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !ui.IsInteractive(cmd.InOrStdin(), cmd.OutOrStdout()) {
				return eflerrors.New(eflerrors.ErrCodeInvalidInput, "mods pick needs an interactive terminal", nil).
					WithSuggestion("Use 'efl mods enable' and 'efl mods disable' in scripts")
			}
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}

			items := make([]ui.PickerItem, 0, len(mc.all))
			for _, m := range mc.all {
				items = append(items, ui.PickerItem{
					RelPath: m.RelPath,
					Name:    m.Name,
					Type:    string(m.Type),
					Enabled: mc.cfg.IsEnabled(m.RelPath),
					Broken:  m.Broken(),
				})
			}

			styles := ui.GetStyles(!ui.UseColor(cmd.OutOrStdout()))
			picked, ok, err := ui.RunPicker(items, cmd.InOrStdin(), cmd.OutOrStdout(), styles)
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			if !ok {
				out.Dim("cancelled, nothing changed")
				return nil
			}
			return applyPicked(mc, picked, out)
		},
	}
}

// applyPicked stores the picker result, keeping the order of mods that
// stay enabled and appending new ones in library order.
func applyPicked(mc *modsContext, picked []ui.PickerItem, out *output.Writer) error {
	changed := 0
	for _, it := range picked {
		if mc.cfg.SetEnabled(it.RelPath, it.Enabled) {
			changed++
		}
	}
	if changed == 0 {
		out.Dim("no changes")
		return nil
	}
	if err := mc.cfg.Save(mc.dir); err != nil {
		return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to save config", err)
	}
	out.Successf("%d change(s) saved, %d mod(s) enabled", changed, len(mc.cfg.Mods.Enabled))
	return nil
}

func newModsWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the active pack whenever the library changes",
		Long: `Watch the mods folder and rebuild mods/_active after each burst of
changes. The enabled list is re-read from the config on every rebuild.
Stop with Ctrl+C.`,
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
			root := cfg.ModsRoot(dir)
			out := output.New(cmd.OutOrStdout())

			rebuild := func(_ context.Context, batch []watcher.FileEvent) error {
				current, err := config.Load(dir)
				if err != nil {
					return err
				}
				_, stats, err := pack.Build(root, current.Mods.Enabled)
				if err != nil {
					out.Errorf("rebuild failed: %v", err)
					return err
				}
				out.Successf("%s rebuilt: %d mod(s), %d file(s) (%d change(s))",
					time.Now().Format("15:04:05"), stats.Mods, stats.Files, len(batch))
				return nil
			}

			if err := rebuild(ctx, nil); err != nil {
				return err
			}
			out.Status("👀", "Watching "+root+" (Ctrl+C to stop)")
			return watcher.Run(ctx, root, watcher.Options{DebounceWindow: debounce}, rebuild)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before rebuilding")
	return cmd
}

func newModsInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <mod>",
		Short: "Show manifest details, warnings and errors for a mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := loadMods(cmd.Context())
			if err != nil {
				return err
			}
			m, ok := mods.Resolve(mc.all, args[0])
			if !ok {
				return eflerrors.New(eflerrors.ErrCodeInvalidInput, "no mod matches "+args[0], nil).
					WithSuggestion("Run 'efl mods list' to see relative paths")
			}
			view := modView{Mod: m, Enabled: mc.cfg.IsEnabled(m.RelPath)}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			out := output.New(cmd.OutOrStdout())
			out.Header(m.Name)
			field := func(k, v string) {
				if v != "" {
					fmt.Fprintf(out.Out(), "  %-12s %s\n", k+":", v)
				}
			}
			field("Path", m.RelPath)
			field("Type", string(m.Type))
			field("Enabled", fmt.Sprint(view.Enabled))
			field("ID", m.ID)
			field("Version", m.Version)
			field("Author", m.Author)
			field("Description", m.Description)
			if len(m.Copy) > 0 {
				field("Copy", strings.Join(m.Copy, ", "))
			}
			for _, w := range m.Warnings {
				out.Warning(w)
			}
			for _, e := range m.Errors {
				out.Error(e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
