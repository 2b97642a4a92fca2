package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/fsutil"
	"github.com/endfield-mods/efl/internal/importer"
	"github.com/endfield-mods/efl/internal/output"
)

func newImportCmd() *cobra.Command {
	var (
		overwrite  bool
		enable     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "import <archive.zip|folder>...",
		Short: "Install mods from zip archives or unpacked folders",
		Long: `Install mods into mods/misc.

A zip archive is extracted, wrapper folders are unwrapped, and the folder
that looks most like a mod is installed. An existing mod with the same name
is kept; the new one gets a _1, _2... suffix.

A folder is copied as-is. An existing mod with the same name is an error
unless --overwrite is given.`,
		Example: `  efl import ~/Downloads/CoolSkin.zip
  efl import --enable ./MyMod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			results := make([]*importer.Result, 0, len(args))
			for _, src := range args {
				var res *importer.Result
				if fsutil.IsDir(src) {
					res, err = importer.InstallFolder(src, root, overwrite)
				} else {
					res, err = importer.ImportZip(src, root)
				}
				if err != nil {
					return err
				}
				results = append(results, res)
				if enable {
					cfg.SetEnabled(res.RelPath, true)
				}
				if !jsonOutput {
					out.Successf("%s -> %s (%s, %d file(s))", src, res.RelPath, res.Type, res.Files)
				}
			}

			if enable {
				if err := cfg.Save(dir); err != nil {
					return eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to save config", err)
				}
				if !jsonOutput {
					out.Dim(fmt.Sprintf("%d mod(s) enabled", len(results)))
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing mod folder of the same name (folders only)")
	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the imported mods")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
