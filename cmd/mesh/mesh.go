// Package mesh implements the mesh subcommand: fan out over all sections of
// a draped blade surface and generate a 2D cross-section mesh per section.
package mesh

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wr1/b3-2d/internal/analysis"
	"github.com/wr1/b3-2d/internal/conf"
)

// Command creates the mesh subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Generate 2D section meshes from a draped blade surface",
		Long: "Reads a VTP/VTK surface mesh with per-cell section_id and panel_id " +
			"attributes and writes one section_<i>/ output bundle per section.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.MatDBPath != "" && len(settings.MatDB) == 0 {
				matdb, err := conf.LoadMatDB(settings.MatDBPath)
				if err != nil {
					return err
				}
				settings.MatDB = matdb
			}
			summary, err := analysis.RunMultiSection(cmd.Context(), settings)
			if err != nil {
				return err
			}
			summary.WriteTable(os.Stdout)
			return nil
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVarP(&settings.Input.Path, "vtp-file", "v", "",
		"Input VTP/VTK surface mesh (required)")
	cmd.Flags().StringVarP(&settings.Output.Dir, "output-dir", "o", "",
		"Directory for per-section outputs (required)")
	cmd.Flags().IntVarP(&settings.Mesh.NumProcesses, "num-processes", "n",
		settings.Mesh.NumProcesses, "Worker count, defaults to min(CPUs, sections)")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "V", false,
		"Enable verbose output")

	_ = cmd.MarkFlagRequired("vtp-file")
	_ = cmd.MarkFlagRequired("output-dir")
}
