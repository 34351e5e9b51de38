// Package plot implements the plot subcommand: render a scalar field of a
// mesh file to a PNG image.
package plot

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/plot"
	"github.com/wr1/b3-2d/internal/vtk"
)

// Command creates the plot subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var meshFile, outputFile string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a scalar field of a mesh file to a PNG image",
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := readMesh(meshFile)
			if err != nil {
				return err
			}
			return plot.SaveMesh(mesh, outputFile, plot.MeshOptions{
				Scalar: settings.Plot.Scalar,
				Width:  settings.Plot.Width,
				Height: settings.Plot.Height,
			})
		},
	}

	cmd.Flags().StringVarP(&meshFile, "mesh-file", "m", "",
		"Mesh file to render: .vtk, .vtp or .pck (required)")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "",
		"Output PNG file (required)")
	cmd.Flags().StringVarP(&settings.Plot.Scalar, "scalar", "s",
		settings.Plot.Scalar, "Cell data field to color by")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "V", false,
		"Enable verbose output")

	_ = cmd.MarkFlagRequired("mesh-file")
	_ = cmd.MarkFlagRequired("output-file")
	return cmd
}

func readMesh(path string) (*vtk.Mesh, error) {
	if filepath.Ext(path) == ".pck" {
		return vtk.ReadPickle(path)
	}
	return vtk.ReadFile(path)
}
