// Package post implements the post subcommand: spanwise roll-up plots of
// BOM and solver results.
package post

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/bom"
	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/plot"
)

// Command creates the post subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Render spanwise BOM and solver result charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	cmd.Flags().StringVarP(&settings.Output.Dir, "output-dir", "o", "",
		"Directory holding the section_<i>/ outputs (required)")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "V", false,
		"Enable verbose output")

	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func run(settings *conf.Settings) error {
	outputDir := settings.Output.Dir
	opts := plot.ChartOptions{Width: settings.Plot.Width, Height: settings.Plot.Height}

	boms, err := bom.LoadSpanwise(outputDir)
	if err != nil {
		return err
	}
	if len(boms) == 0 {
		slog.Warn("no BOM data found, skipping spanwise BOM plot", "output_dir", outputDir)
	} else {
		path := filepath.Join(outputDir, "bom_spanwise.png")
		if err := plot.SaveSpanwiseBOM(boms, path, opts); err != nil {
			return err
		}
		slog.Info("wrote spanwise BOM plot", "path", path)
	}

	results, err := anba.LoadSpanwise(outputDir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		slog.Warn("no solver results found, skipping spanwise plot", "output_dir", outputDir)
	} else {
		path := filepath.Join(outputDir, "anba_spanwise.png")
		if err := plot.SaveSpanwiseAnba(results, path, opts); err != nil {
			return err
		}
		slog.Info("wrote spanwise solver plot", "path", path)
	}

	meshOpts := plot.MeshOptions{
		Scalar: settings.Plot.Scalar,
		Width:  settings.Plot.Width,
		Height: settings.Plot.Height,
	}
	written, err := plot.RenderSectionResults(outputDir, meshOpts)
	if err != nil {
		return err
	}
	if written > 0 {
		slog.Info("wrote per-section solver plots", "count", written, "output_dir", outputDir)
	}
	return nil
}
