// Package cmd assembles the b3-2d command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wr1/b3-2d/cmd/anba"
	"github.com/wr1/b3-2d/cmd/mesh"
	"github.com/wr1/b3-2d/cmd/plot"
	"github.com/wr1/b3-2d/cmd/post"
	"github.com/wr1/b3-2d/cmd/step"
	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "b3-2d",
		Short: "2D cross-section meshing for blade FE pre-processing",
		Long: "b3-2d slices a draped blade surface mesh into spanwise sections and " +
			"generates a structured 2D cross-section mesh per section, ready for " +
			"cross-sectional analysis with ANBA4.",
		SilenceUsage: true,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		// Flag binding only fails on programming errors.
		panic(err)
	}

	rootCmd.AddCommand(
		mesh.Command(settings),
		plot.Command(settings),
		anba.Command(settings),
		post.Command(settings),
		step.Command(settings),
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		switch {
		case settings.Debug:
			logging.SetLevel(slog.LevelDebug)
		case settings.Verbose:
			logging.SetLevel(slog.LevelInfo)
		default:
			logging.SetLevel(slog.LevelWarn)
		}
	}

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d",
		viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.MatDBPath, "matdb",
		viper.GetString("matdbpath"), "Material database YAML file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
