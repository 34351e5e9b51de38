// Package step implements the step subcommand: run one pipeline step from a
// workflow config file.
package step

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/pipeline"
)

// Command creates the step subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var configPath string

	names := make([]string, 0)
	for _, s := range pipeline.Steps() {
		names = append(names, s.Name())
	}

	cmd := &cobra.Command{
		Use:   "step NAME",
		Short: "Run one pipeline step from a workflow config file",
		Long: fmt.Sprintf("Runs a workflow step against the working directory named in "+
			"the config file. Available steps: %s.", strings.Join(names, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipeline.Run(cmd.Context(), args[0], configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Workflow config file (required)")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "V", false,
		"Enable verbose output")

	_ = cmd.MarkFlagRequired("config")
	return cmd
}
