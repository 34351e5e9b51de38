// Package anba implements the anba subcommand: run the external ANBA4
// solver on every section's solver input.
package anba

import (
	"github.com/spf13/cobra"

	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/conf"
)

// Command creates the anba subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anba",
		Short: "Run the ANBA4 solver on every section_*/anba.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := anba.NewRunner(settings.Anba.Env)
			if err != nil {
				return err
			}
			if err := runner.CheckEnv(cmd.Context()); err != nil {
				return err
			}
			_, err = runner.RunAll(cmd.Context(), settings.Output.Dir)
			return err
		},
	}

	cmd.Flags().StringVarP(&settings.Output.Dir, "output-dir", "o", "",
		"Directory holding the section_<i>/ outputs (required)")
	cmd.Flags().StringVarP(&settings.Anba.Env, "anba-env", "e",
		settings.Anba.Env, "Conda environment holding anba4-run")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "V", false,
		"Enable verbose output")

	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}
