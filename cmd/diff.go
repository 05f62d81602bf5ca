package cmd

import (
	"github.com/spf13/cobra"

	"shadeopt.dev/pkg/shadeopt/internal/domain"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <input>",
		Short: "Show what the optimizer would change",
		Long: `Print a unified diff between a shader and its optimized form. Nothing is
written to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optimizerOptions()
			if err != nil {
				return err
			}

			return workflow.Diff(cmd.Context(), domain.DiffArgs{
				Input:   m.Path(args[0]),
				Options: opts,
			})
		},
	}

	configureOptimizerFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
