package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shadeopt.dev/pkg/shadeopt/internal/domain"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// optimizeCmd represents the optimize command.
var optimizeCmd = newOptimizeCmd()

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <input> [output]",
		Short: "Optimize a single shader",
		Long: `Optimize one shader file. The result is written to output, replacing it,
or to stdout when no output is given. Size metrics are printed to stdout, or to
stderr when the shader itself goes to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optimizerOptions()
			if err != nil {
				return err
			}

			optimizeArgs := domain.OptimizeArgs{
				Input:   m.Path(args[0]),
				Options: opts,
			}

			if len(args) == 2 {
				optimizeArgs.Output = m.Path(args[1])
			}

			result, err := workflow.Optimize(cmd.Context(), optimizeArgs)
			if err != nil {
				return err
			}

			metrics := cmd.OutOrStdout()

			if optimizeArgs.Output == "" {
				if _, err := io.WriteString(cmd.OutOrStdout(), result.Code); err != nil {
					return err
				}

				metrics = cmd.ErrOrStderr()
			}

			return printMetrics(metrics, result.Stats)
		},
	}

	configureOptimizerFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func printMetrics(w io.Writer, stats m.Stats) error {
	_, err := fmt.Fprintf(w,
		"Initial shader code size: %d bytes\n"+
			"Optimized shader code size: %d bytes\n"+
			"Approximate percentage boost: %.2f %%\n"+
			"Optimization time: %.2f seconds\n",
		stats.InitialSize, stats.OptimizedSize, stats.Boost, stats.Elapsed.Seconds())

	return err
}
