package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shadeopt.dev/pkg/shadeopt/internal/domain"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded reports into a single report",
		Long:  "Merge the reports saved by `run --shard` in shard_* subdirectories into a single report in the reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(reportsConfigKey))
			return workflow.Merge(cmd.Context(), domain.MergeArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
