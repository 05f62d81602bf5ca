package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shadeopt.dev/pkg/shadeopt/internal/domain"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

var runParallelFlag int
var runOutDirFlag string
var runIncrementalFlag bool
var runShardFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Optimize shaders in batch",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optimizerOptions()
			if err != nil {
				return err
			}

			shardIndex, shardCount, err := parseShardFlag(runShardFlag)
			if err != nil {
				return err
			}

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Paths:       parsePaths(args),
				Exclude:     viper.GetStringSlice(excludeConfigKey),
				Extensions:  viper.GetStringSlice(extensionsConfigKey),
				OutDir:      m.Path(viper.GetString(runOutDirConfigKey)),
				Reports:     m.Path(viper.GetString(reportsConfigKey)),
				Threads:     viper.GetInt(runParallelConfigKey),
				Incremental: viper.GetBool(incrementalConfigKey),
				ShardIndex:  shardIndex,
				ShardCount:  shardCount,
				Options:     opts,
			})
		},
	}

	configureOptimizerFlags(cmd)
	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", defaultRunParallel, "number of parallel workers")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVar(&runOutDirFlag, runOutDirFlagName, defaultOutDir, "directory the optimized shaders are written to (empty: report only)")
	bindFlagToConfig(cmd.Flags().Lookup(runOutDirFlagName), runOutDirConfigKey)

	cmd.Flags().BoolVar(&runIncrementalFlag, incrementalFlagName, false, "skip shaders unchanged since the last saved report")
	bindFlagToConfig(cmd.Flags().Lookup(incrementalFlagName), incrementalConfigKey)

	cmd.Flags().StringVarP(&runShardFlag, shardFlagName, "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

// parseShardFlag parses INDEX/TOTAL. An empty value means a single shard.
func parseShardFlag(shard string) (int, int, error) {
	if shard == "" {
		return 0, 1, nil
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 0, fmt.Errorf("invalid shard %q: want INDEX/TOTAL with 0 <= INDEX < TOTAL", shard)
	}

	return index, total, nil
}
