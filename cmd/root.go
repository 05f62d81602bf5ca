// Package cmd provides the root command and CLI setup for shadeopt.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"shadeopt.dev/pkg/shadeopt/internal/adapter"
	"shadeopt.dev/pkg/shadeopt/internal/controller"
	"shadeopt.dev/pkg/shadeopt/internal/domain"
	"shadeopt.dev/pkg/shadeopt/internal/domain/stages"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

var sourceFSAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// appCtx is cancelled by the TUI when the user aborts a batch run.
var appCtx, cancelApp = context.WithCancel(context.Background())

// reportsDirFlag is a root-level flag shared by commands that read/write reports.
var reportsDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// extensionsFlag overrides the shader file extensions for applicable commands.
var extensionsFlag []string

var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout), controller.WithInterrupt(cancelApp))
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		sourceFSAdapter,
		reportStore,
		ui,
		domain.NewOptimizer,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...              recursively scan current directory
  - ./shaders/...      recursively scan the shaders directory
  - ./fx ./post        scan multiple directories (not recursive)
  - ./fx/blur.frag     a single file`

const rootLongDescription = `shadeopt is a source-to-source optimizer for GLSL shaders. It strips
comments and whitespace, merges declarations, inlines tiny functions, unrolls
short loops and folds known uniforms into literals.

` + pathPatternsHelp

const runLongDescription = `Optimize every shader matched by the given paths (default: ./...) and
write the results under the output directory, mirroring the source tree.

Large trees can be split across machines with --shard INDEX/TOTAL; each shard
saves its report under <reports>/shard_<INDEX> and "shadeopt merge" combines them.

` + pathPatternsHelp

const listLongDescription = `List the shader files matched by the given paths with their sizes and hashes.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "shadeopt",
		Short:        "GLSL shader source optimizer",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			configureLogger(logFileFlag, verboseFlag)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a root command with its persistent flags bound.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsDirFlag, reportsFlagName, "r",
			viper.GetString(reportsConfigKey),
			"directory for optimization reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportsFlagName), reportsConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringSliceVar(&extensionsFlag, extensionsFlagName, viper.GetStringSlice(extensionsConfigKey), "shader file extensions to scan")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(extensionsFlagName), extensionsConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
}

// configureOptimizerFlags registers the pipeline tuning flags. They are bound to
// config keys when the command runs, since several commands share the keys.
// Defaults shown in help are the built-in ones; config and env still apply.
func configureOptimizerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Int(inlineFlagName, stages.DefaultInlineThreshold, "inline functions whose body is shorter than this many characters")
	flags.Int(unrollFlagName, stages.DefaultUnrollThreshold, "unroll loops whose body is shorter than this many characters")
	flags.String(unrollModeFlagName, string(stages.UnrollLiteral), "loop unrolling mode: literal or trip-count")
	flags.Int(maxUnrollFlagName, stages.DefaultMaxUnroll, "largest trip count expanded in trip-count mode")
	flags.Int(maxInputFlagName, domain.DefaultMaxInputSize, "reject shaders larger than this many bytes (0: no limit)")
	flags.Int64(stageTimeoutFlagName, 0, "per-shader optimization deadline in seconds (0: none)")
	flags.StringArray(uniformFlagName, nil, "fold a uniform to a literal, as name=value (can be repeated)")
	flags.Bool(keepUnknownFlagName, false, "keep declarations of uniforms without a known value")
	flags.Bool(dropZeroBiasFlagName, false, "drop a zero bias argument from texture() calls")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		bindOptimizerFlags(cmd)
		return nil
	}
}

func bindOptimizerFlags(cmd *cobra.Command) {
	bindings := map[string]string{
		inlineFlagName:       inlineConfigKey,
		unrollFlagName:       unrollConfigKey,
		unrollModeFlagName:   unrollModeConfigKey,
		maxUnrollFlagName:    maxUnrollConfigKey,
		maxInputFlagName:     maxInputConfigKey,
		stageTimeoutFlagName: stageTimeoutKey,
		uniformFlagName:      uniformValuesKey,
		keepUnknownFlagName:  keepUnknownKey,
		dropZeroBiasFlagName: dropZeroBiasKey,
	}

	for name, key := range bindings {
		bindFlagToConfig(cmd.Flags().Lookup(name), key)
	}
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(appCtx, os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()
	cancelApp()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
