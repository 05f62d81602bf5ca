package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"shadeopt.dev/pkg/shadeopt/internal/adapter"
	"shadeopt.dev/pkg/shadeopt/internal/domain"
	"shadeopt.dev/pkg/shadeopt/internal/domain/stages"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "shadeopt"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	reportsFlagName      = "reports"
	excludeFlagName      = "exclude"
	extensionsFlagName   = "ext"
	verboseFlagName      = "verbose"
	logFileFlagName      = "log-file"
	runParallelFlagName  = "parallel"
	runOutDirFlagName    = "out-dir"
	incrementalFlagName  = "incremental"
	shardFlagName        = "shard"
	inlineFlagName       = "inline-threshold"
	unrollFlagName       = "unroll-threshold"
	unrollModeFlagName   = "unroll-mode"
	maxUnrollFlagName    = "max-unroll"
	maxInputFlagName     = "max-input-size"
	stageTimeoutFlagName = "stage-timeout"
	uniformFlagName      = "uniform"
	keepUnknownFlagName  = "keep-unknown-uniforms"
	dropZeroBiasFlagName = "drop-zero-bias"

	reportsConfigKey     = "reports"
	runParallelConfigKey = "run.parallel"
	runOutDirConfigKey   = "run.out_dir"
	incrementalConfigKey = "run.incremental"
	excludeConfigKey     = "paths.exclude"
	extensionsConfigKey  = "paths.extensions"
	inlineConfigKey      = "optimize.inline_threshold"
	unrollConfigKey      = "optimize.unroll_threshold"
	unrollModeConfigKey  = "optimize.unroll_mode"
	maxUnrollConfigKey   = "optimize.max_unroll"
	maxInputConfigKey    = "optimize.max_input_size"
	stageTimeoutKey      = "optimize.stage_timeout"
	uniformValuesKey     = "uniform.values"
	keepUnknownKey       = "uniform.keep_unknown"
	dropZeroBiasKey      = "texture.drop_zero_bias"

	defaultReportsDir  = ".shadeopt-reports"
	defaultOutDir      = ".shadeopt-out"
	defaultRunParallel = 1

	envPrefix = "SHADEOPT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".shadeopt.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var uniformNamePattern = regexp.MustCompile(`^\w+$`)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := readConfig(); err != nil {
		slog.Warn("Ignoring unreadable config file", "error", err)
	}
}

// readConfig loads shadeopt.yaml. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(reportsConfigKey, defaultReportsDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runOutDirConfigKey, defaultOutDir)
	viper.SetDefault(incrementalConfigKey, false)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(extensionsConfigKey, adapter.DefaultExtensions)

	viper.SetDefault(inlineConfigKey, stages.DefaultInlineThreshold)
	viper.SetDefault(unrollConfigKey, stages.DefaultUnrollThreshold)
	viper.SetDefault(unrollModeConfigKey, string(stages.UnrollLiteral))
	viper.SetDefault(maxUnrollConfigKey, stages.DefaultMaxUnroll)
	viper.SetDefault(maxInputConfigKey, domain.DefaultMaxInputSize)
	viper.SetDefault(stageTimeoutKey, 0)
	viper.SetDefault(uniformValuesKey, []string{})
	viper.SetDefault(keepUnknownKey, false)
	viper.SetDefault(dropZeroBiasKey, false)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// optimizerOptions builds the pipeline options from config, env and bound flags.
func optimizerOptions() (domain.Options, error) {
	mode, err := stages.ParseUnrollMode(viper.GetString(unrollModeConfigKey))
	if err != nil {
		return domain.Options{}, err
	}

	uniforms, err := parseUniforms(viper.GetStringSlice(uniformValuesKey))
	if err != nil {
		return domain.Options{}, err
	}

	opts := domain.DefaultOptions()
	opts.Stages.InlineThreshold = viper.GetInt(inlineConfigKey)
	opts.Stages.UnrollThreshold = viper.GetInt(unrollConfigKey)
	opts.Stages.UnrollMode = mode
	opts.Stages.MaxUnroll = viper.GetInt(maxUnrollConfigKey)
	opts.Stages.Uniforms = m.DefaultUniforms().With(uniforms)
	opts.Stages.KeepUnknownUniforms = viper.GetBool(keepUnknownKey)
	opts.MaxInputSize = viper.GetInt(maxInputConfigKey)
	opts.Timeout = time.Duration(viper.GetInt64(stageTimeoutKey)) * time.Second

	if viper.GetBool(dropZeroBiasKey) {
		opts.Stages.TextureRewriter = stages.DropZeroBias
	}

	return opts, nil
}

// parseUniforms turns "name=value" entries into a lookup map. Later entries win.
func parseUniforms(entries []string) (map[string]string, error) {
	values := make(map[string]string, len(entries))

	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if !ok || !uniformNamePattern.MatchString(name) || value == "" {
			return nil, fmt.Errorf("invalid uniform %q: want name=value", entry)
		}

		values[name] = value
	}

	return values, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
//
// It logs at log.level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
