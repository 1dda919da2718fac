package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "mutorch"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	inputFlagName         = "input"
	outputFlagName        = "output"
	verboseFlagName       = "verbose"
	logFileFlagName       = "log-file"
	concurrencyFlagName   = "concurrency"
	timeoutFactorFlagName = "timeout-factor"
	timeoutMsFlagName     = "timeout-ms"
	overheadMsFlagName    = "overhead-ms"
	commandFlagName       = "command"
	shellFlagName         = "shell"
	breakFlagName         = "break"
	sourceRootFlagName    = "source-root"

	concurrencyConfigKey   = "run.concurrency"
	timeoutFactorConfigKey = "run.timeout_factor"
	timeoutMsConfigKey     = "run.timeout_ms"
	overheadMsConfigKey    = "run.overhead_ms"
	commandConfigKey       = "run.command"
	shellConfigKey         = "run.shell"
	workDirConfigKey       = "run.work_dir"
	spillDirConfigKey      = "run.spill_dir"
	breakConfigKey         = "run.break_threshold"
	sourceRootConfigKey    = "view.source_root"

	defaultInput         = "mutorch-session.yaml"
	defaultReportsDir    = ".mutorch-reports"
	defaultConcurrency   = 1
	defaultTimeoutFactor = 1.5
	defaultTimeoutMs     = 5000
	defaultOverheadMs    = 0
	defaultCommand       = "go test ./..."
	defaultShell         = "sh"
	defaultWorkDir       = "."
	defaultBreak         = 0.0

	envPrefix = "MUTORCH"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".mutorch.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("No config file loaded", "error", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(inputFlagName, defaultInput)
	viper.SetDefault(outputFlagName, defaultReportsDir)

	viper.SetDefault(concurrencyConfigKey, defaultConcurrency)
	viper.SetDefault(timeoutFactorConfigKey, defaultTimeoutFactor)
	viper.SetDefault(timeoutMsConfigKey, defaultTimeoutMs)
	viper.SetDefault(overheadMsConfigKey, defaultOverheadMs)
	viper.SetDefault(commandConfigKey, defaultCommand)
	viper.SetDefault(shellConfigKey, defaultShell)
	viper.SetDefault(workDirConfigKey, defaultWorkDir)
	viper.SetDefault(spillDirConfigKey, "")
	viper.SetDefault(breakConfigKey, defaultBreak)
	viper.SetDefault(sourceRootConfigKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
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

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
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
