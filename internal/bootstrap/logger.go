package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/config"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// SetupLogger initializes the application logger with stdout and session file output.
// It creates the log directory, prunes old session files and installs the
// result as the slog default. The caller must close the returned file.
func SetupLogger(cfg *config.Config, serviceName string) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateLogsDir, err)
	}

	cleanupLogs(cfg.LogDir, LogFileRetentionCount)

	timestamp := time.Now().Format(LogFileTimestampFormat)
	logFileName := filepath.Join(cfg.LogDir, fmt.Sprintf(LogFileNamePattern, timestamp))

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenLogFile, err)
	}

	loggerConfig := newLoggerConfig(cfg, serviceName)
	slog.SetDefault(logger.New(loggerConfig, io.MultiWriter(os.Stdout, logFile)))

	slog.Info(LogMsgLoggingInitialized, "level", loggerConfig.LogLevel(), "file", logFileName)
	slog.Info(LogMsgStartingRespawnQueue,
		"environment", cfg.Environment,
		"log_level", loggerConfig.Level,
		"log_format", loggerConfig.Format,
		"version", cfg.Version)

	slog.Debug(LogMsgConfigurationLoaded,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"port", cfg.Port,
		"housekeeping_interval", cfg.HousekeepingInterval,
		"purge_schedule", cfg.NotificationPurgeSchedule)

	return logFile, nil
}

// cleanupLogs removes the oldest session files so that at most keep remain.
// Session file names sort chronologically.
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= keep {
		return
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			fmt.Fprintf(os.Stderr, LogMsgFailedDeleteOldLog, name, err)
		}
	}
}

// newLoggerConfig starts from the ENVIRONMENT preset and applies LOG_LEVEL,
// LOG_FORMAT, VERSION and LOG_ADD_SOURCE on top
func newLoggerConfig(cfg *config.Config, serviceName string) logger.Config {
	loggerConfig := logger.ForEnvironment(serviceName, cfg.Environment).
		With(cfg.LogLevel, cfg.LogFormat, cfg.Version)
	loggerConfig.AddSource = cfg.AddSource()
	return loggerConfig
}
