package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/facetrace/cli/src/paths"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once

	// stderr receives the debug mirror; replaced in tests
	stderr io.Writer = os.Stderr
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string // debug, info, warn, error (default: warn)
	File     string // Log file path (empty = {log_dir}/cli.log)
	MaxSize  int    // Max log file size in MB (default: 10)
	MaxFiles int    // Max log files to keep (default: 5)
}

// GetLogConfig returns logging configuration from viper
func GetLogConfig() LogConfig {
	return LogConfig{
		Level:    viper.GetString("logging.level"),
		File:     viper.GetString("logging.file"),
		MaxSize:  viper.GetInt("logging.max_size"),
		MaxFiles: viper.GetInt("logging.max_files"),
	}
}

// parseLevel maps a level name to slog, defaulting to warn
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// InitLogging sets the default slog logger to a rotating JSON log file.
// With debug the level is forced to debug and records are copied to
// stderr.
func InitLogging(debug bool) error {
	var initErr error
	loggerOnce.Do(func() {
		cfg := GetLogConfig()

		logPath := cfg.File
		if logPath == "" {
			logPath = paths.LogFile()
		}
		logPath = paths.ExpandHome(logPath)

		if err := paths.EnsureParent(logPath); err != nil {
			initErr = fmt.Errorf("create log dir: %w", err)
			return
		}

		maxSize := cfg.MaxSize
		if maxSize == 0 {
			maxSize = 10
		}
		maxFiles := cfg.MaxFiles
		if maxFiles == 0 {
			maxFiles = 5
		}

		var w io.Writer = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    maxSize, // MB
			MaxBackups: maxFiles,
			MaxAge:     30, // days
			Compress:   true,
		}

		level := parseLevel(cfg.Level)
		if debug {
			level = slog.LevelDebug
			w = &multiWriter{writers: []io.Writer{w, stderr}}
		}

		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	})
	return initErr
}

// Logger returns the CLI logger
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogDebug logs a debug message
func LogDebug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// LogInfo logs an info message
func LogInfo(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// LogWarn logs a warning message
func LogWarn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// LogError logs an error message
func LogError(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// multiWriter writes to every destination. A failing destination does
// not stop the others.
type multiWriter struct {
	writers []io.Writer
}

func (mw *multiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		if _, werr := w.Write(p); werr != nil && err == nil {
			err = werr
		}
	}
	return len(p), err
}
