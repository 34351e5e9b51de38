// Package logging configures the application loggers. It provides a
// human-readable default logger on stderr and JSON file loggers with
// rotation for long-running batch output.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var levelVar = new(slog.LevelVar)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the default logger with a text handler on stderr.
// The level can be raised later with SetLevel.
func Init() {
	levelVar.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: replaceLevelAttr,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLevel sets the minimum logging level for the default logger.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// ForService returns a logger tagged with a service attribute, sharing the
// default handler.
func ForService(serviceName string) *slog.Logger {
	return slog.Default().With("service", serviceName)
}

// NewFileLogger creates a slog.Logger writing JSON records to filePath using
// lumberjack for rotation. It includes a 'service' attribute in all records
// and returns the logger together with a close function for the underlying
// writer.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelAttr,
	})

	logger := slog.New(fileHandler).With("service", serviceName)
	return logger, logWriter.Close, nil
}
