package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/verte-zerg/tomato/internal/config"
	"github.com/verte-zerg/tomato/internal/notify"
)

// fileLogger is a logger writing to a rotating file.
type fileLogger struct {
	Logger   *slog.Logger
	LogFile  io.WriteCloser
	FilePath string
}

// Close closes the log file if it was opened.
func (r *fileLogger) Close() error {
	if r.LogFile != nil {
		return r.LogFile.Close()
	}
	return nil
}

// setupFileLogger creates a JSON logger on a rotating file so log output
// never corrupts the TUI display.
func setupFileLogger(rotation config.LogRotationConfig, level slog.Leveler) (*fileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(rotation.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	writer := &lumberjack.Logger{
		Filename:   rotation.File,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}
	return &fileLogger{
		Logger:   newJSONLogger(writer, level),
		LogFile:  writer,
		FilePath: rotation.File,
	}, nil
}

func newJSONLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newConsoleLogger logs human-readable lines, used when no TUI owns the screen.
func newConsoleLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logNotifier records user-facing notifications in the log.
func logNotifier(logger *slog.Logger) notify.Notifier {
	return notify.Func(func(msg string) {
		logger.Info("notification", "message", msg)
	})
}
