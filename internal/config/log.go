package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogRotationConfig holds the resolved log file settings.
type LogRotationConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LogRotation resolves the [log] section against the built-in defaults.
func (c FileConfig) LogRotation() LogRotationConfig {
	out := LogRotationConfig{
		File:       DefaultLogPath(),
		MaxSizeMB:  DefaultLogMaxSizeMB,
		MaxBackups: DefaultLogMaxBackups,
		MaxAgeDays: DefaultLogMaxAgeDays,
	}
	if c.Log.File != nil && *c.Log.File != "" {
		out.File = *c.Log.File
	}
	if c.Log.MaxSizeMB != nil {
		out.MaxSizeMB = *c.Log.MaxSizeMB
	}
	if c.Log.MaxBackups != nil {
		out.MaxBackups = *c.Log.MaxBackups
	}
	if c.Log.MaxAgeDays != nil {
		out.MaxAgeDays = *c.Log.MaxAgeDays
	}
	if c.Log.Compress != nil {
		out.Compress = *c.Log.Compress
	}
	return out
}

// LogLevel returns the configured level, info when unset.
func (c FileConfig) LogLevel() slog.Level {
	if c.Log.Level == nil {
		return slog.LevelInfo
	}
	level, err := ParseLevel(*c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
