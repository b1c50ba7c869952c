// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Built-in defaults used when neither the config file nor a flag sets a value.
const (
	DefaultTickMS           = 100
	DefaultAutoStartDelayMS = 1500
	DefaultNotifySeconds    = 3
	DefaultLogLevel         = "info"
	DefaultLogMaxSizeMB     = 5
	DefaultLogMaxBackups    = 3
	DefaultLogMaxAgeDays    = 28
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage StorageConfig `toml:"storage"`
	Timer   TimerConfig   `toml:"timer"`
	Sound   SoundConfig   `toml:"sound"`
	Notify  NotifyConfig  `toml:"notify"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig maps persistence locations.
type StorageConfig struct {
	PrimaryDir *string `toml:"primary-dir"`
	DBPath     *string `toml:"db-path"`
}

// TimerConfig maps countdown runtime options.
type TimerConfig struct {
	TickMS           *int `toml:"tick-ms"`
	AutoStartDelayMS *int `toml:"auto-start-delay-ms"`
}

// SoundConfig maps sound playback options.
type SoundConfig struct {
	Dir *string `toml:"dir"`
}

// NotifyConfig maps toast options.
type NotifyConfig struct {
	Seconds *int `toml:"seconds"`
}

// LogConfig maps the log file and its rotation.
type LogConfig struct {
	Level      *string `toml:"level"`
	File       *string `toml:"file"`
	MaxSizeMB  *int    `toml:"max-size-mb"`
	MaxBackups *int    `toml:"max-backups"`
	MaxAgeDays *int    `toml:"max-age-days"`
	Compress   *bool   `toml:"compress"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c FileConfig) Validate() error {
	if v := c.Timer.TickMS; v != nil && (*v < 10 || *v > 1000) {
		return fmt.Errorf("timer.tick-ms must be between 10 and 1000")
	}
	if v := c.Timer.AutoStartDelayMS; v != nil && *v < 0 {
		return fmt.Errorf("timer.auto-start-delay-ms must be >= 0")
	}
	if v := c.Notify.Seconds; v != nil && *v <= 0 {
		return fmt.Errorf("notify.seconds must be > 0")
	}
	if v := c.Log.Level; v != nil {
		if _, err := ParseLevel(*v); err != nil {
			return err
		}
	}
	for name, v := range map[string]*int{
		"log.max-size-mb":  c.Log.MaxSizeMB,
		"log.max-backups":  c.Log.MaxBackups,
		"log.max-age-days": c.Log.MaxAgeDays,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	return nil
}

// Millis converts a millisecond count to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Template returns the commented config file written by `tomato config`.
func Template() string {
	return fmt.Sprintf(`# tomato configuration
# Uncomment a value to enable it. CLI flags override config values.

[storage]
# primary-dir = %q   # Primary store directory (point it at a synced folder)
# db-path = %q       # Local SQLite store and session journal

[timer]
# tick-ms = %d              # Countdown wake-up interval
# auto-start-delay-ms = %d # Pause before an auto-started session begins

[sound]
# dir = %q   # Directory with sound1.wav .. sound10.wav

[notify]
# seconds = %d   # How long a notification stays visible

[log]
# level = %q        # debug, info, warn or error
# file = %q
# max-size-mb = %d
# max-backups = %d
# max-age-days = %d
# compress = false
`,
		DefaultPrimaryDir(),
		DefaultDBPath(),
		DefaultTickMS,
		DefaultAutoStartDelayMS,
		DefaultSoundDir(),
		DefaultNotifySeconds,
		DefaultLogLevel,
		DefaultLogPath(),
		DefaultLogMaxSizeMB,
		DefaultLogMaxBackups,
		DefaultLogMaxAgeDays,
	)
}
