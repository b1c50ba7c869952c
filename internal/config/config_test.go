package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Timer.TickMS != nil || cfg.Storage.PrimaryDir != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
[storage]
primary-dir = "/tmp/sync"

[timer]
tick-ms = 250
auto-start-delay-ms = 0

[log]
level = "debug"
max-backups = 1
compress = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.PrimaryDir == nil || *cfg.Storage.PrimaryDir != "/tmp/sync" {
		t.Fatalf("primary-dir not decoded: %+v", cfg.Storage)
	}
	if cfg.Storage.DBPath != nil {
		t.Fatalf("unset db-path should stay nil")
	}
	if cfg.Timer.TickMS == nil || *cfg.Timer.TickMS != 250 {
		t.Fatalf("tick-ms not decoded")
	}
	if cfg.Timer.AutoStartDelayMS == nil || *cfg.Timer.AutoStartDelayMS != 0 {
		t.Fatalf("explicit zero should be kept")
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected level %v", cfg.LogLevel())
	}
	rot := cfg.LogRotation()
	if rot.MaxBackups != 1 || !rot.Compress || rot.MaxSizeMB != DefaultLogMaxSizeMB {
		t.Fatalf("unexpected rotation %+v", rot)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[timer]\nspeed = 2\n",
		"tick too fast": "[timer]\ntick-ms = 1\n",
		"bad level":     "[log]\nlevel = \"loud\"\n",
		"negative size": "[log]\nmax-size-mb = -1\n",
		"zero notify":   "[notify]\nseconds = 0\n",
		"syntax":        "[timer\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTemplateDecodesToEmptyConfig(t *testing.T) {
	var cfg FileConfig
	if _, err := toml.Decode(Template(), &cfg); err != nil {
		t.Fatalf("template should be valid TOML: %v", err)
	}
	if cfg.Timer.TickMS != nil || cfg.Log.Level != nil {
		t.Fatalf("template values should be commented out: %+v", cfg)
	}
	if !strings.Contains(Template(), "[storage]") {
		t.Fatalf("template missing storage section")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	cases := map[string]string{
		DefaultConfigPath(): "/cfg/tomato/config.toml",
		DefaultDBPath():     "/data/tomato/tomato.db",
		DefaultPrimaryDir(): "/data/tomato/sync",
		DefaultSoundDir():   "/data/tomato/sounds",
		DefaultLogPath():    "/state/tomato/tomato.log",
	}
	for got, want := range cases {
		if got != filepath.FromSlash(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
