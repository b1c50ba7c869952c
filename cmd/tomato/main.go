// Package main provides the CLI entrypoint for tomato.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tomato/internal/config"
	"github.com/verte-zerg/tomato/internal/notify"
	"github.com/verte-zerg/tomato/internal/sound"
	"github.com/verte-zerg/tomato/internal/timer"
	"github.com/verte-zerg/tomato/internal/tui"
)

const shutdownTimeout = 10 * time.Second

var (
	primaryDir       string
	dbPath           string
	ephemeral        bool
	tickMS           int
	autoStartDelayMS int
	soundDir         string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tomato",
		Short:         "Terminal Pomodoro timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&primaryDir, "primary-dir", config.DefaultPrimaryDir(), "primary store directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "local SQLite store path")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep settings and stats in memory only")
	rootCmd.PersistentFlags().IntVar(&tickMS, "tick", config.DefaultTickMS, "countdown wake-up interval in milliseconds")
	rootCmd.PersistentFlags().IntVar(&autoStartDelayMS, "auto-start-delay", config.DefaultAutoStartDelayMS, "delay before an auto-started session in milliseconds")
	rootCmd.PersistentFlags().StringVar(&soundDir, "sound-dir", config.DefaultSoundDir(), "directory with sound1.wav .. sound10.wav")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newSoundsCmd())
	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

// runtimeOptions are the resolved flag and config values.
type runtimeOptions struct {
	PrimaryDir     string
	DBPath         string
	Ephemeral      bool
	TickInterval   time.Duration
	AutoStartDelay time.Duration
	SoundDir       string
	ToastTTL       time.Duration
	File           config.FileConfig
}

// resolveOptions layers defaults, the config file and explicit flags.
func resolveOptions(cmd *cobra.Command) (runtimeOptions, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return runtimeOptions{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "primary-dir", &primaryDir, fileCfg.Storage.PrimaryDir)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.DBPath)
	applyIntConfig(cmd, "tick", &tickMS, fileCfg.Timer.TickMS)
	applyIntConfig(cmd, "auto-start-delay", &autoStartDelayMS, fileCfg.Timer.AutoStartDelayMS)
	applyStringConfig(cmd, "sound-dir", &soundDir, fileCfg.Sound.Dir)

	notifySeconds := config.DefaultNotifySeconds
	if fileCfg.Notify.Seconds != nil {
		notifySeconds = *fileCfg.Notify.Seconds
	}

	opts := runtimeOptions{
		PrimaryDir:     primaryDir,
		DBPath:         dbPath,
		Ephemeral:      ephemeral,
		TickInterval:   config.Millis(tickMS),
		AutoStartDelay: config.Millis(autoStartDelayMS),
		SoundDir:       soundDir,
		ToastTTL:       time.Duration(notifySeconds) * time.Second,
		File:           fileCfg,
	}
	if err := validateOptions(opts); err != nil {
		return runtimeOptions{}, err
	}
	return opts, nil
}

func validateOptions(opts runtimeOptions) error {
	if opts.TickInterval < 10*time.Millisecond || opts.TickInterval > time.Second {
		return fmt.Errorf("--tick must be between 10 and 1000")
	}
	if opts.AutoStartDelay < 0 {
		return fmt.Errorf("--auto-start-delay must be >= 0")
	}
	if !opts.Ephemeral {
		if strings.TrimSpace(opts.PrimaryDir) == "" {
			return fmt.Errorf("--primary-dir must not be empty")
		}
		if strings.TrimSpace(opts.DBPath) == "" {
			return fmt.Errorf("--db must not be empty")
		}
	}
	return nil
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	if !isTerminal() {
		return runHeadlessCmd(cmd)
	}
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	logs, err := setupFileLogger(opts.File.LogRotation(), opts.File.LogLevel())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		if cerr := logs.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	logger := logs.Logger

	toasts := notify.NewChannel(16)
	defer toasts.Close()

	notifier := notify.Multi{toasts, logNotifier(logger)}

	a, err := openApp(cmd.Context(), opts, logger, notifier)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctl := timer.New(a.tracker.Settings(), timer.Options{
		Recorder:       a.tracker,
		Player:         sound.NewCommandPlayer(opts.SoundDir, logger),
		Notifier:       notifier,
		TickInterval:   opts.TickInterval,
		AutoStartDelay: opts.AutoStartDelay,
		Logger:         logger,
	})
	defer ctl.Close()

	model := tui.NewModel(tui.Deps{
		Controller: ctl,
		Tracker:    a.tracker,
		Toasts:     toasts.C(),
		ToastTTL:   opts.ToastTTL,
		Logger:     logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func closeApp(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		logErrf("failed to close storage: %v\n", err)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
