package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/notify"
	"github.com/verte-zerg/tomato/internal/sound"
	"github.com/verte-zerg/tomato/internal/stats"
	"github.com/verte-zerg/tomato/internal/timer"
)

const defaultHistoryDays = 28

var (
	statsHistoryDays int
	statsReset       bool

	settingsJSON bool

	setWork         int
	setShortBreak   int
	setLongBreak    int
	setCycle        int
	setSound        string
	setSoundEnabled bool
	setAutoBreaks   bool
	setAutoWork     bool

	runHeadlessFlag bool
)

// cliNotifier prints notifications to stderr.
var cliNotifier = notify.Func(func(msg string) {
	logErrf("%s\n", msg)
})

func cliLogger() *slog.Logger {
	return newConsoleLogger(os.Stderr, slog.LevelWarn)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsHistoryDays, "history-days", defaultHistoryDays, "days of session history to chart (0 disables)")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "reset all statistics")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsHistoryDays < 0 {
		return fmt.Errorf("--history-days must be >= 0")
	}
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), opts, cliLogger(), cliNotifier)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if statsReset {
		return a.tracker.ResetStats(cmd.Context())
	}

	now := time.Now()
	var history []model.DailyTotal
	if a.db != nil && statsHistoryDays > 0 {
		since := now.AddDate(0, 0, -(statsHistoryDays - 1))
		history, err = a.db.DailyTotals(cmd.Context(), since, now)
		if err != nil {
			logErrf("failed to load session history: %v\n", err)
			history = nil
		}
	}
	return stats.RenderSummary(cmd.OutOrStdout(), a.tracker.Stats(), history, now, stats.TerminalWidth())
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShowCmd,
	}
	show.Flags().BoolVar(&settingsJSON, "json", false, "print JSON instead of YAML")

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsSetCmd,
	}
	set.Flags().IntVar(&setWork, "work", 0, "work session length in minutes (1-60)")
	set.Flags().IntVar(&setShortBreak, "short-break", 0, "short break length in minutes (1-30)")
	set.Flags().IntVar(&setLongBreak, "long-break", 0, "long break length in minutes (5-60)")
	set.Flags().IntVar(&setCycle, "cycle", 0, "work sessions before a long break (2-8)")
	set.Flags().StringVar(&setSound, "sound", "", "notification sound (1-10 or sound1-sound10)")
	set.Flags().BoolVar(&setSoundEnabled, "sound-enabled", true, "play a sound when a session ends")
	set.Flags().BoolVar(&setAutoBreaks, "auto-breaks", false, "start breaks automatically")
	set.Flags().BoolVar(&setAutoWork, "auto-work", false, "start work sessions automatically")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsResetCmd,
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func runSettingsShowCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), opts, cliLogger(), notify.Nop{})
	if err != nil {
		return err
	}
	defer closeApp(a)
	return writeSettings(cmd, a.tracker.Settings())
}

func writeSettings(cmd *cobra.Command, s model.Settings) error {
	var (
		data []byte
		err  error
	)
	if settingsJSON {
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runSettingsSetCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), opts, cliLogger(), cliNotifier)
	if err != nil {
		return err
	}
	defer closeApp(a)

	next, err := applySettingsFlags(cmd, a.tracker.Settings())
	if err != nil {
		return err
	}
	return a.tracker.SaveSettings(cmd.Context(), next)
}

// applySettingsFlags overlays the flags the user passed onto s.
func applySettingsFlags(cmd *cobra.Command, s model.Settings) (model.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("work") {
		s.WorkDuration = setWork
	}
	if flags.Changed("short-break") {
		s.ShortBreakDuration = setShortBreak
	}
	if flags.Changed("long-break") {
		s.LongBreakDuration = setLongBreak
	}
	if flags.Changed("cycle") {
		s.SessionsUntilLongBreak = setCycle
	}
	if flags.Changed("sound") {
		id, err := parseSoundID(setSound)
		if err != nil {
			return s, err
		}
		s.SelectedSound = id
	}
	if flags.Changed("sound-enabled") {
		s.SoundEnabled = setSoundEnabled
	}
	if flags.Changed("auto-breaks") {
		s.AutoStartBreaks = setAutoBreaks
	}
	if flags.Changed("auto-work") {
		s.AutoStartWork = setAutoWork
	}
	return s, nil
}

func runSettingsResetCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), opts, cliLogger(), cliNotifier)
	if err != nil {
		return err
	}
	defer closeApp(a)
	_, err = a.tracker.ResetSettings(cmd.Context())
	return err
}

func newSoundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "List notification sounds",
		Args:  cobra.NoArgs,
		RunE:  runSoundsCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "play <id>",
		Short: "Preview a notification sound",
		Args:  cobra.ExactArgs(1),
		RunE:  runSoundsPlayCmd,
	})
	return cmd
}

func runSoundsCmd(cmd *cobra.Command, _ []string) error {
	for _, entry := range sound.Catalog() {
		marker := " "
		if entry.ID == model.DefaultSound {
			marker = "*"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s %s\n", marker, entry.ID, entry.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runSoundsPlayCmd(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	id, err := parseSoundID(args[0])
	if err != nil {
		return err
	}
	player := sound.NewCommandPlayer(opts.SoundDir, cliLogger())
	player.Fallback = sound.BellPlayer{W: cmd.OutOrStdout()}
	return player.PlayWait(cmd.Context(), id)
}

// parseSoundID accepts "4" or "sound4".
func parseSoundID(value string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(strings.ToLower(value)), "sound")
	n, err := strconv.Atoi(trimmed)
	if err != nil || !model.ValidSound(model.SoundID(n)) {
		return "", fmt.Errorf("unknown sound %q (expected 1-%d or sound1-sound%d)", value, model.SoundCount, model.SoundCount)
	}
	return model.SoundID(n), nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer",
		Args:  cobra.NoArgs,
		RunE:  runRunCmd,
	}
	cmd.Flags().BoolVar(&runHeadlessFlag, "headless", false, "run without the TUI, printing events until interrupted")
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	if runHeadlessFlag {
		return runHeadlessCmd(cmd)
	}
	return runTimerCmd(cmd, args)
}

// runHeadlessCmd runs the controller without a TUI until SIGINT or SIGTERM.
func runHeadlessCmd(cmd *cobra.Command) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	logger := newConsoleLogger(os.Stderr, opts.File.LogLevel())

	toasts := notify.NewChannel(16)
	defer toasts.Close()

	a, err := openApp(cmd.Context(), opts, logger, toasts)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctl := timer.New(a.tracker.Settings(), timer.Options{
		Recorder:       a.tracker,
		Player:         sound.NewCommandPlayer(opts.SoundDir, logger),
		Notifier:       toasts,
		TickInterval:   opts.TickInterval,
		AutoStartDelay: opts.AutoStartDelay,
		Logger:         logger,
	})
	defer ctl.Close()

	events := ctl.Subscribe(64)
	stop, release := notifySignals()
	defer release()

	ctl.Start()
	logger.Info("timer started", "session", string(ctl.Snapshot().Kind))
	return runHeadless(cmd.OutOrStdout(), events, toasts.C(), stop)
}
