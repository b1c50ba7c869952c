package stats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/tomato/internal/model"
)

const (
	barLevels           = " .:-=+*#%@"
	terminalWidthBackup = 80
	minHistoryWidth     = 7
	historyLabelWidth   = 7
)

// DailyBars renders one cell per day, scaled against the busiest day. Days
// without pomodoros stay blank and any non-zero day gets at least one step.
func DailyBars(counts []int) string {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}
	steps := len(barLevels) - 1
	var b strings.Builder
	for _, c := range counts {
		idx := 0
		if peak > 0 && c > 0 {
			idx = min(max((c*steps+peak-1)/peak, 1), steps)
		}
		b.WriteByte(barLevels[idx])
	}
	return b.String()
}

// WeeklyTotals returns, for each day, the pomodoros of the seven days ending
// on it.
func WeeklyTotals(counts []int) []int {
	out := make([]int, len(counts))
	sum := 0
	for i, c := range counts {
		sum += c
		if i >= model.DaysPerWeek {
			sum -= counts[i-model.DaysPerWeek]
		}
		out[i] = sum
	}
	return out
}

// FormatMinutes renders a minute count as "1h 05m" or "25m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// TerminalWidth returns the width of stdout or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints the today/week/total/achievement report followed by
// a sparkline of the daily history when one is given.
func RenderSummary(w io.Writer, s model.Stats, history []model.DailyTotal, now time.Time, width int) error {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("Today (%s)", s.Today.Date)
	add("  Pomodoros: %d", s.Today.Pomodoros)
	add("  Focus: %s", FormatMinutes(s.Today.FocusMinutes))
	add("  Completed / interrupted: %d / %d", s.Today.Completed, s.Today.Interrupted)
	add("  Efficiency: %.0f%%", Efficiency(s.Today)*100)
	add("")

	add("This week")
	for _, line := range renderWeekTable(weekRows(s, now)) {
		add("  %s", line)
	}
	add("")

	add("Total")
	add("  Pomodoros: %d", s.Total.Pomodoros)
	add("  Focus: %s", FormatMinutes(s.Total.FocusMinutes))
	add("  Sessions: %d", s.Total.Sessions)
	if s.Total.FirstSession != nil {
		add("  First session: %s", s.Total.FirstSession.In(now.Location()).Format("2006-01-02"))
	}
	if s.Total.BestDay.Pomodoros > 0 {
		add("  Best day: %s (%d)", s.Total.BestDay.Date, s.Total.BestDay.Pomodoros)
	}
	add("  Streak: %d (best %d)", s.Total.CurrentStreak, s.Total.BestStreak)
	add("")

	add("Achievements (%d/%d)", s.Achievements.Count(), len(model.AllAchievements))
	for _, a := range model.AllAchievements {
		mark := " "
		if s.Achievements.Has(a) {
			mark = "x"
		}
		add("  [%s] %s", mark, a.Title())
	}

	if len(history) > 0 {
		add("")
		lines = append(lines, renderHistory(history, width)...)
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func renderHistory(history []model.DailyTotal, width int) []string {
	counts := make([]int, len(history))
	for i, day := range history {
		counts[i] = day.Completed
	}
	weekly := WeeklyTotals(counts)

	points := max(width-historyLabelWidth, minHistoryWidth)
	if len(history) > points {
		cut := len(history) - points
		history, counts, weekly = history[cut:], counts[cut:], weekly[cut:]
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	first := history[0].Day.Format("Jan 02")
	last := history[len(history)-1].Day.Format("Jan 02")
	return []string{
		fmt.Sprintf("History %s - %s (%d pomodoros)", first, last, total),
		padRight("  day", historyLabelWidth) + DailyBars(counts),
		padRight("  week", historyLabelWidth) + DailyBars(weekly),
	}
}
