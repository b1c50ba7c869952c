// Package stats tracks pomodoro statistics and renders reports.
package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tomato/internal/model"
)

const (
	todayMarker = " *"
	columnGap   = "  "
)

// weekRow is one weekday line of the report.
type weekRow struct {
	day       time.Weekday
	today     bool
	pomodoros int
	focus     int
}

// weekRows lists the weekday buckets Monday first.
func weekRows(s model.Stats, now time.Time) []weekRow {
	rows := make([]weekRow, 0, model.DaysPerWeek)
	for i := 1; i <= model.DaysPerWeek; i++ {
		day := time.Weekday(i % model.DaysPerWeek)
		bucket := s.Week[day]
		rows = append(rows, weekRow{
			day:       day,
			today:     day == now.Weekday(),
			pomodoros: bucket.Pomodoros,
			focus:     bucket.FocusMinutes,
		})
	}
	return rows
}

// renderWeekTable lays rows out as Day, Pomodoros and Focus columns. The day
// column always reserves room for the today marker so counts stay aligned
// whichever row carries it.
func renderWeekTable(rows []weekRow) []string {
	dayWidth := displayWidth("Day")
	countWidth := displayWidth("Pomodoros")
	focusWidth := displayWidth("Focus")
	for _, r := range rows {
		dayWidth = max(dayWidth, displayWidth(dayLabel(r.day))+displayWidth(todayMarker))
		countWidth = max(countWidth, len(strconv.Itoa(r.pomodoros)))
		focusWidth = max(focusWidth, displayWidth(FormatMinutes(r.focus)))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, padRight("Day", dayWidth)+columnGap+
		padLeft("Pomodoros", countWidth)+columnGap+
		padLeft("Focus", focusWidth))
	for _, r := range rows {
		label := dayLabel(r.day)
		if r.today {
			label += todayMarker
		}
		lines = append(lines, padRight(label, dayWidth)+columnGap+
			padLeft(strconv.Itoa(r.pomodoros), countWidth)+columnGap+
			padLeft(FormatMinutes(r.focus), focusWidth))
	}
	return lines
}

func dayLabel(day time.Weekday) string {
	return day.String()[:3]
}

func padRight(value string, width int) string {
	return value + strings.Repeat(" ", max(width-displayWidth(value), 0))
}

func padLeft(value string, width int) string {
	return strings.Repeat(" ", max(width-displayWidth(value), 0)) + value
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
