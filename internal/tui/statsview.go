package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/stats"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func renderStatsPanel(s model.Stats, now time.Time, width int) string {
	cards := renderSummaryCards(s, width)
	week := renderWeekTable(s, now)
	achievements := renderAchievements(s.Achievements)
	if width >= 80 {
		lower := lipgloss.JoinHorizontal(lipgloss.Top, week, "    ", achievements)
		return lipgloss.JoinVertical(lipgloss.Left, cards, "", lower)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards, "", week, "", achievements)
}

func renderSummaryCards(s model.Stats, width int) string {
	efficiency := "-"
	if s.Today.Completed+s.Today.Interrupted > 0 {
		efficiency = fmt.Sprintf("%.0f%%", stats.Efficiency(s.Today)*100)
	}
	cards := []string{
		metricCard("Today", strconv.Itoa(s.Today.Pomodoros)),
		metricCard("Focus today", stats.FormatMinutes(s.Today.FocusMinutes)),
		metricCard("Efficiency", efficiency),
		metricCard("Total", strconv.Itoa(s.Total.Pomodoros)),
		metricCard("Focus total", stats.FormatMinutes(s.Total.FocusMinutes)),
		metricCard("Streak", fmt.Sprintf("%d (best %d)", s.Total.CurrentStreak, s.Total.BestStreak)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderWeekTable(s model.Stats, now time.Time) string {
	columns := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Pomodoros", Width: 9},
		{Title: "Focus", Width: 7},
	}
	rows := make([]table.Row, 0, len(weekOrder))
	for _, day := range weekOrder {
		var bucket model.WeekBucket
		if int(day) < len(s.Week) {
			bucket = s.Week[day]
		}
		label := day.String()[:3]
		if day == now.Weekday() {
			label += "*"
		}
		rows = append(rows, table.Row{
			label,
			strconv.Itoa(bucket.Pomodoros),
			stats.FormatMinutes(bucket.FocusMinutes),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
	)
	t.SetStyles(weekTableStyles())
	return t.View()
}

func weekTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	// Nothing is selectable in the week table.
	styles.Selected = styles.Cell
	return styles
}

func renderAchievements(a model.Achievements) string {
	lines := []string{cardTitleStyle.Render(fmt.Sprintf("Achievements %d/%d", a.Count(), len(model.AllAchievements)))}
	for _, id := range model.AllAchievements {
		mark := mutedStyle.Render("[ ]")
		title := mutedStyle.Render(id.Title())
		if a.Has(id) {
			mark = achievementStyle.Render("[x]")
			title = cardValueStyle.Render(id.Title())
		}
		lines = append(lines, mark+" "+title)
	}
	return strings.Join(lines, "\n")
}
