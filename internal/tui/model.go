// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/notify"
	"github.com/verte-zerg/tomato/internal/stats"
	"github.com/verte-zerg/tomato/internal/timer"
)

const (
	viewTimer = iota
	viewStats
	viewSettings
)

const saveTimeout = 5 * time.Second

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	workStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B57")).Bold(true)
	breakStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD38D")).Bold(true)
	clockStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 0)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	toastStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	achievementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle        = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Deps are the collaborators the interface drives.
type Deps struct {
	Controller *timer.Controller
	Tracker    *stats.Tracker
	// Toasts delivers notification messages, usually from a notify.Channel.
	Toasts   <-chan string
	ToastTTL time.Duration
	Clock    func() time.Time
	Logger   *slog.Logger
}

type eventMsg timer.Event

type eventsClosedMsg struct{}

type toastMsg string

type toastExpiredMsg struct{}

// Model implements the Bubble Tea timer UI.
type Model struct {
	deps   Deps
	events <-chan timer.Event

	snap  timer.Snapshot
	stats model.Stats
	toast notify.Toast

	view     int
	form     settingsForm
	keys     keyMap
	help     help.Model
	progress progress.Model

	width  int
	height int
}

// NewModel constructs a timer TUI model and subscribes to the controller.
func NewModel(deps Deps) *Model {
	if deps.ToastTTL <= 0 {
		deps.ToastTTL = notify.DefaultTTL
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	m := &Model{
		deps:     deps,
		events:   deps.Controller.Subscribe(64),
		snap:     deps.Controller.Snapshot(),
		keys:     newKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.refreshStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), waitForToast(m.deps.Toasts))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-10, 10), 60)
		m.help.Width = msg.Width
		m.form.setWidth(msg.Width)
		return m, nil
	case eventMsg:
		m.snap = msg.Snapshot
		if msg.Type == timer.EventSessionComplete {
			m.refreshStats()
		}
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, nil
	case toastMsg:
		now := m.deps.Clock()
		m.toast.Show(string(msg), now, m.deps.ToastTTL)
		return m, tea.Batch(
			waitForToast(m.deps.Toasts),
			expireToast(m.toast.ExpiresAt().Sub(now)),
		)
	case toastExpiredMsg:
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.view == viewSettings {
			return m.updateSettings(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.deps.Controller
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		ctl.Toggle()
	case key.Matches(msg, m.keys.Reset):
		ctl.Reset()
	case key.Matches(msg, m.keys.Skip):
		ctl.Skip()
		m.refreshStats()
	case key.Matches(msg, m.keys.Stats):
		if m.view == viewStats {
			m.view = viewTimer
		} else {
			m.refreshStats()
			m.view = viewStats
		}
	case key.Matches(msg, m.keys.Settings):
		m.form = newSettingsForm(ctl.Settings())
		m.form.setWidth(m.width)
		m.view = viewSettings
		return m, m.form.focus(0)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case msg.Type == tea.KeyEsc:
		m.view = viewTimer
	default:
		return m, nil
	}
	m.snap = ctl.Snapshot()
	return m, nil
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.view = viewTimer
		return m, nil
	case tea.KeyEnter:
		if err := m.saveSettings(); err != nil {
			m.form.err = validationMessage(err)
			return m, nil
		}
		m.view = viewTimer
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.form.focus(m.form.index + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.form.focus(m.form.index - 1)
	}
	return m, m.form.update(msg)
}

// saveSettings applies the form to the controller and persists it. Storage
// failures are reported by the tracker and do not keep the form open.
func (m *Model) saveSettings() error {
	ctl := m.deps.Controller
	next, err := m.form.parse(ctl.Settings())
	if err != nil {
		return err
	}
	if err := ctl.ApplySettings(next); err != nil {
		return err
	}
	if m.deps.Tracker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := m.deps.Tracker.SaveSettings(ctx, next); err != nil {
			m.deps.Logger.Warn("settings kept in memory only", "error", err)
		}
	}
	m.snap = ctl.Snapshot()
	return nil
}

func (m *Model) refreshStats() {
	if m.deps.Tracker == nil {
		return
	}
	m.stats = m.deps.Tracker.Stats()
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.view {
	case viewStats:
		body = renderStatsPanel(m.stats, m.deps.Clock(), m.width)
	case viewSettings:
		body = m.form.view()
	default:
		body = m.renderTimer()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(m.height-footerHeight, 1)
	content := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	return fitLines(content, m.width, bodyHeight) + "\n" + footer
}

func (m *Model) renderTimer() string {
	snap := m.snap
	style := workStyle
	if snap.Kind.IsBreak() {
		style = breakStyle
	}
	state := "paused"
	if snap.Running {
		state = "running"
	}
	lines := []string{
		style.Render(snap.Kind.Title()),
		clockStyle.Render(snap.Clock()),
		m.progress.ViewAs(snap.Progress()),
		"",
		mutedStyle.Render(fmt.Sprintf("Session %d/%d  ·  %s", snap.SessionNumber(), snap.CycleLength, state)),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	parts := []string{}
	if m.toast.Visible(m.deps.Clock()) {
		parts = append(parts, toastStyle.Render(truncateLine(m.toast.Message(), m.width)))
	} else {
		parts = append(parts, "")
	}
	if m.view != viewSettings {
		parts = append(parts, m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

func waitForEvent(ch <-chan timer.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func expireToast(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

func waitForToast(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(msg)
	}
}
