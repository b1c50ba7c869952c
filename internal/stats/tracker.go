package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/tomato/internal/kv"
	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/notify"
)

// Persisted keys.
const (
	SettingsKey = "pomodoroSettings"
	StatsKey    = "pomodoroStats"
)

// Journal records finished work sessions.
type Journal interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error)
}

// Options configures a Tracker.
type Options struct {
	Store    kv.Store
	Writer   *kv.Writer
	Journal  Journal
	Notifier notify.Notifier
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Tracker owns the cumulative counters, achievement unlocks and the
// persistence of both settings and stats.
type Tracker struct {
	mu       sync.Mutex
	settings model.Settings
	stats    model.Stats

	store    kv.Store
	writer   *kv.Writer
	journal  Journal
	notifier notify.Notifier
	now      func() time.Time
	logger   *slog.Logger

	pending sync.WaitGroup
}

// New returns a Tracker holding default settings and empty stats.
func New(opts Options) *Tracker {
	if opts.Store == nil {
		opts.Store = kv.NewMemoryStore()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Tracker{
		settings: model.DefaultSettings(),
		stats:    model.DefaultStats(opts.Clock()),
		store:    opts.Store,
		writer:   opts.Writer,
		journal:  opts.Journal,
		notifier: opts.Notifier,
		now:      opts.Clock,
		logger:   opts.Logger,
	}
}

// Settings returns the current settings.
func (t *Tracker) Settings() model.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// Stats returns a copy of the current stats, rolled over to today.
func (t *Tracker) Stats() model.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rolloverLocked() {
		t.persistStatsLocked()
	}
	return t.stats.Clone()
}

// RecordCompletion counts a completed work session of the given length and
// returns the achievements it unlocked.
func (t *Tracker) RecordCompletion(minutes int) []model.Achievement {
	t.mu.Lock()
	now := t.now()
	t.rolloverLocked()
	applyCompletion(&t.stats, minutes, now)
	unlocked := EvaluateAchievements(&t.stats)
	t.persistStatsLocked()
	t.mu.Unlock()

	for _, a := range unlocked {
		t.logger.Info("achievement unlocked", "achievement", string(a))
		t.notifier.Notify("Achievement unlocked: " + a.Title() + "!")
	}
	t.journalAsync(model.SessionRecord{
		Kind:           model.SessionWork,
		Outcome:        model.OutcomeCompleted,
		EndedAt:        now,
		PlannedMinutes: minutes,
	})
	return unlocked
}

// RecordInterruption counts a work session skipped before completion.
func (t *Tracker) RecordInterruption(minutes int) {
	t.mu.Lock()
	now := t.now()
	t.rolloverLocked()
	t.stats.Today.Interrupted++
	t.persistStatsLocked()
	t.mu.Unlock()

	t.journalAsync(model.SessionRecord{
		Kind:           model.SessionWork,
		Outcome:        model.OutcomeInterrupted,
		EndedAt:        now,
		PlannedMinutes: minutes,
	})
}

// Flush waits for background saves and journal writes.
func (t *Tracker) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if t.writer != nil {
		return t.writer.Flush(ctx)
	}
	return nil
}

func applyCompletion(s *model.Stats, minutes int, now time.Time) {
	today := model.DayKey(now)
	day := now.Weekday()

	s.Today.Pomodoros++
	s.Today.Completed++
	s.Today.FocusMinutes += minutes

	s.Week[day].Pomodoros++
	s.Week[day].FocusMinutes += minutes

	s.Total.Pomodoros++
	s.Total.FocusMinutes += minutes
	s.Total.Sessions++
	if s.Total.FirstSession == nil {
		first := now
		s.Total.FirstSession = &first
	}
	if s.Today.Pomodoros > s.Total.BestDay.Pomodoros {
		s.Total.BestDay = model.BestDay{Date: today, Pomodoros: s.Today.Pomodoros}
	}

	if s.Total.LastActiveDate != today {
		last, ok := model.ParseDay(s.Total.LastActiveDate, now.Location())
		if ok && daysBetween(last, now) == 1 {
			s.Total.CurrentStreak++
		} else {
			s.Total.CurrentStreak = 1
		}
		s.Total.LastActiveDate = today
	}
	if s.Total.CurrentStreak > s.Total.BestStreak {
		s.Total.BestStreak = s.Total.CurrentStreak
	}
}

func (t *Tracker) rolloverLocked() bool {
	return Rollover(&t.stats, t.now())
}

func (t *Tracker) journalAsync(rec model.SessionRecord) {
	if t.journal == nil {
		return
	}
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), kv.DefaultWriteTimeout)
		defer cancel()
		if _, err := t.journal.InsertSession(ctx, rec); err != nil {
			t.logger.Warn("failed to journal session", "outcome", string(rec.Outcome), "error", err)
		}
	}()
}
