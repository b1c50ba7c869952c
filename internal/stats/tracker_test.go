package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tomato/internal/kv"
	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/notify"
)

type testEnv struct {
	tracker   *Tracker
	primary   *kv.MemoryStore
	secondary *kv.MemoryStore
	now       time.Time
	messages  []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		primary:   kv.NewMemoryStore(),
		secondary: kv.NewMemoryStore(),
		now:       time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}
	env.tracker = New(Options{
		Store:    kv.NewFallback(env.primary, env.secondary, nil),
		Notifier: notify.Func(func(msg string) { env.messages = append(env.messages, msg) }),
		Clock:    func() time.Time { return env.now },
	})
	return env
}

func (e *testEnv) storedStats(t *testing.T, st *kv.MemoryStore) model.Stats {
	t.Helper()
	raw, ok, err := st.Get(context.Background(), StatsKey)
	if err != nil || !ok {
		t.Fatalf("stats not stored: ok=%v err=%v", ok, err)
	}
	var s model.Stats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode stored stats: %v", err)
	}
	return s
}

func TestRecordCompletionIncrementsCounters(t *testing.T) {
	env := newTestEnv(t)
	before := env.tracker.Stats()

	env.tracker.RecordCompletion(25)

	after := env.tracker.Stats()
	if after.Total.Pomodoros-before.Total.Pomodoros != 1 {
		t.Fatalf("expected total pomodoros +1, got %d", after.Total.Pomodoros)
	}
	if after.Total.FocusMinutes-before.Total.FocusMinutes != 25 {
		t.Fatalf("expected focus +25, got %d", after.Total.FocusMinutes)
	}
	if after.Total.Sessions-before.Total.Sessions != 1 {
		t.Fatalf("expected sessions +1, got %d", after.Total.Sessions)
	}
	if after.Today.Pomodoros != 1 || after.Today.Completed != 1 || after.Today.FocusMinutes != 25 {
		t.Fatalf("unexpected today: %+v", after.Today)
	}
	if after.Week[time.Monday].Pomodoros != 1 || after.Week[time.Monday].FocusMinutes != 25 {
		t.Fatalf("unexpected weekday bucket: %+v", after.Week[time.Monday])
	}
	if after.Total.FirstSession == nil || !after.Total.FirstSession.Equal(env.now) {
		t.Fatalf("first session not recorded: %v", after.Total.FirstSession)
	}
	if after.Total.BestDay.Pomodoros != 1 || after.Total.BestDay.Date != "Mon Oct 19 2026" {
		t.Fatalf("unexpected best day: %+v", after.Total.BestDay)
	}
	stored := env.storedStats(t, env.primary)
	if stored.Total.Pomodoros != 1 {
		t.Fatalf("stats not persisted to primary: %+v", stored.Total)
	}
	env.storedStats(t, env.secondary)
}

func TestFirstAchievementUnlocksOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if got := env.tracker.RecordCompletion(25); len(got) != 1 || got[0] != model.AchievementFirst {
		t.Fatalf("expected first achievement, got %v", got)
	}
	if got := env.tracker.RecordCompletion(25); len(got) != 0 {
		t.Fatalf("expected no new achievements, got %v", got)
	}
	if err := env.tracker.ResetStats(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if env.tracker.Stats().Achievements.Has(model.AchievementFirst) {
		t.Fatalf("reset should revoke achievements")
	}
	if got := env.tracker.RecordCompletion(25); len(got) != 1 || got[0] != model.AchievementFirst {
		t.Fatalf("expected first achievement after reset, got %v", got)
	}
	count := 0
	for _, msg := range env.messages {
		if msg == "Achievement unlocked: First pomodoro!" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected two unlock notifications, got %d (%v)", count, env.messages)
	}
}

func TestAchievementThresholds(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := model.DefaultStats(now)
	for i := 0; i < 2; i++ {
		applyCompletion(&s, 25, now)
	}
	EvaluateAchievements(&s)
	if s.Achievements.Streak {
		t.Fatalf("streak unlocked too early")
	}
	applyCompletion(&s, 25, now)
	if got := EvaluateAchievements(&s); len(got) != 1 || got[0] != model.AchievementStreak {
		t.Fatalf("expected streak at 3, got %v", got)
	}

	s.Today.Interrupted = 1
	applyCompletion(&s, 25, now)
	EvaluateAchievements(&s)
	if s.Achievements.Efficient {
		t.Fatalf("efficient needs 5 completions")
	}
	applyCompletion(&s, 25, now)
	if got := EvaluateAchievements(&s); len(got) != 0 {
		t.Fatalf("5/6 is below 90%%, got %v", got)
	}
	for s.Today.Completed < 9 {
		applyCompletion(&s, 25, now)
	}
	if got := EvaluateAchievements(&s); len(got) != 1 || got[0] != model.AchievementEfficient {
		t.Fatalf("expected efficient at 9/10, got %v", got)
	}
	if s.Achievements.Master {
		t.Fatalf("master unlocked before 10")
	}
	applyCompletion(&s, 25, now)
	if got := EvaluateAchievements(&s); len(got) != 1 || got[0] != model.AchievementMaster {
		t.Fatalf("expected master at 10, got %v", got)
	}
}

func TestRecordInterruption(t *testing.T) {
	env := newTestEnv(t)
	env.tracker.RecordInterruption(25)
	s := env.tracker.Stats()
	if s.Today.Interrupted != 1 {
		t.Fatalf("expected 1 interruption, got %d", s.Today.Interrupted)
	}
	if s.Today.Pomodoros != 0 || s.Total.Pomodoros != 0 || s.Total.Sessions != 0 {
		t.Fatalf("interruption changed other counters: %+v", s)
	}
	if stored := env.storedStats(t, env.primary); stored.Today.Interrupted != 1 {
		t.Fatalf("interruption not persisted")
	}
}

func TestLoadStatsRollsOverDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	yesterday := env.now.AddDate(0, 0, -1)

	old := model.DefaultStats(yesterday)
	applyCompletion(&old, 25, yesterday)
	EvaluateAchievements(&old)
	old.Week[time.Monday] = model.WeekBucket{Pomodoros: 7, FocusMinutes: 175}
	raw, _ := json.Marshal(old)
	_ = env.primary.Set(ctx, StatsKey, string(raw))

	s := env.tracker.LoadStats(ctx)
	if s.Today.Date != "Mon Oct 19 2026" || s.Today.Pomodoros != 0 || s.Today.Completed != 0 {
		t.Fatalf("today not reset: %+v", s.Today)
	}
	if s.Week[time.Monday] != (model.WeekBucket{}) {
		t.Fatalf("today's bucket not cleared: %+v", s.Week[time.Monday])
	}
	if s.Week[time.Sunday].Pomodoros != 1 {
		t.Fatalf("yesterday's bucket should be kept: %+v", s.Week[time.Sunday])
	}
	if s.Total.Pomodoros != 1 || !s.Achievements.First {
		t.Fatalf("totals or achievements changed: %+v %+v", s.Total, s.Achievements)
	}
	if s.Total.CurrentStreak != 1 {
		t.Fatalf("streak from yesterday should survive, got %d", s.Total.CurrentStreak)
	}
	if stored := env.storedStats(t, env.primary); stored.Today.Date != "Mon Oct 19 2026" {
		t.Fatalf("rolled-over stats not persisted")
	}
}

func TestRolloverClearsSkippedDaysAndBreaksStreak(t *testing.T) {
	now := time.Date(2026, 10, 22, 8, 0, 0, 0, time.UTC) // Thursday
	s := model.DefaultStats(now.AddDate(0, 0, -3))
	for i := range s.Week {
		s.Week[i] = model.WeekBucket{Pomodoros: 1}
	}
	s.Total.CurrentStreak = 4
	s.Total.LastActiveDate = model.DayKey(now.AddDate(0, 0, -3))

	if !Rollover(&s, now) {
		t.Fatalf("expected rollover")
	}
	for _, d := range []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday} {
		if s.Week[d].Pomodoros != 0 {
			t.Fatalf("%s bucket should be cleared", d)
		}
	}
	if s.Week[time.Monday].Pomodoros != 1 {
		t.Fatalf("last active day's bucket should be kept")
	}
	if s.Total.CurrentStreak != 0 {
		t.Fatalf("streak should break after a gap, got %d", s.Total.CurrentStreak)
	}
	if Rollover(&s, now) {
		t.Fatalf("second rollover on the same day should be a no-op")
	}
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	env := newTestEnv(t)
	start := env.now
	for day := 0; day < 3; day++ {
		env.now = start.AddDate(0, 0, day)
		env.tracker.RecordCompletion(25)
		env.tracker.RecordCompletion(25)
	}
	s := env.tracker.Stats()
	if s.Total.CurrentStreak != 3 || s.Total.BestStreak != 3 {
		t.Fatalf("expected streak 3, got %d/%d", s.Total.CurrentStreak, s.Total.BestStreak)
	}

	env.now = start.AddDate(0, 0, 5)
	env.tracker.RecordCompletion(25)
	s = env.tracker.Stats()
	if s.Total.CurrentStreak != 1 || s.Total.BestStreak != 3 {
		t.Fatalf("expected streak reset to 1 with best 3, got %d/%d", s.Total.CurrentStreak, s.Total.BestStreak)
	}
}

func TestLoadStatsMalformedFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_ = env.primary.Set(ctx, StatsKey, "{not json")

	local := model.DefaultStats(env.now)
	local.Total.Pomodoros = 42
	raw, _ := json.Marshal(local)
	_ = env.secondary.Set(ctx, StatsKey, string(raw))

	if got := env.tracker.LoadStats(ctx); got.Total.Pomodoros != 42 {
		t.Fatalf("expected secondary stats, got %+v", got.Total)
	}

	_ = env.secondary.Set(ctx, StatsKey, "[]")
	got := env.tracker.LoadStats(ctx)
	if got.Total.Pomodoros != 0 || len(got.Week) != model.DaysPerWeek {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadSettingsMergesDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_ = env.primary.Set(ctx, SettingsKey, `{"workDuration":50,"longBreakDuration":500,"selectedSound":"sound9","extra":true}`)

	s := env.tracker.LoadSettings(ctx)
	if s.WorkDuration != 50 || s.SelectedSound != "sound9" {
		t.Fatalf("loaded values lost: %+v", s)
	}
	def := model.DefaultSettings()
	if s.LongBreakDuration != def.LongBreakDuration || s.ShortBreakDuration != def.ShortBreakDuration {
		t.Fatalf("defaults not merged: %+v", s)
	}
	if !s.SoundEnabled {
		t.Fatalf("missing soundEnabled should default to true")
	}
}

func TestLoadSettingsPrimaryError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_ = env.secondary.Set(ctx, SettingsKey, `{"workDuration":40}`)
	env.primary.FailWith(errors.New("offline"))

	if s := env.tracker.LoadSettings(ctx); s.WorkDuration != 40 {
		t.Fatalf("expected local settings, got %+v", s)
	}
	env.secondary.FailWith(errors.New("broken"))
	if s := env.tracker.LoadSettings(ctx); s != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bad := model.DefaultSettings()
	bad.WorkDuration = 0
	err := env.tracker.SaveSettings(ctx, bad)
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "workDuration" {
		t.Fatalf("expected workDuration validation error, got %v", err)
	}
	if env.tracker.Settings().WorkDuration != 25 {
		t.Fatalf("invalid settings must not be applied")
	}
	if env.primary.Writes() != 0 {
		t.Fatalf("invalid settings must not be persisted")
	}

	good := model.DefaultSettings()
	good.WorkDuration = 30
	if err := env.tracker.SaveSettings(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	if env.tracker.Settings().WorkDuration != 30 {
		t.Fatalf("valid settings not applied")
	}
	if last := env.messages[len(env.messages)-1]; last != "Settings saved" {
		t.Fatalf("unexpected notification %q", last)
	}
}

func TestSaveSettingsStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.primary.FailWith(errors.New("offline"))
	env.secondary.FailWith(errors.New("disk full"))

	s := model.DefaultSettings()
	s.AutoStartBreaks = true
	if err := env.tracker.SaveSettings(context.Background(), s); err == nil {
		t.Fatalf("expected storage error")
	}
	if !env.tracker.Settings().AutoStartBreaks {
		t.Fatalf("settings should stay applied in memory")
	}
	if last := env.messages[len(env.messages)-1]; last != "Failed to save settings" {
		t.Fatalf("unexpected notification %q", last)
	}
}

func TestBackgroundSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	st := kv.NewMemoryStore()
	st.FailWith(errors.New("offline"))
	w := kv.NewWriter(st, nil)
	t.Cleanup(func() {
		_ = w.Close(ctx)
	})
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tr := New(Options{Store: st, Writer: w, Clock: func() time.Time { return now }})

	tr.RecordCompletion(25)
	tr.RecordCompletion(25)
	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := tr.Stats().Total.Pomodoros; got != 2 {
		t.Fatalf("in-memory stats lost: %d", got)
	}

	st.FailWith(nil)
	tr.RecordCompletion(25)
	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	raw, ok, _ := st.Get(ctx, StatsKey)
	if !ok {
		t.Fatalf("stats should be saved once the store recovers")
	}
	var stored model.Stats
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stored.Total.Pomodoros != 3 {
		t.Fatalf("expected latest snapshot, got %d", stored.Total.Pomodoros)
	}
}

type fakeJournal struct {
	records chan model.SessionRecord
}

func (f *fakeJournal) InsertSession(_ context.Context, rec model.SessionRecord) (int64, error) {
	f.records <- rec
	return int64(len(f.records)), nil
}

func TestJournalReceivesOutcomes(t *testing.T) {
	j := &fakeJournal{records: make(chan model.SessionRecord, 4)}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tr := New(Options{Journal: j, Clock: func() time.Time { return now }})

	tr.RecordCompletion(25)
	tr.RecordInterruption(25)
	if err := tr.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	close(j.records)
	outcomes := map[model.Outcome]int{}
	for rec := range j.records {
		outcomes[rec.Outcome]++
	}
	if outcomes[model.OutcomeCompleted] != 1 || outcomes[model.OutcomeInterrupted] != 1 {
		t.Fatalf("unexpected journal outcomes: %v", outcomes)
	}
}

func TestSaveStatsWritesCurrentState(t *testing.T) {
	env := newTestEnv(t)
	env.tracker.RecordCompletion(25)
	env.tracker.RecordInterruption(25)
	ctx := context.Background()
	if err := env.primary.Set(ctx, StatsKey, "stale"); err != nil {
		t.Fatalf("seed primary: %v", err)
	}

	if err := env.tracker.SaveStats(ctx); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	for _, st := range []*kv.MemoryStore{env.primary, env.secondary} {
		stored := env.storedStats(t, st)
		if stored.Total.Pomodoros != 1 || stored.Today.Interrupted != 1 {
			t.Fatalf("unexpected stored stats: %+v", stored)
		}
	}

	env.primary.FailWith(errors.New("disk full"))
	env.secondary.FailWith(errors.New("disk full"))
	if err := env.tracker.SaveStats(ctx); err == nil {
		t.Fatalf("expected save error when every store fails")
	}
}

func TestLoadSettingsKeepsFieldsAroundTypeMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_ = env.primary.Set(ctx, SettingsKey, `{"workDuration":"25","shortBreakDuration":25.5,"longBreakDuration":20,"sessionsUntilLongBreak":6,"soundEnabled":"yes","autoStartWork":true,"selectedSound":7}`)

	s := env.tracker.LoadSettings(ctx)
	def := model.DefaultSettings()
	if s.WorkDuration != def.WorkDuration || s.ShortBreakDuration != def.ShortBreakDuration {
		t.Fatalf("mismatched durations should default: %+v", s)
	}
	if s.SoundEnabled != def.SoundEnabled || s.SelectedSound != def.SelectedSound {
		t.Fatalf("mismatched sound fields should default: %+v", s)
	}
	if s.LongBreakDuration != 20 || s.SessionsUntilLongBreak != 6 || !s.AutoStartWork {
		t.Fatalf("valid fields lost: %+v", s)
	}
}
