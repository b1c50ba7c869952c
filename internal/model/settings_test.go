package model

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Settings)
		field string
	}{
		{"work zero", func(s *Settings) { s.WorkDuration = 0 }, "workDuration"},
		{"work too long", func(s *Settings) { s.WorkDuration = 61 }, "workDuration"},
		{"short too long", func(s *Settings) { s.ShortBreakDuration = 31 }, "shortBreakDuration"},
		{"long too short", func(s *Settings) { s.LongBreakDuration = 4 }, "longBreakDuration"},
		{"cycle too small", func(s *Settings) { s.SessionsUntilLongBreak = 1 }, "sessionsUntilLongBreak"},
		{"cycle too big", func(s *Settings) { s.SessionsUntilLongBreak = 9 }, "sessionsUntilLongBreak"},
		{"unknown sound", func(s *Settings) { s.SelectedSound = "sound11" }, "selectedSound"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.edit(&s)
			err := s.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}

func TestNormalizeReplacesInvalidFieldsOnly(t *testing.T) {
	s := Settings{
		WorkDuration:           50,
		ShortBreakDuration:     0,
		LongBreakDuration:      100,
		SessionsUntilLongBreak: 6,
		SoundEnabled:           false,
		SelectedSound:          "bogus",
	}
	s.Normalize()
	if s.WorkDuration != 50 || s.SessionsUntilLongBreak != 6 {
		t.Fatalf("valid fields changed: %+v", s)
	}
	def := DefaultSettings()
	if s.ShortBreakDuration != def.ShortBreakDuration || s.LongBreakDuration != def.LongBreakDuration {
		t.Fatalf("invalid durations not replaced: %+v", s)
	}
	if s.SelectedSound != DefaultSound {
		t.Fatalf("expected default sound, got %s", s.SelectedSound)
	}
	if s.SoundEnabled {
		t.Fatalf("soundEnabled should be kept")
	}
}

func TestDurationPerKind(t *testing.T) {
	s := DefaultSettings()
	if got := s.Duration(SessionWork); got != 25*time.Minute {
		t.Fatalf("work duration %v", got)
	}
	if got := s.Duration(SessionShortBreak); got != 5*time.Minute {
		t.Fatalf("short duration %v", got)
	}
	if got := s.Duration(SessionLongBreak); got != 15*time.Minute {
		t.Fatalf("long duration %v", got)
	}
}

func TestAchievementsUnlockOnce(t *testing.T) {
	var u Achievements
	if !u.Unlock(AchievementMaster) {
		t.Fatalf("first unlock should report true")
	}
	if u.Unlock(AchievementMaster) {
		t.Fatalf("second unlock should report false")
	}
	if u.Count() != 1 {
		t.Fatalf("expected 1 unlocked, got %d", u.Count())
	}
}

func TestStatsNormalizeRepairsWeek(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := Stats{Week: []WeekBucket{{Pomodoros: 2}}}
	s.Today.Pomodoros = -3
	s.Normalize(now)
	if len(s.Week) != DaysPerWeek || s.Week[0].Pomodoros != 2 {
		t.Fatalf("unexpected week: %+v", s.Week)
	}
	if s.Today.Pomodoros != 0 {
		t.Fatalf("negative counter not clamped")
	}
	if s.Today.Date != "Mon Oct 19 2026" {
		t.Fatalf("unexpected date %q", s.Today.Date)
	}
}
