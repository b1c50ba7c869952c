package model

import (
	"fmt"
	"time"
)

// Settings holds the user-configurable timer preferences.
type Settings struct {
	WorkDuration           int    `json:"workDuration" yaml:"work_duration"`
	ShortBreakDuration     int    `json:"shortBreakDuration" yaml:"short_break_duration"`
	LongBreakDuration      int    `json:"longBreakDuration" yaml:"long_break_duration"`
	SessionsUntilLongBreak int    `json:"sessionsUntilLongBreak" yaml:"sessions_until_long_break"`
	SoundEnabled           bool   `json:"soundEnabled" yaml:"sound_enabled"`
	AutoStartBreaks        bool   `json:"autoStartBreaks" yaml:"auto_start_breaks"`
	AutoStartWork          bool   `json:"autoStartWork" yaml:"auto_start_work"`
	SelectedSound          string `json:"selectedSound" yaml:"selected_sound"`
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

var (
	WorkBounds       = Bounds{Min: 1, Max: 60}
	ShortBreakBounds = Bounds{Min: 1, Max: 30}
	LongBreakBounds  = Bounds{Min: 5, Max: 60}
	CycleBounds      = Bounds{Min: 2, Max: 8}
)

// DefaultSound is the notification sound used when none is configured.
const DefaultSound = "sound4"

// SoundCount is the size of the fixed notification sound catalog.
const SoundCount = 10

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:           25,
		ShortBreakDuration:     5,
		LongBreakDuration:      15,
		SessionsUntilLongBreak: 4,
		SoundEnabled:           true,
		AutoStartBreaks:        false,
		AutoStartWork:          false,
		SelectedSound:          DefaultSound,
	}
}

// ValidationError reports a settings field outside its allowed range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every field and returns the first violation.
func (s Settings) Validate() error {
	checks := []struct {
		field  string
		label  string
		value  int
		bounds Bounds
	}{
		{"workDuration", "work duration", s.WorkDuration, WorkBounds},
		{"shortBreakDuration", "short break duration", s.ShortBreakDuration, ShortBreakBounds},
		{"longBreakDuration", "long break duration", s.LongBreakDuration, LongBreakBounds},
		{"sessionsUntilLongBreak", "sessions until long break", s.SessionsUntilLongBreak, CycleBounds},
	}
	for _, c := range checks {
		if !c.bounds.Contains(c.value) {
			return &ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("%s must be between %d and %d, got %d", c.label, c.bounds.Min, c.bounds.Max, c.value),
			}
		}
	}
	if !ValidSound(s.SelectedSound) {
		return &ValidationError{
			Field:   "selectedSound",
			Message: fmt.Sprintf("unknown sound %q (expected sound1..sound%d)", s.SelectedSound, SoundCount),
		}
	}
	return nil
}

// Normalize replaces every out-of-range field with its default.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if !WorkBounds.Contains(s.WorkDuration) {
		s.WorkDuration = def.WorkDuration
	}
	if !ShortBreakBounds.Contains(s.ShortBreakDuration) {
		s.ShortBreakDuration = def.ShortBreakDuration
	}
	if !LongBreakBounds.Contains(s.LongBreakDuration) {
		s.LongBreakDuration = def.LongBreakDuration
	}
	if !CycleBounds.Contains(s.SessionsUntilLongBreak) {
		s.SessionsUntilLongBreak = def.SessionsUntilLongBreak
	}
	if !ValidSound(s.SelectedSound) {
		s.SelectedSound = def.SelectedSound
	}
}

// Minutes returns the configured length of a session kind in minutes.
func (s Settings) Minutes(kind SessionKind) int {
	switch kind {
	case SessionShortBreak:
		return s.ShortBreakDuration
	case SessionLongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// Duration returns the configured length of a session kind.
func (s Settings) Duration(kind SessionKind) time.Duration {
	return time.Duration(s.Minutes(kind)) * time.Minute
}

// AutoStart reports whether a session of the given kind starts on its own.
func (s Settings) AutoStart(kind SessionKind) bool {
	if kind.IsBreak() {
		return s.AutoStartBreaks
	}
	return s.AutoStartWork
}

// SoundID returns the catalog identifier for a 1-based index.
func SoundID(n int) string {
	return fmt.Sprintf("sound%d", n)
}

// ValidSound reports whether id names an entry of the sound catalog.
func ValidSound(id string) bool {
	for i := 1; i <= SoundCount; i++ {
		if id == SoundID(i) {
			return true
		}
	}
	return false
}
