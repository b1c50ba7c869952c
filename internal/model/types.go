// Package model defines shared data structures.
package model

import "time"

// SessionKind identifies a countdown type.
type SessionKind string

const (
	SessionWork       SessionKind = "work"
	SessionShortBreak SessionKind = "shortBreak"
	SessionLongBreak  SessionKind = "longBreak"
)

// Title returns the human-readable session name.
func (k SessionKind) Title() string {
	switch k {
	case SessionWork:
		return "Work"
	case SessionShortBreak:
		return "Short break"
	case SessionLongBreak:
		return "Long break"
	default:
		return string(k)
	}
}

// IsBreak reports whether the kind is a short or long break.
func (k SessionKind) IsBreak() bool {
	return k == SessionShortBreak || k == SessionLongBreak
}

// Outcome describes how a work session ended.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
)

// SessionRecord is a journal entry for a finished work session.
type SessionRecord struct {
	ID             int64
	Kind           SessionKind
	Outcome        Outcome
	EndedAt        time.Time
	PlannedMinutes int
}

// DailyTotal aggregates journal entries for one calendar day.
type DailyTotal struct {
	Day         time.Time
	Completed   int
	Interrupted int
	Minutes     int
}
