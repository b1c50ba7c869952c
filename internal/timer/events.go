package timer

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tomato/internal/model"
)

// EventType defines the type of controller event.
type EventType string

const (
	EventTick            EventType = "tick"
	EventStateChange     EventType = "state_change"
	EventSessionComplete EventType = "session_complete"
)

// Event is a controller update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	// Finished is the session kind that just ended. Set on EventSessionComplete.
	Finished model.SessionKind
	// Skipped reports that the finished session was ended early.
	Skipped      bool
	Achievements []model.Achievement
	At           time.Time
}

// Snapshot is a copy of the timer state.
type Snapshot struct {
	Kind             model.SessionKind
	RemainingSeconds int
	DurationSeconds  int
	Running          bool
	CompletedInCycle int
	CycleLength      int
}

// Progress returns the elapsed share of the current session in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	p := float64(s.DurationSeconds-s.RemainingSeconds) / float64(s.DurationSeconds)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Clock formats the remaining time as MM:SS.
func (s Snapshot) Clock() string {
	r := max(s.RemainingSeconds, 0)
	return fmt.Sprintf("%02d:%02d", r/60, r%60)
}

// SessionNumber is the 1-based position of the current work session in the
// cycle, capped at the cycle length.
func (s Snapshot) SessionNumber() int {
	if s.CycleLength <= 0 {
		return s.CompletedInCycle + 1
	}
	return min(s.CompletedInCycle+1, s.CycleLength)
}
