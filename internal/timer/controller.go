// Package timer implements the countdown and the work/break sequencing.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/tomato/internal/model"
	"github.com/verte-zerg/tomato/internal/notify"
	"github.com/verte-zerg/tomato/internal/sound"
)

// DefaultTickInterval is the wake-up granularity of a running countdown.
const DefaultTickInterval = 100 * time.Millisecond

// Completion messages shown when a session ends.
const (
	MessageWorkComplete = "Work session complete"
	MessageBreakOver    = "Break over"
	MessageSkipped      = "Session skipped"
)

// Recorder receives the outcome of work sessions.
type Recorder interface {
	RecordCompletion(minutes int) []model.Achievement
	RecordInterruption(minutes int)
}

// Options contains the collaborators and runtime options of a Controller.
type Options struct {
	Recorder       Recorder
	Player         sound.Player
	Notifier       notify.Notifier
	Clock          func() time.Time
	Scheduler      Scheduler
	TickInterval   time.Duration
	AutoStartDelay time.Duration
	Logger         *slog.Logger
}

type nopRecorder struct{}

func (nopRecorder) RecordCompletion(int) []model.Achievement { return nil }
func (nopRecorder) RecordInterruption(int)                   {}

// Controller owns the countdown state machine. All methods are safe for
// concurrent use.
type Controller struct {
	mu       sync.Mutex
	settings model.Settings
	options  Options

	kind      model.SessionKind
	remaining int
	completed int
	running   bool
	anchor    time.Time

	// gen invalidates wake-ups scheduled before the last stop.
	gen      uint64
	stopTick func()
	stopAuto func()

	events []chan Event
	closed bool
}

// New creates a paused controller at the start of a work session. Invalid
// settings are normalized.
func New(settings model.Settings, options Options) *Controller {
	settings.Normalize()
	if options.Recorder == nil {
		options.Recorder = nopRecorder{}
	}
	if options.Player == nil {
		options.Player = sound.Nop{}
	}
	if options.Notifier == nil {
		options.Notifier = notify.Nop{}
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Scheduler == nil {
		options.Scheduler = TickerScheduler{}
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.AutoStartDelay < 0 {
		options.AutoStartDelay = 0
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	c := &Controller{
		settings: settings,
		options:  options,
		kind:     model.SessionWork,
	}
	c.remaining = c.durationLocked(c.kind)
	return c
}

// Subscribe registers a new observer channel. Events are dropped for
// observers that are not keeping up.
func (c *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.events = append(c.events, ch)
	return ch
}

// Snapshot returns the current timer state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Settings returns the settings the controller runs with.
func (c *Controller) Settings() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Start resumes the countdown. It is a no-op while running.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelAutoLocked()
	if c.running {
		return
	}
	c.startLocked()
	c.emitLocked(EventStateChange)
}

// Pause stops the countdown. It is a no-op while paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelAutoLocked()
	if !c.running {
		return
	}
	c.stopLocked()
	c.emitLocked(EventStateChange)
}

// Toggle starts a paused countdown or pauses a running one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelAutoLocked()
	if c.running {
		c.stopLocked()
	} else {
		c.startLocked()
	}
	c.emitLocked(EventStateChange)
}

// Reset pauses and restores the full duration of the current session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelAutoLocked()
	c.stopLocked()
	c.remaining = c.durationLocked(c.kind)
	c.emitLocked(EventStateChange)
}

// Skip ends the current session now, running or not. A skipped work session
// is recorded as interrupted and then finishes like any other.
func (c *Controller) Skip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelAutoLocked()
	if c.kind == model.SessionWork {
		c.options.Recorder.RecordInterruption(c.settings.WorkDuration)
	}
	c.completeLocked(c.options.Clock(), true)
}

// ApplySettings validates and adopts new settings. Invalid settings leave the
// controller unchanged. A paused countdown restarts from the new duration; a
// running one keeps going, capped at the new duration.
func (c *Controller) ApplySettings(settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.settings = settings
	duration := c.durationLocked(c.kind)
	if c.running {
		c.remaining = min(c.remaining, duration)
	} else {
		c.remaining = duration
	}
	c.emitLocked(EventStateChange)
	return nil
}

// Close stops every wake-up and closes observer channels.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelAutoLocked()
	c.stopLocked()
	c.closed = true
	events := c.events
	c.events = nil
	c.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (c *Controller) startLocked() {
	c.running = true
	c.anchor = c.options.Clock()
	c.gen++
	gen := c.gen
	c.stopTick = c.options.Scheduler.Every(c.options.TickInterval, func() {
		c.tick(gen)
	})
}

func (c *Controller) stopLocked() {
	c.running = false
	c.gen++
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
}

func (c *Controller) cancelAutoLocked() {
	if c.stopAuto == nil {
		return
	}
	c.stopAuto()
	c.stopAuto = nil
	c.gen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.running || gen != c.gen {
		return
	}
	now := c.options.Clock()
	elapsed := int(now.Sub(c.anchor) / time.Second)
	if elapsed < 1 {
		return
	}
	c.anchor = c.anchor.Add(time.Duration(elapsed) * time.Second)
	c.remaining = max(0, c.remaining-elapsed)
	if c.remaining == 0 {
		c.completeLocked(now, false)
		return
	}
	c.emitLocked(EventTick)
}

func (c *Controller) completeLocked(now time.Time, skipped bool) {
	c.stopLocked()
	finished := c.kind
	if c.settings.SoundEnabled {
		if err := c.options.Player.Play(c.settings.SelectedSound); err != nil {
			c.options.Logger.Warn("failed to play sound", "sound", c.settings.SelectedSound, "error", err)
		}
	}

	switch {
	case skipped:
		c.options.Notifier.Notify(MessageSkipped)
	case finished == model.SessionWork:
		c.options.Notifier.Notify(MessageWorkComplete)
	default:
		c.options.Notifier.Notify(MessageBreakOver)
	}

	var unlocked []model.Achievement
	if finished == model.SessionWork {
		unlocked = c.options.Recorder.RecordCompletion(c.settings.WorkDuration)
		c.completed++
		if c.completed >= c.settings.SessionsUntilLongBreak {
			c.kind = model.SessionLongBreak
			c.completed = 0
		} else {
			c.kind = model.SessionShortBreak
		}
	} else {
		c.kind = model.SessionWork
	}
	c.remaining = c.durationLocked(c.kind)

	c.options.Logger.Info("session finished",
		"finished", string(finished),
		"skipped", skipped,
		"next", string(c.kind),
	)
	c.emitEventLocked(Event{
		Type:         EventSessionComplete,
		Snapshot:     c.snapshotLocked(),
		Finished:     finished,
		Skipped:      skipped,
		Achievements: unlocked,
		At:           now,
	})

	if !c.settings.AutoStart(c.kind) {
		return
	}
	if c.options.AutoStartDelay == 0 {
		c.startLocked()
		c.emitLocked(EventStateChange)
		return
	}
	gen := c.gen
	c.stopAuto = c.options.Scheduler.After(c.options.AutoStartDelay, func() {
		c.autoStart(gen)
	})
}

func (c *Controller) autoStart(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.running || gen != c.gen {
		return
	}
	c.stopAuto = nil
	c.startLocked()
	c.emitLocked(EventStateChange)
}

func (c *Controller) durationLocked(kind model.SessionKind) int {
	return c.settings.Minutes(kind) * 60
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Kind:             c.kind,
		RemainingSeconds: c.remaining,
		DurationSeconds:  c.durationLocked(c.kind),
		Running:          c.running,
		CompletedInCycle: c.completed,
		CycleLength:      c.settings.SessionsUntilLongBreak,
	}
}

func (c *Controller) emitLocked(eventType EventType) {
	c.emitEventLocked(Event{
		Type:     eventType,
		Snapshot: c.snapshotLocked(),
		At:       c.options.Clock(),
	})
}

func (c *Controller) emitEventLocked(event Event) {
	for _, ch := range c.events {
		select {
		case ch <- event:
		default:
		}
	}
}
