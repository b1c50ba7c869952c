// Package notify provides the single-message toast channel.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

// Notifier receives user-visible messages.
type Notifier interface {
	Notify(message string)
}

// Func adapts a function to Notifier.
type Func func(message string)

// Notify implements Notifier.
func (f Func) Notify(message string) {
	if f != nil {
		f(message)
	}
}

// Nop discards messages.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string) {}

// Toast is the currently displayed message. A newer message replaces it.
type Toast struct {
	message string
	shownAt time.Time
	ttl     time.Duration
}

// Show replaces the current message.
func (t *Toast) Show(message string, now time.Time, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	t.message = message
	t.shownAt = now
	t.ttl = ttl
}

// Visible reports whether the toast should still be displayed at now.
func (t Toast) Visible(now time.Time) bool {
	if t.message == "" {
		return false
	}
	return now.Sub(t.shownAt) < t.ttl
}

// Message returns the current message.
func (t Toast) Message() string {
	return t.message
}

// ExpiresAt returns when the current message hides.
func (t Toast) ExpiresAt() time.Time {
	return t.shownAt.Add(t.ttl)
}

// Channel is a buffered Notifier. Messages are dropped when the buffer is
// full so producers never block.
type Channel struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

// NewChannel returns a Channel with the given buffer size.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 1
	}
	return &Channel{ch: make(chan string, buffer)}
}

// Notify implements Notifier.
func (c *Channel) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- message:
	default:
	}
}

// C returns the receive side.
func (c *Channel) C() <-chan string {
	return c.ch
}

// Close closes the receive side. Later messages are discarded.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Multi fans a message out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(message)
		}
	}
}
