package notify

import (
	"testing"
	"time"
)

func TestToastAutoDismisses(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	var toast Toast
	if toast.Visible(now) {
		t.Fatalf("empty toast should not be visible")
	}
	toast.Show("Settings saved", now, 0)
	if !toast.Visible(now.Add(2999 * time.Millisecond)) {
		t.Fatalf("toast should be visible before the default TTL")
	}
	if toast.Visible(now.Add(DefaultTTL)) {
		t.Fatalf("toast should hide after the default TTL")
	}
}

func TestToastReplacesMessage(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	var toast Toast
	toast.Show("first", now, time.Second)
	toast.Show("second", now.Add(900*time.Millisecond), time.Second)
	if toast.Message() != "second" {
		t.Fatalf("expected replacement, got %q", toast.Message())
	}
	if !toast.Visible(now.Add(1500 * time.Millisecond)) {
		t.Fatalf("replacement should restart the TTL")
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	c := NewChannel(1)
	c.Notify("a")
	c.Notify("b")
	if got := <-c.C(); got != "a" {
		t.Fatalf("expected first message, got %q", got)
	}
	select {
	case msg := <-c.C():
		t.Fatalf("expected dropped message, got %q", msg)
	default:
	}
	c.Close()
	c.Notify("after close")
}

func TestToastExpiresAt(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	var toast Toast
	toast.Show("Break over", now, 0)
	if got := toast.ExpiresAt(); !got.Equal(now.Add(DefaultTTL)) {
		t.Fatalf("unexpected expiry %v", got)
	}
	toast.Show("Session skipped", now.Add(time.Second), 5*time.Second)
	if got := toast.ExpiresAt(); !got.Equal(now.Add(6 * time.Second)) {
		t.Fatalf("replacement should move the expiry, got %v", got)
	}
}

func TestMultiFansOut(t *testing.T) {
	var first, second []string
	m := Multi{
		Func(func(msg string) { first = append(first, msg) }),
		nil,
		Func(func(msg string) { second = append(second, msg) }),
	}
	m.Notify("Settings saved")
	if len(first) != 1 || len(second) != 1 || first[0] != "Settings saved" || second[0] != "Settings saved" {
		t.Fatalf("unexpected deliveries: %v %v", first, second)
	}
}
