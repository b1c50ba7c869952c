package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/tomato/internal/timer"
)

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// runHeadless prints controller events line by line until stop fires or the
// event channel closes.
func runHeadless(out io.Writer, events <-chan timer.Event, toasts <-chan string, stop <-chan os.Signal) error {
	for {
		select {
		case <-stop:
			return nil
		case msg, ok := <-toasts:
			if !ok {
				toasts = nil
				continue
			}
			if _, err := fmt.Fprintf(out, "%s %s\n", time.Now().Format("15:04:05"), msg); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			text := formatEvent(ev)
			if text == "" {
				continue
			}
			if _, err := fmt.Fprintf(out, "%s %s\n", ev.At.Format("15:04:05"), text); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
}

func notifySignals() (<-chan os.Signal, func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan, func() { signal.Stop(sigChan) }
}

// formatEvent renders an event as one line. Ticks are reported once a minute.
func formatEvent(ev timer.Event) string {
	snap := ev.Snapshot
	switch ev.Type {
	case timer.EventSessionComplete:
		verb := "finished"
		if ev.Skipped {
			verb = "skipped"
		}
		line := fmt.Sprintf("%s %s, next: %s %s", ev.Finished.Title(), verb, strings.ToLower(snap.Kind.Title()), snap.Clock())
		if len(ev.Achievements) > 0 {
			titles := make([]string, len(ev.Achievements))
			for i, a := range ev.Achievements {
				titles[i] = a.Title()
			}
			line += " (unlocked: " + strings.Join(titles, ", ") + ")"
		}
		return line
	case timer.EventStateChange:
		state := "paused"
		if snap.Running {
			state = "running"
		}
		return fmt.Sprintf("%s %s %s", snap.Kind.Title(), snap.Clock(), state)
	case timer.EventTick:
		if snap.RemainingSeconds%60 != 0 {
			return ""
		}
		return fmt.Sprintf("%s %s left", snap.Kind.Title(), snap.Clock())
	default:
		return ""
	}
}
