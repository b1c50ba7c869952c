package timer

import (
	"sync"
	"time"
)

// Scheduler provides the periodic and one-shot wake-ups the controller runs
// on. The returned stop functions are safe to call more than once and must
// not wait for a callback in progress.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
	After(d time.Duration, fn func()) (stop func())
}

// TickerScheduler runs callbacks on real time.
type TickerScheduler struct{}

// Every calls fn every d from a dedicated goroutine until stopped.
func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	stopCh := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
	}
}

// After calls fn once after d unless stopped first.
func (TickerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
