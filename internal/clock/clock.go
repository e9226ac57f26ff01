// Package clock abstracts wall time and timers so pollers, debounce windows and
// ready-signal waits can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it more than once is safe.
type CancelFunc func()

// Clock is the time source and scheduler handed to engine components.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls fn once, after d, on its own goroutine.
	AfterFunc(d time.Duration, fn func()) CancelFunc

	// Every calls fn every interval until cancelled. Calls never overlap.
	Every(interval time.Duration, fn func()) CancelFunc
}

// System is the [Clock] backed by the runtime timers.
type System struct{}

var _ Clock = System{}

func (System) Now() time.Time { return time.Now() }

func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (System) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Every runs fn from a single goroutine driven by a [time.Ticker], so a slow fn delays
// the next call instead of running concurrently with it.
func (System) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
