package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a [Clock] that only moves when Advance is called.
//
// Due callbacks run synchronously inside Advance, in deadline order, which makes
// timer-driven components deterministic under test.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	id    int
	at    time.Time
	every time.Duration
	fn    func()
	ch    chan time.Time
}

var _ Clock = (*Manual)(nil)

// NewManual creates a clock reading start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, timers: map[int]*manualTimer{}}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Manual) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.add(&manualTimer{at: c.Now().Add(d), ch: ch})
	return ch
}

func (c *Manual) AfterFunc(d time.Duration, fn func()) CancelFunc {
	return c.add(&manualTimer{at: c.Now().Add(d), fn: fn})
}

func (c *Manual) Every(interval time.Duration, fn func()) CancelFunc {
	return c.add(&manualTimer{at: c.Now().Add(interval), every: interval, fn: fn})
}

func (c *Manual) add(t *manualTimer) CancelFunc {
	c.mu.Lock()
	c.nextID++
	t.id = c.nextID
	c.timers[t.id] = t
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.timers, t.id)
		c.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing every timer that falls due on the way.
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			delete(c.timers, next.id)
		}
		fn, ch, now := next.fn, next.ch, c.now
		c.mu.Unlock()

		if ch != nil {
			ch <- now
		}
		if fn != nil {
			fn()
		}
	}
}

// nextDue returns the earliest timer due at or before target. Callers hold c.mu.
func (c *Manual) nextDue(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].id < due[j].id
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

// Pending returns the number of scheduled timers.
func (c *Manual) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
