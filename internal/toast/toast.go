// Package toast holds transient user-facing messages.
//
// Engine components report user-visible outcomes (a failed like, a premium-only
// resolution, a polled notification) through a [Sink]; the front-end renders
// whatever [Center.Active] returns.
package toast

import (
	"sync"
	"time"

	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

// DefaultDuration is how long a toast stays visible unless it sets its own duration.
const DefaultDuration = 5 * time.Second

// Toast is a transient message. A negative Duration keeps it until dismissed.
type Toast struct {
	ID        string
	Type      models.NotificationType
	Title     string
	Message   string
	Link      string
	CreatedAt time.Time
	Duration  time.Duration
}

// Sink accepts toasts for display and returns the assigned id.
type Sink interface {
	Show(t Toast) string
}

// Center is the in-memory [Sink] used by the CLI and TUI.
type Center struct {
	mu       sync.Mutex
	clock    clock.Clock
	duration time.Duration
	items    []Toast
	subs     []func(Toast)
}

var _ Sink = (*Center)(nil)

// NewCenter creates a Center. A nil clock uses [clock.System]; a zero duration uses [DefaultDuration].
func NewCenter(c clock.Clock, d time.Duration) *Center {
	if c == nil {
		c = clock.System{}
	}
	if d == 0 {
		d = DefaultDuration
	}
	return &Center{clock: c, duration: d}
}

// Show stores t and notifies subscribers.
func (c *Center) Show(t Toast) string {
	if t.ID == "" {
		t.ID = shared.GenerateID()
	}
	if t.Type == "" {
		t.Type = models.NotificationInfo
	}
	if t.Duration == 0 {
		t.Duration = c.duration
	}
	t.CreatedAt = c.clock.Now()

	c.mu.Lock()
	c.items = append(c.items, t)
	subs := append([]func(Toast){}, c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
	return t.ID
}

// Active returns the toasts that have not expired, oldest first, and forgets expired ones.
func (c *Center) Active() []Toast {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, t := range c.items {
		if t.Duration < 0 || now.Before(t.CreatedAt.Add(t.Duration)) {
			kept = append(kept, t)
		}
	}
	c.items = kept
	return append([]Toast(nil), kept...)
}

// Dismiss removes the toast with id. It reports whether one was removed.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.items {
		if t.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe registers fn to be called for every new toast.
func (c *Center) Subscribe(fn func(Toast)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}
