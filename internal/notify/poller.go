package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultInterval           = 3 * time.Second
	DefaultCelebrationTimeout = 15 * time.Second
)

// Dispositions recorded in the history.
const (
	DispositionToast       = "toast"
	DispositionCelebration = "celebration"
)

// Source is the notification API.
type Source interface {
	UnreadNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

// History keeps a local record of delivered notifications.
type History interface {
	Record(ctx context.Context, n models.Notification, disposition string, at time.Time) error
	MarkAcknowledged(ctx context.Context, id int64, at time.Time) error
}

// EventKind classifies poller events.
type EventKind int

const (
	// EventToast is emitted when a notification is shown as a toast.
	EventToast EventKind = iota
	// EventCelebration is emitted when an achievement occupies the slot.
	EventCelebration
	// EventDismissed is emitted when the celebration slot is cleared.
	EventDismissed
)

func (k EventKind) String() string {
	switch k {
	case EventToast:
		return "toast"
	case EventCelebration:
		return "celebration"
	case EventDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Event reports a delivery change to observers.
type Event struct {
	Kind         EventKind
	Notification models.Notification
}

// Options configures a [Poller].
type Options struct {
	Source   Source
	Toasts   toast.Sink
	History  History
	Session  shared.Session
	Clock    clock.Clock
	Interval time.Duration
	// CelebrationTimeout auto-dismisses a celebration. Negative disables it.
	CelebrationTimeout time.Duration
	Logger             *log.Logger
}

// Poller is the single writer of the celebration slot and the acknowledged set.
type Poller struct {
	source   Source
	toasts   toast.Sink
	history  History
	session  shared.Session
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
	inflight *semaphore.Weighted

	emitMu    sync.Mutex
	mu        sync.Mutex
	running   bool
	runCtx    context.Context
	cancelRun context.CancelFunc
	stopTimer []clock.CancelFunc
	slot      *models.Notification
	stopAuto  clock.CancelFunc
	seen      map[int64]bool
	subs      []func(Event)
}

// NewPoller creates a stopped Poller.
func NewPoller(opts Options) *Poller {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.CelebrationTimeout == 0 {
		opts.CelebrationTimeout = DefaultCelebrationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Poller{
		source:   opts.Source,
		toasts:   opts.Toasts,
		history:  opts.History,
		session:  opts.Session,
		clock:    opts.Clock,
		interval: opts.Interval,
		timeout:  opts.CelebrationTimeout,
		logger:   shared.WithLogger(opts.Logger, "component", "notify"),
		inflight: semaphore.NewWeighted(1),
		seen:     map[int64]bool{},
	}
}

// Subscribe registers fn for every event. fn runs synchronously and must not call back
// into the poller.
func (p *Poller) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Start begins polling. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	if !p.session.Authenticated() {
		return shared.ErrNotAuthenticated
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	tick := func() {
		if err := p.Poll(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("notification poll failed", "err", err)
		}
	}
	p.running = true
	p.runCtx = runCtx
	p.cancelRun = cancel
	p.stopTimer = []clock.CancelFunc{
		p.clock.AfterFunc(0, tick),
		p.clock.Every(p.interval, tick),
	}
	p.logger.Debug("polling started", "interval", p.interval)
	return nil
}

// Stop cancels the schedule and any in-flight fetch, and resets session state.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	for _, stop := range p.stopTimer {
		stop()
	}
	p.cancelRun()
	if p.stopAuto != nil {
		p.stopAuto()
		p.stopAuto = nil
	}
	p.running = false
	p.stopTimer = nil
	p.slot = nil
	p.seen = map[int64]bool{}
	p.logger.Debug("polling stopped")
}

// Running reports whether the poller is started.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Celebration returns the achievement in the slot, if any.
func (p *Poller) Celebration() (models.Notification, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.slot == nil {
		return models.Notification{}, false
	}
	return *p.slot, true
}

// Poll fetches unread notifications once and delivers them. It returns nil without fetching
// when another fetch is still in flight.
func (p *Poller) Poll(ctx context.Context) error {
	if !p.inflight.TryAcquire(1) {
		p.logger.Debug("previous fetch still in flight, skipping tick")
		return nil
	}
	defer p.inflight.Release(1)

	items, err := p.source.UnreadNotifications(ctx)
	if err != nil {
		return err
	}
	for _, n := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.deliver(ctx, n)
	}
	return nil
}

func (p *Poller) deliver(ctx context.Context, n models.Notification) {
	if n.IsAchievement() {
		p.celebrate(ctx, n)
		return
	}

	shown := false
	p.emit(func() []Event {
		if ctx.Err() != nil || p.seen[n.ID] {
			return nil
		}
		p.seen[n.ID] = true
		shown = true
		return []Event{{Kind: EventToast, Notification: n}}
	})
	if !shown {
		return
	}

	if p.toasts != nil {
		p.toasts.Show(toast.Toast{Type: n.Type, Message: n.Message, Link: n.Link})
	}
	p.record(ctx, n, DispositionToast)
	if !p.acknowledge(ctx, n.ID) {
		p.forget(n.ID)
	}
}

func (p *Poller) celebrate(ctx context.Context, n models.Notification) {
	occupied := false
	p.emit(func() []Event {
		if ctx.Err() != nil || p.seen[n.ID] || p.slot != nil {
			return nil
		}
		p.seen[n.ID] = true
		p.slot = &n
		if p.timeout > 0 {
			id := n.ID
			p.stopAuto = p.clock.AfterFunc(p.timeout, func() { p.dismiss(context.Background(), &id) })
		}
		occupied = true
		return []Event{{Kind: EventCelebration, Notification: n}}
	})
	if occupied {
		p.record(ctx, n, DispositionCelebration)
	}
}

// Dismiss acknowledges and clears the current celebration. The next pending achievement
// surfaces on the following poll.
func (p *Poller) Dismiss(ctx context.Context) {
	p.dismiss(ctx, nil)
}

// dismiss acknowledges the celebration and then clears the slot. A non-nil only restricts
// it to that notification, so a late auto-dismiss cannot clear a newer celebration.
func (p *Poller) dismiss(ctx context.Context, only *int64) {
	p.mu.Lock()
	current := p.slot
	p.mu.Unlock()
	if current == nil || (only != nil && current.ID != *only) {
		return
	}

	acked := p.acknowledge(ctx, current.ID)
	p.emit(func() []Event {
		if p.slot == nil || p.slot.ID != current.ID {
			return nil
		}
		p.slot = nil
		if p.stopAuto != nil {
			p.stopAuto()
			p.stopAuto = nil
		}
		if !acked {
			delete(p.seen, current.ID)
		}
		return []Event{{Kind: EventDismissed, Notification: *current}}
	})
}

// acknowledge marks id read. It reports whether the server accepted it; an unacknowledged
// notification stays unread and is delivered again by a later fetch.
func (p *Poller) acknowledge(ctx context.Context, id int64) bool {
	if err := p.source.MarkNotificationRead(ctx, id); err != nil {
		p.logger.Warn("failed to acknowledge notification", "id", id, "err", err)
		return false
	}
	if p.history != nil {
		if err := p.history.MarkAcknowledged(ctx, id, p.clock.Now()); err != nil {
			p.logger.Debug("failed to update notification history", "id", id, "err", err)
		}
	}
	return true
}

func (p *Poller) forget(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, id)
}

func (p *Poller) record(ctx context.Context, n models.Notification, disposition string) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(ctx, n, disposition, p.clock.Now()); err != nil {
		p.logger.Debug("failed to record notification", "id", n.ID, "err", err)
	}
}

func (p *Poller) emit(fn func() []Event) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	events := fn()
	subs := append([]func(Event){}, p.subs...)
	p.mu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
}
