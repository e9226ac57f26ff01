package views

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

const (
	MinWatchRatio     = 0.15
	ClipMinWatch      = 3 * time.Second
	LongVideoDuration = 600 * time.Second
	LongVideoMinWatch = 60 * time.Second
)

// Recorder sends a view to the server.
type Recorder interface {
	RecordView(ctx context.Context, videoID string) error
}

// Counter owns the local view counts.
type Counter interface {
	IncrementViews(entityID string) int
}

// Position is a playback progress sample.
type Position struct {
	Current  time.Duration
	Duration time.Duration
}

// Ratio returns the watched fraction, or 0 while the duration is unknown.
func (p Position) Ratio() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return p.Current.Seconds() / p.Duration.Seconds()
}

// policy decides whether a sample counts as a view.
type policy func(p Position) bool

func clipPolicy(p Position) bool {
	return p.Ratio() > MinWatchRatio || p.Current > ClipMinWatch
}

func longVideoPolicy(p Position) bool {
	return p.Current >= LongVideoMinWatch
}

func videoPolicy(p Position) bool {
	return p.Ratio() > MinWatchRatio
}

// policyFor picks the rule for an item once its duration is known.
func policyFor(kind models.Kind, duration time.Duration) policy {
	switch {
	case kind == models.KindClip:
		return clipPolicy
	case duration > LongVideoDuration:
		return longVideoPolicy
	default:
		return videoPolicy
	}
}

type entry struct {
	kind     models.Kind
	duration time.Duration
	rule     policy
	counted  bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// Options configures a [Reporter].
type Options struct {
	Recorder Recorder
	Counter  Counter
	Executor shared.Executor
	Logger   *log.Logger
}

// Reporter holds the per-item view latches.
type Reporter struct {
	recorder Recorder
	counter  Counter
	run      shared.Executor
	logger   *log.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewReporter creates a Reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Executor == nil {
		opts.Executor = shared.Go
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Reporter{
		recorder: opts.Recorder,
		counter:  opts.Counter,
		run:      opts.Executor,
		logger:   shared.WithLogger(opts.Logger, "component", "views"),
		entries:  map[string]*entry{},
	}
}

// Mount arms a fresh latch for item. Mounting an item again cancels its previous report.
func (r *Reporter) Mount(ctx context.Context, item models.FeedItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[item.ID]; ok {
		old.cancel()
	}
	ectx, cancel := context.WithCancel(ctx)
	e := &entry{kind: item.Kind, ctx: ectx, cancel: cancel}
	if item.Duration > 0 {
		e.duration = item.Duration
		e.rule = policyFor(item.Kind, item.Duration)
	}
	r.entries[item.ID] = e
}

// Unmount forgets an item and cancels its in-flight report.
func (r *Reporter) Unmount(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.cancel()
		delete(r.entries, id)
	}
}

// Counted reports whether the item's view already fired since it was mounted.
func (r *Reporter) Counted(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && e.counted
}

// Observe feeds a playback sample. It reports whether this sample fired the view.
func (r *Reporter) Observe(id string, pos Position) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.counted {
		r.mu.Unlock()
		return false
	}
	if e.rule == nil {
		if pos.Duration <= 0 {
			r.mu.Unlock()
			return false
		}
		e.duration = pos.Duration
		e.rule = policyFor(e.kind, pos.Duration)
	}
	if !e.rule(Position{Current: pos.Current, Duration: e.duration}) {
		r.mu.Unlock()
		return false
	}
	e.counted = true
	ctx := e.ctx
	r.mu.Unlock()

	if r.counter != nil {
		r.counter.IncrementViews(id)
	}
	r.logger.Debug("view threshold reached", "video", id, "at", pos.Current)

	if r.recorder != nil {
		r.run(func() {
			if err := r.recorder.RecordView(ctx, id); err != nil {
				r.logger.Debug("failed to record view", "video", id, "err", err)
			}
		})
	}
	return true
}
