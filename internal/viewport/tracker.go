package viewport

import (
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

// DefaultThreshold is the visible fraction an item needs to become active.
const DefaultThreshold = 0.6

// Activation is emitted whenever the active item changes. Empty ids mean none.
type Activation struct {
	Previous string
	Current  string
}

// Tracker is the single writer of [models.ActivationState].
type Tracker struct {
	threshold float64

	emitMu   sync.Mutex
	mu       sync.Mutex
	order    []string
	ratios   map[string]float64
	active   string
	handlers []func(Activation)
}

// NewTracker creates a Tracker. A threshold outside (0, 1] uses [DefaultThreshold].
func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold, ratios: map[string]float64{}}
}

// OnActivationChanged registers fn for every activation change.
// Handlers run synchronously and must not call back into the tracker.
func (t *Tracker) OnActivationChanged(fn func(Activation)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, fn)
}

// Register adds an item with zero visibility. Registering twice is a no-op.
func (t *Tracker) Register(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ratios[id]; ok {
		return
	}
	t.order = append(t.order, id)
	t.ratios[id] = 0
}

// Unregister removes an item. Removing the active item hands activation to the most visible
// remaining item, or the first registered one.
func (t *Tracker) Unregister(id string) {
	t.change(func() (string, bool) {
		if _, ok := t.ratios[id]; !ok {
			return "", false
		}
		delete(t.ratios, id)
		t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })

		if t.active != id {
			return "", false
		}
		return t.successorLocked(), true
	})
}

// successorLocked picks who inherits activation from a removed item.
func (t *Tracker) successorLocked() string {
	if len(t.order) == 0 {
		return ""
	}
	best := t.order[0]
	for _, id := range t.order[1:] {
		if t.ratios[id] > t.ratios[best] {
			best = id
		}
	}
	return best
}

// Observe records an item's visible fraction and re-evaluates activation.
func (t *Tracker) Observe(id string, ratio float64) error {
	var err error
	t.change(func() (string, bool) {
		if _, ok := t.ratios[id]; !ok {
			err = fmt.Errorf("%w: %s", shared.ErrNotMounted, id)
			return "", false
		}
		t.ratios[id] = min(max(ratio, 0), 1)
		return t.candidateLocked()
	})
	return err
}

// candidateLocked returns the best item at or above threshold. The active item wins ties.
func (t *Tracker) candidateLocked() (string, bool) {
	best, bestRatio := "", -1.0
	if r, ok := t.ratios[t.active]; ok && r >= t.threshold {
		best, bestRatio = t.active, r
	}
	for _, id := range t.order {
		if r := t.ratios[id]; r >= t.threshold && r > bestRatio {
			best, bestRatio = id, r
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// Activate makes id active directly, as keyboard navigation does.
func (t *Tracker) Activate(id string) error {
	var err error
	t.change(func() (string, bool) {
		if _, ok := t.ratios[id]; !ok {
			err = fmt.Errorf("%w: %s", shared.ErrNotMounted, id)
			return "", false
		}
		return id, true
	})
	return err
}

// Step moves activation by delta positions in registration order, clamped to the ends.
// It returns the newly active id.
func (t *Tracker) Step(delta int) string {
	var next string
	t.change(func() (string, bool) {
		if len(t.order) == 0 {
			return "", false
		}
		idx := slices.Index(t.order, t.active)
		if idx < 0 {
			idx = 0
		} else {
			idx = min(max(idx+delta, 0), len(t.order)-1)
		}
		next = t.order[idx]
		return next, true
	})
	return next
}

// Active returns the current activation state.
func (t *Tracker) Active() models.ActivationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.ActivationState{ActiveID: t.active}
}

// Items returns the registered ids in registration order.
func (t *Tracker) Items() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.order)
}

// change applies fn under the lock and emits an [Activation] when the chosen id differs.
func (t *Tracker) change(fn func() (next string, ok bool)) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	next, ok := fn()
	if !ok || next == t.active {
		t.mu.Unlock()
		return
	}
	ev := Activation{Previous: t.active, Current: next}
	t.active = next
	handlers := slices.Clone(t.handlers)
	t.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
