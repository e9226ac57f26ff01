package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/viewport"
	"github.com/desertthunder/reelsync/internal/views"
)

// DefaultDoubleTapWindow is the longest gap between two taps that still counts as a double tap.
const DefaultDoubleTapWindow = 300 * time.Millisecond

// Media is a playable element. Play may fail with [shared.ErrAutoplayRejected].
type Media interface {
	Play(ctx context.Context) error
	Pause()
	Seek(d time.Duration)
	SetMuted(muted bool)
	Position() time.Duration
	Duration() time.Duration
	Paused() bool
}

// State is an item's playback state.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Tracker is the activation source the controller keeps in step with mounts.
type Tracker interface {
	Register(id string)
	Unregister(id string)
	OnActivationChanged(fn func(viewport.Activation))
}

// Reporter receives playback progress.
type Reporter interface {
	Mount(ctx context.Context, item models.FeedItem)
	Unmount(id string)
	Observe(id string, pos views.Position) bool
}

// Store is the engagement state the controller reads and likes through.
type Store interface {
	Track(item models.FeedItem)
	Forget(entityID string)
	Get(entityID string, field models.Field) (models.Snapshot, bool)
	ToggleLike(ctx context.Context, videoID string) error
}

// Options configures a [Controller].
type Options struct {
	Tracker         Tracker
	Reporter        Reporter
	Store           Store
	DoubleTapWindow time.Duration
	Muted           bool
	Logger          *log.Logger
}

type slot struct {
	item  models.FeedItem
	media Media
	state State
}

type tap struct {
	id string
	at time.Time
}

// Controller owns every mounted media element of one feed.
type Controller struct {
	tracker  Tracker
	reporter Reporter
	store    Store
	window   time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	slots   map[string]*slot
	active  string
	muted   bool
	lastTap tap
}

// NewController creates a Controller and subscribes it to the tracker's activation events.
func NewController(opts Options) *Controller {
	if opts.DoubleTapWindow <= 0 {
		opts.DoubleTapWindow = DefaultDoubleTapWindow
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	c := &Controller{
		tracker:  opts.Tracker,
		reporter: opts.Reporter,
		store:    opts.Store,
		window:   opts.DoubleTapWindow,
		logger:   shared.WithLogger(opts.Logger, "component", "playback"),
		slots:    map[string]*slot{},
		muted:    opts.Muted,
	}
	if c.tracker != nil {
		c.tracker.OnActivationChanged(c.HandleActivation)
	}
	return c
}

// Mount adds an item and its element to the feed.
func (c *Controller) Mount(ctx context.Context, item models.FeedItem, media Media) {
	c.mu.Lock()
	c.slots[item.ID] = &slot{item: item, media: media, state: Idle}
	c.mu.Unlock()

	if c.store != nil {
		c.store.Track(item)
	}
	if c.reporter != nil {
		c.reporter.Mount(ctx, item)
	}
	if c.tracker != nil {
		c.tracker.Register(item.ID)
	}
}

// Unmount stops and removes an item. If it was active, the tracker hands activation on.
func (c *Controller) Unmount(id string) {
	c.mu.Lock()
	s, ok := c.slots[id]
	if ok {
		c.resetLocked(s)
		delete(c.slots, id)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	if c.tracker != nil {
		c.tracker.Unregister(id)
	}
	if c.reporter != nil {
		c.reporter.Unmount(id)
	}
	if c.store != nil {
		c.store.Forget(id)
	}
}

// HandleActivation pauses and rewinds the previous item, then plays the new one.
func (c *Controller) HandleActivation(ev viewport.Activation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.slots[ev.Previous]; ok {
		c.resetLocked(prev)
	}
	for id, s := range c.slots {
		if id != ev.Current && s.state != Idle {
			c.resetLocked(s)
		}
	}

	c.active = ev.Current
	cur, ok := c.slots[ev.Current]
	if !ok {
		return
	}
	cur.media.SetMuted(c.muted)
	c.playLocked(ev.Current, cur)
}

func (c *Controller) resetLocked(s *slot) {
	s.media.Pause()
	s.media.Seek(0)
	s.state = Idle
}

func (c *Controller) playLocked(id string, s *slot) {
	err := s.media.Play(context.Background())
	switch {
	case err == nil:
		s.state = Playing
	case errors.Is(err, shared.ErrAutoplayRejected):
		c.logger.Debug("autoplay rejected, waiting for a gesture", "item", id)
		s.state = Paused
	default:
		c.logger.Warn("failed to start playback", "item", id, "err", err)
		s.state = Paused
	}
}

// Tap handles a single tap on an item at time at. Every tap toggles playback; a tap within the
// double-tap window of the previous one on the same item also likes it. It reports whether the
// tap completed a double tap.
func (c *Controller) Tap(ctx context.Context, id string, at time.Time) (bool, error) {
	c.mu.Lock()
	s, err := c.activeSlotLocked(id)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}

	double := c.lastTap.id == id && !c.lastTap.at.IsZero() && at.Sub(c.lastTap.at) <= c.window
	if double {
		c.lastTap = tap{}
	} else {
		c.lastTap = tap{id: id, at: at}
	}
	c.toggleLocked(id, s)
	c.mu.Unlock()

	if !double || c.store == nil {
		return double, nil
	}
	if snap, ok := c.store.Get(id, models.FieldLike); ok && snap.Active {
		return true, nil
	}
	if err := c.store.ToggleLike(ctx, id); err != nil && !errors.Is(err, shared.ErrDebounced) {
		return true, err
	}
	return true, nil
}

// TogglePlay pauses a playing active item or resumes a paused one.
func (c *Controller) TogglePlay(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.activeSlotLocked(id)
	if err != nil {
		return err
	}
	c.toggleLocked(id, s)
	return nil
}

func (c *Controller) toggleLocked(id string, s *slot) {
	if s.state == Playing {
		s.media.Pause()
		s.state = Paused
		return
	}
	c.playLocked(id, s)
}

func (c *Controller) activeSlotLocked(id string) (*slot, error) {
	if id == "" || id != c.active {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotActive, id)
	}
	s, ok := c.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotMounted, id)
	}
	return s, nil
}

// SetMuted applies the mute preference to the active element and carries it to later ones.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
	if s, ok := c.slots[c.active]; ok {
		s.media.SetMuted(muted)
	}
}

// ToggleMute flips the mute preference and returns the new value.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	muted := !c.muted
	c.mu.Unlock()
	c.SetMuted(muted)
	return muted
}

// Muted returns the mute preference.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// TimeUpdate forwards a progress sample to the view reporter. It reports whether a view fired.
func (c *Controller) TimeUpdate(id string, current, duration time.Duration) bool {
	if c.reporter == nil {
		return false
	}
	return c.reporter.Observe(id, views.Position{Current: current, Duration: duration})
}

// State returns an item's playback state.
func (c *Controller) State(id string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[id]
	if !ok {
		return Idle, false
	}
	return s.state, true
}

// Active returns the id the controller last activated.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Playing returns the ids currently in the Playing state.
func (c *Controller) Playing() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, s := range c.slots {
		if s.state == Playing {
			ids = append(ids, id)
		}
	}
	return ids
}
