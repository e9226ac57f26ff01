package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/engagement"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/playback"
	"github.com/desertthunder/reelsync/internal/quality"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
	"github.com/desertthunder/reelsync/internal/viewport"
	"github.com/desertthunder/reelsync/internal/views"
)

// Epoch is the virtual wall time a replay starts at.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Line is one trace entry.
type Line struct {
	At      time.Duration
	Subject string
	Text    string
}

// ItemResult is an item's state at the end of a replay.
type ItemResult struct {
	ID      string
	State   string
	Like    models.Snapshot
	Views   int
	Quality string
}

// Result is the outcome of a replay.
type Result struct {
	Lines  []Line
	Active string
	Items  []ItemResult
}

// API is the server surface a replay talks to.
type API interface {
	engagement.API
	views.Recorder
}

// Options configures [Run].
type Options struct {
	// API defaults to an [Offline] seeded from the script.
	API     API
	Session shared.Session
	Logger  *log.Logger
}

type replay struct {
	ctx       context.Context
	clock     *clock.Manual
	result    *Result
	store     *engagement.Store
	tracker   *viewport.Tracker
	ctrl      *playback.Controller
	media     map[string]*media
	switchers map[string]*quality.Switcher
	items     map[string]ItemSpec
}

// Run replays script and returns its trace.
func Run(ctx context.Context, script *Script, opts Options) (*Result, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.API == nil {
		liked, fail := map[string]bool{}, map[string]bool{}
		for _, it := range script.Items {
			liked[it.ID] = it.Liked
			fail[it.ID] = it.FailLike
		}
		opts.API = NewOffline(liked, fail)
	}
	if !opts.Session.Authenticated() {
		opts.Session = shared.Session{UserID: "replay", Token: "replay"}
	}
	opts.Session.Premium = opts.Session.Premium || script.Premium

	r := &replay{
		ctx:       ctx,
		clock:     clock.NewManual(Epoch),
		result:    &Result{},
		media:     map[string]*media{},
		switchers: map[string]*quality.Switcher{},
		items:     map[string]ItemSpec{},
	}
	toasts := toastTrace(r.trace)

	r.store = engagement.NewStore(engagement.Options{
		API:      opts.API,
		Toasts:   toasts,
		Session:  opts.Session,
		Clock:    r.clock,
		Executor: shared.Inline,
		Logger:   opts.Logger,
		Debounce: script.Debounce,
	})
	r.store.Subscribe(func(ev engagement.Event) {
		switch {
		case ev.Removed:
			r.trace(ev.EntityID, "removed")
		case ev.Pending:
			r.trace(ev.EntityID, fmt.Sprintf("%s -> %s (pending)", ev.Field, describe(ev.Snapshot)))
		default:
			r.trace(ev.EntityID, fmt.Sprintf("%s = %s", ev.Field, describe(ev.Snapshot)))
		}
	})

	r.tracker = viewport.NewTracker(script.Threshold)
	r.tracker.OnActivationChanged(func(a viewport.Activation) {
		r.trace("feed", fmt.Sprintf("activate %s -> %s", orNone(a.Previous), orNone(a.Current)))
	})

	reporter := views.NewReporter(views.Options{
		Recorder: opts.API,
		Counter:  r.store,
		Executor: shared.Inline,
		Logger:   opts.Logger,
	})
	r.ctrl = playback.NewController(playback.Options{
		Tracker:         r.tracker,
		Reporter:        reporter,
		Store:           r.store,
		DoubleTapWindow: script.DoubleTapWindow,
		Muted:           script.Muted,
		Logger:          opts.Logger,
	})

	for _, spec := range script.Items {
		item := spec.Item()
		m := newMedia(spec.ID, spec.Duration, spec.RejectAutoplay, r.trace)
		r.media[spec.ID] = m
		r.items[spec.ID] = spec
		r.ctrl.Mount(ctx, item, m)
		if spec.Owner != "" {
			if _, ok := r.store.Get(spec.Owner, models.FieldFollow); !ok {
				r.store.TrackUser(spec.Owner, false, 0)
			}
		}
		r.switchers[spec.ID] = quality.NewSwitcher(quality.Options{
			Player:      m,
			Resolutions: models.Resolutions(spec.Sources),
			Session:     opts.Session,
			Toasts:      toasts,
			Clock:       r.clock,
			Logger:      opts.Logger,
		})
	}

	for _, st := range script.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.clock.Advance(st.At - r.elapsed())
		r.apply(st)
	}

	r.finish(script)
	return r.result, nil
}

func (r *replay) elapsed() time.Duration {
	return r.clock.Now().Sub(Epoch)
}

func (r *replay) trace(subject, text string) {
	r.result.Lines = append(r.result.Lines, Line{At: r.elapsed(), Subject: subject, Text: text})
}

func (r *replay) apply(st Step) {
	var err error
	switch st.Action {
	case ActionVisible:
		err = r.tracker.Observe(st.ID, st.Ratio)
	case ActionTap:
		var double bool
		if double, err = r.ctrl.Tap(r.ctx, st.ID, r.clock.Now()); err == nil && double {
			r.trace(st.ID, "double tap")
		}
	case ActionToggle:
		err = r.ctrl.TogglePlay(st.ID)
	case ActionMute:
		r.ctrl.ToggleMute()
	case ActionTime:
		if m, ok := r.media[st.ID]; ok {
			m.position = st.Position
			if r.ctrl.TimeUpdate(st.ID, st.Position, m.duration) {
				r.trace(st.ID, fmt.Sprintf("view counted at %s", st.Position))
			}
		}
	case ActionUnmount:
		r.ctrl.Unmount(st.ID)
		delete(r.switchers, st.ID)
	case ActionNext:
		r.tracker.Step(1)
	case ActionPrev:
		r.tracker.Step(-1)
	case ActionLike:
		err = r.store.ToggleLike(r.ctx, st.ID)
	case ActionFollow:
		owner := r.items[st.ID].Owner
		if owner == "" {
			err = fmt.Errorf("%w: item %s has no owner", shared.ErrInvalidInput, st.ID)
			break
		}
		err = r.store.ToggleFollow(r.ctx, owner)
	case ActionQuality:
		if sw, ok := r.switchers[st.ID]; ok {
			err = sw.SwitchTo(r.ctx, st.Value)
		} else {
			err = fmt.Errorf("%w: %s", shared.ErrNotMounted, st.ID)
		}
	}
	if err != nil {
		r.trace(orNone(st.ID), fmt.Sprintf("%s: %v", st.Action, err))
	}
}

func (r *replay) finish(script *Script) {
	r.result.Active = r.tracker.Active().ActiveID
	for _, spec := range script.Items {
		st, mounted := r.ctrl.State(spec.ID)
		if !mounted {
			continue
		}
		res := ItemResult{ID: spec.ID, State: st.String()}
		res.Like, _ = r.store.Get(spec.ID, models.FieldLike)
		if v, ok := r.store.Get(spec.ID, models.FieldViews); ok {
			res.Views = v.Count
		}
		if sw, ok := r.switchers[spec.ID]; ok {
			if cur, ok := sw.Current(); ok {
				res.Quality = cur.Label
			}
		}
		r.result.Items = append(r.result.Items, res)
	}
}

func describe(s models.Snapshot) string {
	return fmt.Sprintf("%t/%d", s.Active, s.Count)
}

func orNone(id string) string {
	if id == "" {
		return "none"
	}
	return id
}

// toastTrace is a [toast.Sink] writing toasts into the trace.
type toastTrace func(subject, text string)

func (f toastTrace) Show(t toast.Toast) string {
	f("toast", fmt.Sprintf("[%s] %s", t.Type, t.Message))
	return ""
}
