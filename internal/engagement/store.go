package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/services"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
	"golang.org/x/time/rate"
)

// DefaultDebounce is the window inside which a repeated toggle is ignored.
const DefaultDebounce = 300 * time.Millisecond

// API is the subset of the service client the store reconciles against.
type API interface {
	LikeVideo(ctx context.Context, videoID string) (*services.LikeResult, error)
	ToggleFollow(ctx context.Context, userID string) (*services.FollowResult, error)
}

// Mirror persists confirmed snapshots so a later session can render before the first fetch.
type Mirror interface {
	SaveSnapshot(ctx context.Context, entityID string, field models.Field, s models.Snapshot) error
	DeleteEntity(ctx context.Context, entityID string) error
}

// Event describes a change to one entity field.
type Event struct {
	EntityID string
	Field    models.Field
	Snapshot models.Snapshot
	// Pending is true while a server request for the field is in flight.
	Pending bool
	// Removed is true when the entity was dropped after the server reported it missing.
	Removed bool
}

// Options configures a [Store].
type Options struct {
	API      API
	Toasts   toast.Sink
	Session  shared.Session
	Clock    clock.Clock
	Executor shared.Executor
	Logger   *log.Logger
	Mirror   Mirror
	// Debounce is the repeated-toggle window. Zero disables debouncing.
	Debounce time.Duration
}

type key struct {
	id    string
	field models.Field
}

// Store is the single writer of engagement state.
type Store struct {
	api      API
	toasts   toast.Sink
	session  shared.Session
	clock    clock.Clock
	run      shared.Executor
	logger   *log.Logger
	mirror   Mirror
	debounce time.Duration

	// emitMu serializes state change plus delivery so subscribers observe events in commit order.
	emitMu   sync.Mutex
	mu       sync.Mutex
	values   map[key]models.Snapshot
	pending  map[key]*models.Mutation
	limiters map[key]*rate.Limiter
	subs     []func(Event)
}

// NewStore creates a Store. Missing clock, executor and logger fall back to the production ones.
func NewStore(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Executor == nil {
		opts.Executor = shared.Go
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Store{
		api:      opts.API,
		toasts:   opts.Toasts,
		session:  opts.Session,
		clock:    opts.Clock,
		run:      opts.Executor,
		logger:   shared.WithLogger(opts.Logger, "component", "engagement"),
		mirror:   opts.Mirror,
		debounce: opts.Debounce,
		values:   map[key]models.Snapshot{},
		pending:  map[key]*models.Mutation{},
		limiters: map[key]*rate.Limiter{},
	}
}

// Subscribe registers fn for every committed change. fn runs synchronously and must not
// call back into the store's mutating methods.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Track seeds a feed item's like and view state. Fields with a request in flight keep their local value.
func (s *Store) Track(item models.FeedItem) {
	s.commit(func() []Event {
		var events []Event
		if ev, ok := s.seedLocked(key{item.ID, models.FieldLike}, models.Snapshot{Active: item.Liked, Count: item.LikeCount}); ok {
			events = append(events, ev)
		}
		if ev, ok := s.seedLocked(key{item.ID, models.FieldViews}, models.Snapshot{Count: item.ViewCount}); ok {
			events = append(events, ev)
		}
		return events
	})
}

// TrackUser seeds a user's follow state.
func (s *Store) TrackUser(userID string, following bool, followers int) {
	s.commit(func() []Event {
		if ev, ok := s.seedLocked(key{userID, models.FieldFollow}, models.Snapshot{Active: following, Count: followers}); ok {
			return []Event{ev}
		}
		return nil
	})
}

func (s *Store) seedLocked(k key, snap models.Snapshot) (Event, bool) {
	if _, busy := s.pending[k]; busy {
		return Event{}, false
	}
	if cur, ok := s.values[k]; ok && cur == snap {
		return Event{}, false
	}
	s.values[k] = snap
	return Event{EntityID: k.id, Field: k.field, Snapshot: snap}, true
}

// Forget drops an entity. Responses still in flight for it are ignored when they arrive.
func (s *Store) Forget(entityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(entityID)
}

func (s *Store) dropLocked(entityID string) {
	for _, f := range []models.Field{models.FieldLike, models.FieldFollow, models.FieldViews} {
		k := key{entityID, f}
		delete(s.values, k)
		delete(s.pending, k)
		delete(s.limiters, k)
	}
}

// Get returns the visible snapshot of one field.
func (s *Store) Get(entityID string, field models.Field) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.values[key{entityID, field}]
	return snap, ok
}

// Pending returns the in-flight mutation of one field, if any.
func (s *Store) Pending(entityID string, field models.Field) (models.Mutation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.pending[key{entityID, field}]
	if !ok {
		return models.Mutation{}, false
	}
	return *m, true
}

// IncrementViews adds one to the entity's local view count and returns the new value.
func (s *Store) IncrementViews(entityID string) int {
	var count int
	s.commit(func() []Event {
		k := key{entityID, models.FieldViews}
		snap := s.values[k]
		snap.Count++
		s.values[k] = snap
		count = snap.Count
		return []Event{{EntityID: entityID, Field: models.FieldViews, Snapshot: snap}}
	})
	return count
}

// ToggleLike flips the like on a video.
func (s *Store) ToggleLike(ctx context.Context, videoID string) error {
	return s.toggle(ctx, videoID, models.FieldLike)
}

// ToggleFollow flips the follow on a user.
func (s *Store) ToggleFollow(ctx context.Context, userID string) error {
	return s.toggle(ctx, userID, models.FieldFollow)
}

func (s *Store) toggle(ctx context.Context, entityID string, field models.Field) error {
	if !s.session.Authenticated() {
		s.showLoginRequired(field)
		return shared.ErrNotAuthenticated
	}

	var (
		m   *models.Mutation
		err error
	)
	s.commit(func() []Event {
		k := key{entityID, field}
		prev, ok := s.values[k]
		if !ok {
			err = fmt.Errorf("%w: %s %s", shared.ErrUnknownEntity, field, entityID)
			return nil
		}
		if !s.allowLocked(k) {
			err = shared.ErrDebounced
			return nil
		}

		baseline := prev
		if inflight, ok := s.pending[k]; ok {
			baseline = inflight.Baseline
			s.logger.Debug("superseding in-flight request", "entity", entityID, "field", field, "request", inflight.RequestID)
		}
		m = &models.Mutation{
			EntityID:  entityID,
			Field:     field,
			Previous:  prev,
			Applied:   prev.Flipped(),
			Baseline:  baseline,
			RequestID: shared.GenerateID(),
			CreatedAt: s.clock.Now(),
		}
		s.pending[k] = m
		s.values[k] = m.Applied
		return []Event{{EntityID: entityID, Field: field, Snapshot: m.Applied, Pending: true}}
	})
	if err != nil {
		return err
	}

	s.run(func() { s.send(ctx, *m) })
	return nil
}

func (s *Store) allowLocked(k key) bool {
	if s.debounce <= 0 {
		return true
	}
	lim, ok := s.limiters[k]
	if !ok {
		lim = rate.NewLimiter(rate.Every(s.debounce), 1)
		s.limiters[k] = lim
	}
	return lim.AllowN(s.clock.Now(), 1)
}

func (s *Store) send(ctx context.Context, m models.Mutation) {
	var (
		confirmed models.Snapshot
		err       error
	)
	switch m.Field {
	case models.FieldLike:
		var res *services.LikeResult
		if res, err = s.api.LikeVideo(ctx, m.EntityID); err == nil {
			confirmed = confirm(m.Baseline, res.Liked, res.LikesCount)
		}
	case models.FieldFollow:
		var res *services.FollowResult
		if res, err = s.api.ToggleFollow(ctx, m.EntityID); err == nil {
			confirmed = confirm(m.Baseline, res.IsFollowing, nil)
		}
	default:
		err = fmt.Errorf("%w: cannot toggle %s", shared.ErrInvalidInput, m.Field)
	}
	s.resolve(m, confirmed, err)
}

// confirm builds the server-confirmed snapshot. Without a server count the count is derived
// from the baseline and the confirmed flag.
func confirm(baseline models.Snapshot, active bool, count *int) models.Snapshot {
	if count != nil {
		return models.Snapshot{Active: active, Count: *count}
	}
	if active == baseline.Active {
		return baseline
	}
	return baseline.Flipped()
}

func (s *Store) resolve(m models.Mutation, confirmed models.Snapshot, err error) {
	k := key{m.EntityID, m.Field}
	var (
		failed  bool
		removed bool
		save    models.Snapshot
	)

	s.commit(func() []Event {
		cur, ok := s.pending[k]
		if !ok || cur.RequestID != m.RequestID {
			s.logger.Debug("discarding stale response", "entity", m.EntityID, "field", m.Field, "request", m.RequestID)
			return nil
		}
		delete(s.pending, k)

		switch {
		case err == nil:
			s.values[k] = confirmed
			save = confirmed
			return []Event{{EntityID: m.EntityID, Field: m.Field, Snapshot: confirmed}}
		case errors.Is(err, shared.ErrNotFound):
			s.logger.Debug("entity no longer exists", "entity", m.EntityID, "field", m.Field)
			s.dropLocked(m.EntityID)
			removed = true
			return []Event{{EntityID: m.EntityID, Field: m.Field, Removed: true}}
		default:
			s.logger.Warn("engagement request failed, rolling back", "entity", m.EntityID, "field", m.Field, "err", err)
			s.values[k] = m.Baseline
			failed = true
			return []Event{{EntityID: m.EntityID, Field: m.Field, Snapshot: m.Baseline}}
		}
	})

	switch {
	case failed:
		s.showFailure(m.Field)
	case removed:
		s.mirrorDelete(m.EntityID)
	case err == nil && s.isCurrent(k, save):
		s.mirrorSave(m.EntityID, m.Field, save)
	}
}

func (s *Store) isCurrent(k key, snap models.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[k]
	return ok && cur == snap
}

func (s *Store) commit(fn func() []Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	events := fn()
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
}

func (s *Store) mirrorSave(entityID string, field models.Field, snap models.Snapshot) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveSnapshot(context.Background(), entityID, field, snap); err != nil {
		s.logger.Warn("failed to cache snapshot", "entity", entityID, "err", err)
	}
}

func (s *Store) mirrorDelete(entityID string) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.DeleteEntity(context.Background(), entityID); err != nil {
		s.logger.Warn("failed to drop cached snapshots", "entity", entityID, "err", err)
	}
}

func (s *Store) showLoginRequired(field models.Field) {
	if s.toasts == nil {
		return
	}
	msg := "Please login to like videos"
	if field == models.FieldFollow {
		msg = "Please login to follow users"
	}
	s.toasts.Show(toast.Toast{Type: models.NotificationInfo, Title: "Login required", Message: msg})
}

func (s *Store) showFailure(field models.Field) {
	if s.toasts == nil {
		return
	}
	msg := "Failed to like video"
	if field == models.FieldFollow {
		msg = "Failed to update follow status"
	}
	s.toasts.Show(toast.Toast{Type: models.NotificationError, Title: "Error", Message: msg})
}
