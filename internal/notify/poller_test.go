package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	tu "github.com/desertthunder/reelsync/internal/testing"
)

// fakeSource serves an in-memory unread list. Acknowledged ids leave the list unless ackErr is set.
type fakeSource struct {
	mu      sync.Mutex
	unread  []models.Notification
	acks    []int64
	fetches int
	ackErr  error
	fetch   func(ctx context.Context) error
}

func (f *fakeSource) UnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	f.mu.Lock()
	f.fetches++
	hook := f.fetch
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.unread...), nil
}

func (f *fakeSource) MarkNotificationRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, id)
	if f.ackErr != nil {
		return f.ackErr
	}
	for i, n := range f.unread {
		if n.ID == id {
			f.unread = append(f.unread[:i], f.unread[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSource) push(n ...models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unread = append(f.unread, n...)
}

func (f *fakeSource) ackCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.acks {
		if a == id {
			count++
		}
	}
	return count
}

type fakeHistory struct {
	mu       sync.Mutex
	recorded map[int64]string
	acked    []int64
}

func (h *fakeHistory) Record(_ context.Context, n models.Notification, disposition string, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recorded == nil {
		h.recorded = map[int64]string{}
	}
	h.recorded[n.ID] = disposition
	return nil
}

func (h *fakeHistory) MarkAcknowledged(_ context.Context, id int64, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.acked = append(h.acked, id)
	return nil
}

func achievement(id int64) models.Notification {
	return models.Notification{ID: id, Type: models.NotificationAchievement, Message: "achievement unlocked"}
}

func info(id int64) models.Notification {
	return models.Notification{ID: id, Type: models.NotificationInfo, Message: "hello"}
}

type fixture struct {
	poller  *Poller
	source  *fakeSource
	history *fakeHistory
	toasts  *tu.ToastRecorder
	clock   *clock.Manual
	events  []Event
}

func newFixture(t *testing.T, session shared.Session) *fixture {
	t.Helper()
	f := &fixture{
		source:  &fakeSource{},
		history: &fakeHistory{},
		toasts:  &tu.ToastRecorder{},
		clock:   clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.poller = NewPoller(Options{
		Source:  f.source,
		Toasts:  f.toasts,
		History: f.history,
		Session: session,
		Clock:   f.clock,
	})
	f.poller.Subscribe(func(ev Event) { f.events = append(f.events, ev) })
	return f
}

var signedIn = shared.Session{UserID: "me", Token: "t"}

func TestPollerLifecycle(t *testing.T) {
	t.Run("Start requires a session", func(t *testing.T) {
		f := newFixture(t, shared.Session{})
		if err := f.poller.Start(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if f.clock.Pending() != 0 {
			t.Error("nothing should be scheduled")
		}
	})

	t.Run("first poll is immediate, then every interval", func(t *testing.T) {
		f := newFixture(t, signedIn)
		if err := f.poller.Start(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.clock.Advance(0)
		if f.source.fetches != 1 {
			t.Fatalf("expected immediate fetch, got %d", f.source.fetches)
		}
		f.clock.Advance(DefaultInterval)
		f.clock.Advance(DefaultInterval)
		if f.source.fetches != 3 {
			t.Errorf("expected 3 fetches, got %d", f.source.fetches)
		}
	})

	t.Run("Stop cancels the schedule", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.poller.Start(context.Background())
		f.clock.Advance(0)
		f.poller.Stop()
		f.clock.Advance(10 * DefaultInterval)

		if f.source.fetches != 1 {
			t.Errorf("expected no fetches after Stop, got %d", f.source.fetches)
		}
		if f.poller.Running() {
			t.Error("expected stopped")
		}
	})

	t.Run("Stop cancels an in-flight fetch", func(t *testing.T) {
		f := newFixture(t, signedIn)
		started := make(chan struct{})
		f.source.fetch = func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}

		f.poller.Start(context.Background())
		done := make(chan struct{})
		go func() {
			f.clock.Advance(0)
			close(done)
		}()

		<-started
		f.poller.Stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("in-flight fetch was not cancelled")
		}
	})

	t.Run("overlapping tick is skipped", func(t *testing.T) {
		f := newFixture(t, signedIn)
		release := make(chan struct{})
		started := make(chan struct{})
		var once sync.Once
		f.source.fetch = func(ctx context.Context) error {
			once.Do(func() { close(started) })
			<-release
			return nil
		}

		ctx := context.Background()
		first := make(chan error, 1)
		go func() { first <- f.poller.Poll(ctx) }()
		<-started

		if err := f.poller.Poll(ctx); err != nil {
			t.Fatalf("skipped tick should not error, got %v", err)
		}
		if f.source.fetches != 1 {
			t.Errorf("expected overlapping tick to skip the fetch, got %d fetches", f.source.fetches)
		}
		close(release)
		if err := <-first; err != nil {
			t.Errorf("expected first poll to succeed, got %v", err)
		}
	})
}

func TestDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("plain notifications toast and acknowledge once", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(info(1), models.Notification{ID: 2, Type: models.NotificationError, Message: "bad", Link: "/videos/9"})

		f.poller.Poll(ctx)
		f.poller.Poll(ctx)

		toasts := f.toasts.Toasts()
		if len(toasts) != 2 {
			t.Fatalf("expected 2 toasts, got %d", len(toasts))
		}
		if toasts[1].Type != models.NotificationError || toasts[1].Link != "/videos/9" {
			t.Errorf("unexpected toast %+v", toasts[1])
		}
		if f.source.ackCount(1) != 1 || f.source.ackCount(2) != 1 {
			t.Errorf("expected one ack each, got %v", f.source.acks)
		}
		if f.history.recorded[1] != DispositionToast {
			t.Errorf("expected history entry, got %v", f.history.recorded)
		}
	})

	t.Run("failed ack is re-shown on a later fetch", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.ackErr = shared.ErrNetworkFailure
		f.source.push(info(1))

		f.poller.Poll(ctx)
		f.source.mu.Lock()
		f.source.ackErr = nil
		f.source.mu.Unlock()
		f.poller.Poll(ctx)
		f.poller.Poll(ctx)

		if f.toasts.Len() != 2 {
			t.Errorf("expected the notification shown again after the failed ack, got %d toasts", f.toasts.Len())
		}
		if f.source.ackCount(1) != 2 {
			t.Errorf("expected a second ack attempt, got %d", f.source.ackCount(1))
		}
		if len(f.source.unread) != 0 {
			t.Errorf("expected the server list drained, got %+v", f.source.unread)
		}
	})

	t.Run("failed ack keeps retrying while the server rejects it", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.ackErr = shared.ErrNetworkFailure
		f.source.push(info(1))

		f.poller.Poll(ctx)
		f.poller.Poll(ctx)
		f.poller.Poll(ctx)

		if f.toasts.Len() != 3 || f.source.ackCount(1) != 3 {
			t.Errorf("expected one delivery per fetch, got %d toasts and %d acks", f.toasts.Len(), f.source.ackCount(1))
		}
	})

	t.Run("at most one celebration, queued achievements are not lost", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(achievement(10), achievement(11))

		f.poller.Poll(ctx)
		cur, ok := f.poller.Celebration()
		if !ok || cur.ID != 10 {
			t.Fatalf("expected achievement 10 celebrated, got %+v", cur)
		}
		if f.source.ackCount(10) != 0 {
			t.Error("celebration must not be acknowledged before dismissal")
		}

		f.poller.Poll(ctx)
		if cur, _ := f.poller.Celebration(); cur.ID != 10 {
			t.Errorf("slot changed while occupied: %+v", cur)
		}

		f.poller.Dismiss(ctx)
		if _, ok := f.poller.Celebration(); ok {
			t.Error("slot should be empty after dismiss")
		}
		if f.source.ackCount(10) != 1 {
			t.Error("dismiss should acknowledge")
		}

		f.poller.Poll(ctx)
		if cur, _ := f.poller.Celebration(); cur.ID != 11 {
			t.Errorf("expected achievement 11 next, got %+v", cur)
		}

		celebrations := 0
		for _, ev := range f.events {
			if ev.Kind == EventCelebration {
				celebrations++
			}
		}
		if celebrations != 2 {
			t.Errorf("expected 2 celebration events, got %d", celebrations)
		}
		if f.toasts.Len() != 0 {
			t.Error("achievements should not toast")
		}
	})

	t.Run("dismiss with empty slot is a no-op", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.poller.Dismiss(ctx)
		if len(f.source.acks) != 0 || len(f.events) != 0 {
			t.Error("expected nothing to happen")
		}
	})

	t.Run("celebration auto-dismisses after the timeout", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(achievement(10))
		f.poller.Poll(ctx)

		f.clock.Advance(DefaultCelebrationTimeout - time.Second)
		if _, ok := f.poller.Celebration(); !ok {
			t.Fatal("dismissed too early")
		}
		f.clock.Advance(time.Second)
		if _, ok := f.poller.Celebration(); ok {
			t.Error("expected auto-dismiss")
		}
		if f.source.ackCount(10) != 1 {
			t.Error("auto-dismiss should acknowledge")
		}
	})

	t.Run("manual dismiss cancels the auto-dismiss", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(achievement(10), achievement(11))
		f.poller.Poll(ctx)
		f.clock.Advance(10 * time.Second)
		f.poller.Dismiss(ctx)
		f.poller.Poll(ctx)

		f.clock.Advance(6 * time.Second)
		if cur, ok := f.poller.Celebration(); !ok || cur.ID != 11 {
			t.Errorf("stale timer dismissed the newer celebration: %+v %v", cur, ok)
		}
	})

	t.Run("dismiss acknowledges before clearing the slot", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(achievement(10))
		f.poller.Poll(ctx)

		ackedFirst := false
		f.poller.Subscribe(func(ev Event) {
			if ev.Kind == EventDismissed {
				ackedFirst = f.source.ackCount(10) == 1
			}
		})
		f.poller.Dismiss(ctx)

		if !ackedFirst {
			t.Error("expected the acknowledgement to precede the dismissed event")
		}
	})

	t.Run("failed dismiss ack celebrates again later", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.ackErr = shared.ErrNetworkFailure
		f.source.push(achievement(10))
		f.poller.Poll(ctx)
		f.poller.Dismiss(ctx)

		if _, ok := f.poller.Celebration(); ok {
			t.Fatal("slot should be cleared even when the ack fails")
		}

		f.poller.Poll(ctx)
		if cur, ok := f.poller.Celebration(); !ok || cur.ID != 10 {
			t.Errorf("expected achievement 10 celebrated again, got %+v %v", cur, ok)
		}
	})

	t.Run("poll interrupted by Stop delivers nothing", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(info(1), achievement(2))
		f.source.fetch = func(context.Context) error {
			f.poller.Stop()
			return nil
		}

		if err := f.poller.Start(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.clock.Advance(0)

		if _, ok := f.poller.Celebration(); ok {
			t.Error("slot filled after Stop")
		}
		if len(f.events) != 0 || f.toasts.Len() != 0 {
			t.Errorf("expected no deliveries after Stop, got %d events and %d toasts", len(f.events), f.toasts.Len())
		}
		if f.clock.Pending() != 0 {
			t.Errorf("expected no timers after Stop, got %d", f.clock.Pending())
		}
	})

	t.Run("mixed batch", func(t *testing.T) {
		f := newFixture(t, signedIn)
		f.source.push(info(1), achievement(2), info(3), achievement(4))
		f.poller.Poll(ctx)

		if f.toasts.Len() != 2 {
			t.Errorf("expected 2 toasts, got %d", f.toasts.Len())
		}
		if cur, _ := f.poller.Celebration(); cur.ID != 2 {
			t.Errorf("expected achievement 2 celebrated, got %+v", cur)
		}
		want := []EventKind{EventToast, EventCelebration, EventToast}
		if len(f.events) != len(want) {
			t.Fatalf("expected %d events, got %+v", len(want), f.events)
		}
		for i, k := range want {
			if f.events[i].Kind != k {
				t.Errorf("event %d: expected %s, got %s", i, k, f.events[i].Kind)
			}
		}
	})
}
