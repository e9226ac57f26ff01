package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	tu "github.com/desertthunder/reelsync/internal/testing"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls []string
	ctxs  []context.Context
	err   error
}

func (f *fakeRecorder) RecordView(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	f.ctxs = append(f.ctxs, ctx)
	return f.err
}

type fakeCounter struct{ counts map[string]int }

func (f *fakeCounter) IncrementViews(id string) int {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[id]++
	return f.counts[id]
}

func newReporter(rec *fakeRecorder, counter *fakeCounter) *Reporter {
	return NewReporter(Options{Recorder: rec, Counter: counter, Executor: shared.Inline})
}

func sec(n int) time.Duration { return time.Duration(n) * time.Second }

func TestPolicy(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.Kind
		current  time.Duration
		duration time.Duration
		want     bool
	}{
		{"clip under both thresholds", models.KindClip, sec(2), sec(30), false},
		{"clip past ratio", models.KindClip, sec(5), sec(30), true},
		{"clip past three seconds", models.KindClip, 3100 * time.Millisecond, sec(60), true},
		{"clip exactly three seconds", models.KindClip, sec(3), sec(60), false},
		{"long video at 59s", models.KindVideo, sec(59), sec(900), false},
		{"long video at 60s", models.KindVideo, sec(60), sec(900), true},
		{"long video just under a minute", models.KindVideo, sec(59), sec(601), false},
		{"long video ignores ratio", models.KindVideo, sec(60), sec(601), true},
		{"long video past a minute", models.KindVideo, sec(100), sec(601), true},
		{"short video under ratio", models.KindVideo, sec(4), sec(30), false},
		{"short video past ratio", models.KindVideo, sec(5), sec(30), true},
		{"ten minute video uses ratio", models.KindVideo, sec(91), sec(600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := policyFor(tt.kind, tt.duration)
			if got := rule(Position{Current: tt.current, Duration: tt.duration}); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReporter(t *testing.T) {
	ctx := context.Background()

	t.Run("30s item fires once at 5s and not again at 10s", func(t *testing.T) {
		rec, counter := &fakeRecorder{}, &fakeCounter{}
		r := newReporter(rec, counter)
		r.Mount(ctx, models.FeedItem{ID: "c1", Kind: models.KindClip})

		if r.Observe("c1", Position{Current: sec(1), Duration: sec(30)}) {
			t.Error("1s should not fire")
		}
		if !r.Observe("c1", Position{Current: sec(5), Duration: sec(30)}) {
			t.Error("5s should fire")
		}
		if r.Observe("c1", Position{Current: sec(10), Duration: sec(30)}) {
			t.Error("10s should not fire again")
		}
		if len(rec.calls) != 1 || counter.counts["c1"] != 1 {
			t.Errorf("expected one record and one increment, got %v / %v", rec.calls, counter.counts)
		}
		if !r.Counted("c1") {
			t.Error("expected latch set")
		}
	})

	t.Run("900s video fires at 60s only", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		r.Mount(ctx, models.FeedItem{ID: "v1", Kind: models.KindVideo})

		if r.Observe("v1", Position{Current: sec(59), Duration: sec(900)}) {
			t.Error("59s should not fire")
		}
		if !r.Observe("v1", Position{Current: sec(60), Duration: sec(900)}) {
			t.Error("60s should fire")
		}
		if len(rec.calls) != 1 {
			t.Errorf("expected one call, got %d", len(rec.calls))
		}
	})

	t.Run("looping back to zero does not fire again", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		r.Mount(ctx, models.FeedItem{ID: "c1", Kind: models.KindClip})

		r.Observe("c1", Position{Current: sec(4), Duration: sec(10)})
		r.Observe("c1", Position{Current: 0, Duration: sec(10)})
		r.Observe("c1", Position{Current: sec(4), Duration: sec(10)})
		if len(rec.calls) != 1 {
			t.Errorf("expected one call, got %d", len(rec.calls))
		}
	})

	t.Run("duration class is decided once", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		r.Mount(ctx, models.FeedItem{ID: "v1", Kind: models.KindVideo})

		r.Observe("v1", Position{Current: sec(10), Duration: sec(900)})
		// a later, shorter duration report must not switch to the ratio rule
		if r.Observe("v1", Position{Current: sec(20), Duration: sec(100)}) {
			t.Error("class switched after being decided")
		}
	})

	t.Run("unknown duration never fires", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		r.Mount(ctx, models.FeedItem{ID: "c1", Kind: models.KindClip})

		if r.Observe("c1", Position{Current: sec(20)}) {
			t.Error("should wait for the duration")
		}
	})

	t.Run("remount arms a fresh latch", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		item := models.FeedItem{ID: "c1", Kind: models.KindClip}

		r.Mount(ctx, item)
		r.Observe("c1", Position{Current: sec(5), Duration: sec(30)})
		r.Unmount("c1")
		r.Mount(ctx, item)
		r.Observe("c1", Position{Current: sec(5), Duration: sec(30)})

		if len(rec.calls) != 2 {
			t.Errorf("expected two calls across mounts, got %d", len(rec.calls))
		}
	})

	t.Run("unmounted item is ignored", func(t *testing.T) {
		rec := &fakeRecorder{}
		r := newReporter(rec, &fakeCounter{})
		if r.Observe("ghost", Position{Current: sec(5), Duration: sec(30)}) {
			t.Error("unmounted item fired")
		}
	})

	t.Run("unmount cancels in-flight report", func(t *testing.T) {
		rec := &fakeRecorder{}
		queue := &tu.Deferred{}
		r := NewReporter(Options{Recorder: rec, Counter: &fakeCounter{}, Executor: queue.Go})
		r.Mount(ctx, models.FeedItem{ID: "c1", Kind: models.KindClip})
		r.Observe("c1", Position{Current: sec(5), Duration: sec(30)})
		r.Unmount("c1")
		queue.RunAll()

		if len(rec.ctxs) != 1 {
			t.Fatalf("expected one call, got %d", len(rec.ctxs))
		}
		if !errors.Is(rec.ctxs[0].Err(), context.Canceled) {
			t.Errorf("expected cancelled context, got %v", rec.ctxs[0].Err())
		}
	})

	t.Run("server failure is swallowed", func(t *testing.T) {
		rec := &fakeRecorder{err: errors.New("boom")}
		counter := &fakeCounter{}
		r := newReporter(rec, counter)
		r.Mount(ctx, models.FeedItem{ID: "c1", Kind: models.KindClip})

		if !r.Observe("c1", Position{Current: sec(5), Duration: sec(30)}) {
			t.Error("expected fire")
		}
		if counter.counts["c1"] != 1 {
			t.Error("optimistic increment should stand")
		}
	})
}
