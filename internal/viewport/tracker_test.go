package viewport

import (
	"errors"
	"testing"

	"github.com/desertthunder/reelsync/internal/shared"
)

func newTracker(ids ...string) (*Tracker, *[]Activation) {
	tr := NewTracker(DefaultThreshold)
	events := &[]Activation{}
	tr.OnActivationChanged(func(a Activation) { *events = append(*events, a) })
	for _, id := range ids {
		tr.Register(id)
	}
	return tr, events
}

func TestTracker(t *testing.T) {
	t.Run("nothing is active before the first measurement", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		if got := tr.Active().ActiveID; got != "" {
			t.Errorf("expected none, got %q", got)
		}
		if len(*events) != 0 {
			t.Errorf("expected no events, got %v", *events)
		}
	})

	t.Run("item crossing threshold becomes active", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		tr.Observe("a", 0.5)
		if tr.Active().ActiveID != "" {
			t.Error("0.5 is below threshold")
		}
		tr.Observe("a", 0.6)
		if tr.Active().ActiveID != "a" {
			t.Errorf("expected a active, got %q", tr.Active().ActiveID)
		}
		want := []Activation{{Previous: "", Current: "a"}}
		if len(*events) != 1 || (*events)[0] != want[0] {
			t.Errorf("expected %v, got %v", want, *events)
		}
	})

	t.Run("scrolling A to B emits one event carrying both", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		tr.Observe("a", 1)
		tr.Observe("b", 0.4)
		tr.Observe("a", 0.3)
		tr.Observe("b", 0.7)

		if tr.Active().ActiveID != "b" {
			t.Fatalf("expected b active, got %q", tr.Active().ActiveID)
		}
		if len(*events) != 2 || (*events)[1] != (Activation{Previous: "a", Current: "b"}) {
			t.Errorf("unexpected events %v", *events)
		}
	})

	t.Run("active item wins ties", func(t *testing.T) {
		tr, _ := newTracker("a", "b")
		tr.Observe("a", 0.7)
		tr.Observe("b", 0.7)
		if tr.Active().ActiveID != "a" {
			t.Errorf("expected a to keep activation, got %q", tr.Active().ActiveID)
		}
	})

	t.Run("higher ratio wins", func(t *testing.T) {
		tr, _ := newTracker("a", "b")
		tr.Observe("a", 0.7)
		tr.Observe("b", 0.9)
		if tr.Active().ActiveID != "b" {
			t.Errorf("expected b, got %q", tr.Active().ActiveID)
		}
	})

	t.Run("active stays when nothing is above threshold", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		tr.Observe("a", 0.9)
		tr.Observe("a", 0.2)
		tr.Observe("b", 0.3)
		if tr.Active().ActiveID != "a" {
			t.Errorf("expected a to stay active, got %q", tr.Active().ActiveID)
		}
		if len(*events) != 1 {
			t.Errorf("expected a single event, got %v", *events)
		}
	})

	t.Run("unregistering the active item hands over to the most visible", func(t *testing.T) {
		tr, events := newTracker("a", "b", "c")
		tr.Observe("b", 0.8)
		tr.Observe("c", 0.3)
		tr.Unregister("b")

		if tr.Active().ActiveID != "c" {
			t.Errorf("expected c, got %q", tr.Active().ActiveID)
		}
		last := (*events)[len(*events)-1]
		if last != (Activation{Previous: "b", Current: "c"}) {
			t.Errorf("unexpected handover event %v", last)
		}
	})

	t.Run("unregistering the active item with nothing visible picks the first registered", func(t *testing.T) {
		tr, _ := newTracker("a", "b", "c")
		tr.Observe("c", 0.8)
		tr.Observe("c", 0)
		tr.Unregister("c")
		if tr.Active().ActiveID != "a" {
			t.Errorf("expected a, got %q", tr.Active().ActiveID)
		}
	})

	t.Run("empty feed deactivates", func(t *testing.T) {
		tr, events := newTracker("a")
		tr.Observe("a", 1)
		tr.Unregister("a")
		if tr.Active().ActiveID != "" {
			t.Errorf("expected none, got %q", tr.Active().ActiveID)
		}
		last := (*events)[len(*events)-1]
		if last != (Activation{Previous: "a", Current: ""}) {
			t.Errorf("unexpected event %v", last)
		}
	})

	t.Run("unregistering an inactive item emits nothing", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		tr.Observe("a", 1)
		tr.Unregister("b")
		if len(*events) != 1 {
			t.Errorf("expected one event, got %v", *events)
		}
	})

	t.Run("observing an unknown item", func(t *testing.T) {
		tr, _ := newTracker()
		if err := tr.Observe("ghost", 1); !errors.Is(err, shared.ErrNotMounted) {
			t.Errorf("expected ErrNotMounted, got %v", err)
		}
	})

	t.Run("never two active items across a long sequence", func(t *testing.T) {
		tr, events := newTracker("a", "b", "c")
		samples := []struct {
			id    string
			ratio float64
		}{
			{"a", 1}, {"b", 0.65}, {"a", 0.5}, {"c", 0.61}, {"b", 0.9}, {"b", 0.1}, {"c", 1}, {"a", 0.95},
		}
		for _, s := range samples {
			tr.Observe(s.id, s.ratio)
		}
		prev := ""
		for _, ev := range *events {
			if ev.Previous != prev {
				t.Fatalf("event %v does not chain from %q", ev, prev)
			}
			prev = ev.Current
		}
		if prev != tr.Active().ActiveID {
			t.Errorf("last event %q does not match active %q", prev, tr.Active().ActiveID)
		}
	})
}

func TestNavigation(t *testing.T) {
	t.Run("Step moves through registration order", func(t *testing.T) {
		tr, _ := newTracker("a", "b", "c")
		if got := tr.Step(1); got != "a" {
			t.Errorf("first step should land on first item, got %q", got)
		}
		if got := tr.Step(1); got != "b" {
			t.Errorf("expected b, got %q", got)
		}
		if got := tr.Step(5); got != "c" {
			t.Errorf("expected clamp to c, got %q", got)
		}
		if got := tr.Step(-10); got != "a" {
			t.Errorf("expected clamp to a, got %q", got)
		}
	})

	t.Run("Activate", func(t *testing.T) {
		tr, events := newTracker("a", "b")
		if err := tr.Activate("b"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := tr.Activate("b"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(*events) != 1 {
			t.Errorf("re-activating should not emit, got %v", *events)
		}
		if err := tr.Activate("x"); !errors.Is(err, shared.ErrNotMounted) {
			t.Errorf("expected ErrNotMounted, got %v", err)
		}
	})

	t.Run("Step on empty feed", func(t *testing.T) {
		tr, _ := newTracker()
		if got := tr.Step(1); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
