package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotFlipped(t *testing.T) {
	tests := []struct {
		name string
		in   Snapshot
		want Snapshot
	}{
		{"like", Snapshot{Active: false, Count: 10}, Snapshot{Active: true, Count: 11}},
		{"unlike", Snapshot{Active: true, Count: 11}, Snapshot{Active: false, Count: 10}},
		{"unlike never goes negative", Snapshot{Active: true, Count: 0}, Snapshot{Active: false, Count: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Flipped(); got != tt.want {
				t.Errorf("Flipped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestField(t *testing.T) {
	for _, f := range []Field{FieldLike, FieldFollow, FieldViews} {
		parsed, ok := ParseField(f.String())
		if !ok || parsed != f {
			t.Errorf("ParseField(%q) = %v, %v", f.String(), parsed, ok)
		}
	}
	if _, ok := ParseField("share"); ok {
		t.Error("expected unknown field to fail")
	}
}

func TestNotificationUnmarshal(t *testing.T) {
	t.Run("Full Payload", func(t *testing.T) {
		data := `{"id": 9, "user_id": 3, "type": "achievement", "message": "You earned a new badge: Rookie!",
			"link": "/achievements", "is_read": false, "created_at": "2025-01-02T03:04:05.123456"}`

		var n Notification
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if n.ID != 9 || !n.IsAchievement() || n.Link != "/achievements" {
			t.Errorf("unexpected notification %+v", n)
		}
		want := time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)
		if !n.CreatedAt.Equal(want) {
			t.Errorf("expected created_at %v, got %v", want, n.CreatedAt)
		}
	})

	t.Run("Null Type And Link", func(t *testing.T) {
		var n Notification
		if err := json.Unmarshal([]byte(`{"id": 1, "type": null, "link": null, "message": "hi"}`), &n); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n.Type != NotificationInfo {
			t.Errorf("expected info type, got %q", n.Type)
		}
		if n.Link != "" {
			t.Errorf("expected empty link, got %q", n.Link)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		var n Notification
		if err := json.Unmarshal([]byte(`{"id": "x"}`), &n); err == nil {
			t.Error("expected error for string id")
		}
	})
}

func TestResolutions(t *testing.T) {
	t.Run("Full Catalogue", func(t *testing.T) {
		opts := Resolutions(VideoSources{
			URL4K: "4k.mp4", URL1080p: "1080.mp4", URL720p: "720.mp4", URL480p: "480.mp4", VideoURL: "orig.mp4",
		})

		var labels []string
		for _, o := range opts {
			labels = append(labels, o.Label)
		}
		want := []string{"4K", "1080p", "720p", "480p", "Auto"}
		if len(labels) != len(want) {
			t.Fatalf("expected %v, got %v", want, labels)
		}
		for i := range want {
			if labels[i] != want[i] {
				t.Errorf("option %d: expected %s, got %s", i, want[i], labels[i])
			}
		}
		if !opts[0].RequiresEntitlement || opts[2].RequiresEntitlement {
			t.Error("expected 4K gated and 720p free")
		}
		if got := DefaultResolution(opts); got != 2 {
			t.Errorf("expected 720p default at index 2, got %d", got)
		}
	})

	t.Run("Original Equal To Rendition Is Not Duplicated", func(t *testing.T) {
		opts := Resolutions(VideoSources{URL720p: "same.mp4", VideoURL: "same.mp4"})
		if len(opts) != 1 {
			t.Errorf("expected 1 option, got %d", len(opts))
		}
	})

	t.Run("Default Falls Back To First Free", func(t *testing.T) {
		opts := Resolutions(VideoSources{URL4K: "4k.mp4", URL480p: "480.mp4"})
		if got := DefaultResolution(opts); got != 1 {
			t.Errorf("expected index 1, got %d", got)
		}
	})

	t.Run("Default Falls Back To Last", func(t *testing.T) {
		opts := Resolutions(VideoSources{URL4K: "4k.mp4", URL2K: "2k.mp4"})
		if got := DefaultResolution(opts); got != 1 {
			t.Errorf("expected index 1, got %d", got)
		}
		if got := DefaultResolution(nil); got != -1 {
			t.Errorf("expected -1 for no options, got %d", got)
		}
	})
}
