package sim

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

func texts(res *Result, subject string) []string {
	var out []string
	for _, l := range res.Lines {
		if l.Subject == subject {
			out = append(out, l.Text)
		}
	}
	return out
}

func indexOf(res *Result, subject, text string) int {
	return slices.IndexFunc(res.Lines, func(l Line) bool { return l.Subject == subject && l.Text == text })
}

func TestParseScript(t *testing.T) {
	t.Run("testdata script is valid", func(t *testing.T) {
		s, err := LoadScript("testdata/feed.toml")
		if err != nil {
			t.Fatalf("failed to load script: %v", err)
		}
		if len(s.Items) != 3 || len(s.Steps) != 12 {
			t.Errorf("unexpected script shape: %d items, %d steps", len(s.Items), len(s.Steps))
		}
		if s.Items[2].Sources.URL1080p == "" {
			t.Error("expected nested sources table to decode")
		}
	})

	tests := []struct {
		name   string
		script string
	}{
		{"unknown action", "[[items]]\nid = \"a\"\n[[steps]]\naction = \"jump\"\nid = \"a\""},
		{"unknown item", "[[steps]]\naction = \"tap\"\nid = \"x\""},
		{"duplicate item", "[[items]]\nid = \"a\"\n[[items]]\nid = \"a\""},
		{"steps out of order", "[[items]]\nid = \"a\"\n[[steps]]\nat = \"2s\"\naction = \"tap\"\nid = \"a\"\n[[steps]]\nat = \"1s\"\naction = \"tap\"\nid = \"a\""},
		{"bad kind", "[[items]]\nid = \"a\"\nkind = \"movie\""},
		{"bad toml", "threshold = ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScript([]byte(tt.script)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	script, err := LoadScript("testdata/feed.toml")
	if err != nil {
		t.Fatalf("failed to load script: %v", err)
	}
	res, err := Run(context.Background(), script, Options{})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	t.Run("A to B resets A before B plays", func(t *testing.T) {
		pause := indexOf(res, "a", "pause")
		seek := indexOf(res, "a", "seek 0s")
		play := indexOf(res, "b", "play")
		if pause < 0 || seek < 0 || play < 0 {
			t.Fatalf("missing trace lines: a=%v b=%v", texts(res, "a"), texts(res, "b"))
		}
		if !(pause < play && seek < play) {
			t.Errorf("expected a reset before b play")
		}
	})

	t.Run("clip view fires once", func(t *testing.T) {
		count := 0
		for _, text := range texts(res, "a") {
			if strings.HasPrefix(text, "view counted") {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected one view for a, got %d", count)
		}
	})

	t.Run("long video counts at 60s", func(t *testing.T) {
		if indexOf(res, "c", "view counted at 59s") >= 0 {
			t.Error("59s should not count")
		}
		if indexOf(res, "c", "view counted at 1m0s") < 0 {
			t.Errorf("expected a view at 60s, got %v", texts(res, "c"))
		}
	})

	t.Run("double tap likes", func(t *testing.T) {
		if indexOf(res, "a", "double tap") < 0 {
			t.Errorf("expected double tap, got %v", texts(res, "a"))
		}
	})

	t.Run("failed like rolls back with a toast", func(t *testing.T) {
		if indexOf(res, "b", "like = false/3") < 0 {
			t.Errorf("expected rollback, got %v", texts(res, "b"))
		}
		if len(texts(res, "toast")) != 2 {
			t.Errorf("expected two toasts, got %v", texts(res, "toast"))
		}
	})

	t.Run("final state", func(t *testing.T) {
		if res.Active != "c" {
			t.Errorf("expected c active, got %q", res.Active)
		}
		var playing int
		for _, it := range res.Items {
			if it.State == "playing" {
				playing++
			}
			if it.ID == "a" && it.Like != (models.Snapshot{Active: true, Count: 11}) {
				t.Errorf("expected a liked, got %+v", it.Like)
			}
			if it.ID == "c" && it.Quality != "720p" {
				t.Errorf("expected c to stay on 720p, got %q", it.Quality)
			}
		}
		if playing != 1 {
			t.Errorf("expected exactly one playing item, got %d", playing)
		}
	})
}
