package sim

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

// Step actions.
const (
	ActionVisible = "visible"
	ActionTap     = "tap"
	ActionToggle  = "toggle"
	ActionMute    = "mute"
	ActionTime    = "time"
	ActionUnmount = "unmount"
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionLike    = "like"
	ActionFollow  = "follow"
	ActionQuality = "quality"
)

var actions = []string{
	ActionVisible, ActionTap, ActionToggle, ActionMute, ActionTime, ActionUnmount,
	ActionNext, ActionPrev, ActionLike, ActionFollow, ActionQuality,
}

// ItemSpec describes one mounted feed item.
type ItemSpec struct {
	ID             string              `toml:"id"`
	Kind           models.Kind         `toml:"kind"`
	Duration       time.Duration       `toml:"duration"`
	Likes          int                 `toml:"likes"`
	Liked          bool                `toml:"liked"`
	Views          int                 `toml:"views"`
	Owner          string              `toml:"owner"`
	RejectAutoplay bool                `toml:"reject_autoplay"`
	FailLike       bool                `toml:"fail_like"`
	Sources        models.VideoSources `toml:"sources"`
}

// Item converts the script entry to a feed item.
func (s ItemSpec) Item() models.FeedItem {
	kind := s.Kind
	if kind == "" {
		kind = models.KindVideo
	}
	return models.FeedItem{
		ID:        s.ID,
		Kind:      kind,
		Liked:     s.Liked,
		LikeCount: s.Likes,
		ViewCount: s.Views,
		MediaURL:  s.Sources.VideoURL,
		OwnerID:   s.Owner,
		Duration:  s.Duration,
	}
}

// Step is one timed event. At is measured from the start of the replay.
type Step struct {
	At       time.Duration `toml:"at"`
	Action   string        `toml:"action"`
	ID       string        `toml:"id"`
	Ratio    float64       `toml:"ratio"`
	Position time.Duration `toml:"position"`
	Value    string        `toml:"value"`
}

// Script is a replayable feed session.
type Script struct {
	Threshold       float64       `toml:"threshold"`
	DoubleTapWindow time.Duration `toml:"double_tap_window"`
	Debounce        time.Duration `toml:"debounce"`
	Muted           bool          `toml:"muted"`
	Premium         bool          `toml:"premium"`
	Items           []ItemSpec    `toml:"items"`
	Steps           []Step        `toml:"steps"`
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a TOML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse script: %v", shared.ErrInvalidInput, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks item ids, step order and actions.
func (s *Script) Validate() error {
	ids := map[string]bool{}
	for i, it := range s.Items {
		if it.ID == "" {
			return fmt.Errorf("%w: item %d has no id", shared.ErrInvalidInput, i)
		}
		if ids[it.ID] {
			return fmt.Errorf("%w: duplicate item %q", shared.ErrInvalidInput, it.ID)
		}
		if it.Kind != "" && it.Kind != models.KindVideo && it.Kind != models.KindClip {
			return fmt.Errorf("%w: item %q has unknown kind %q", shared.ErrInvalidInput, it.ID, it.Kind)
		}
		ids[it.ID] = true
	}

	var last time.Duration
	for i, st := range s.Steps {
		if !slices.Contains(actions, st.Action) {
			return fmt.Errorf("%w: step %d has unknown action %q", shared.ErrInvalidInput, i, st.Action)
		}
		if st.At < last {
			return fmt.Errorf("%w: step %d goes back in time (%s < %s)", shared.ErrInvalidInput, i, st.At, last)
		}
		last = st.At
		if needsItem(st.Action) && !ids[st.ID] {
			return fmt.Errorf("%w: step %d refers to unknown item %q", shared.ErrInvalidInput, i, st.ID)
		}
	}
	return nil
}

func needsItem(action string) bool {
	switch action {
	case ActionMute, ActionNext, ActionPrev:
		return false
	default:
		return true
	}
}
