package quality

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelsync/internal/clock"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
)

// DefaultReadyTimeout bounds the wait for a new source.
const DefaultReadyTimeout = 5 * time.Second

// Player is the media element whose source is switched. SetSource returns a channel that is
// closed once the new source can play.
type Player interface {
	SetSource(url string) <-chan struct{}
	Pause()
	Seek(d time.Duration)
	Play(ctx context.Context) error
	Position() time.Duration
	Paused() bool
}

// Options configures a [Switcher].
type Options struct {
	Player       Player
	Resolutions  []models.ResolutionOption
	Current      string
	Session      shared.Session
	Toasts       toast.Sink
	Clock        clock.Clock
	ReadyTimeout time.Duration
	Logger       *log.Logger
}

// restore is what a switch puts back once the new source is ready.
type restore struct {
	position   time.Duration
	wasPlaying bool
}

// Switcher owns the resolution choice of one player.
type Switcher struct {
	player  Player
	session shared.Session
	toasts  toast.Sink
	clock   clock.Clock
	timeout time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	options []models.ResolutionOption
	current int
	gen     uint64
	pending *restore
}

// NewSwitcher creates a Switcher. The current option is opts.Current when it names one,
// otherwise [models.DefaultResolution].
func NewSwitcher(opts Options) *Switcher {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	current := indexOf(opts.Resolutions, opts.Current)
	if current < 0 {
		current = models.DefaultResolution(opts.Resolutions)
	}
	return &Switcher{
		player:  opts.Player,
		session: opts.Session,
		toasts:  opts.Toasts,
		clock:   opts.Clock,
		timeout: opts.ReadyTimeout,
		logger:  shared.WithLogger(opts.Logger, "component", "quality"),
		options: append([]models.ResolutionOption(nil), opts.Resolutions...),
		current: current,
	}
}

func indexOf(opts []models.ResolutionOption, value string) int {
	if value == "" {
		return -1
	}
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Options returns the available renditions in display order.
func (s *Switcher) Options() []models.ResolutionOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ResolutionOption(nil), s.options...)
}

// Current returns the selected rendition. ok is false when there are no options.
func (s *Switcher) Current() (models.ResolutionOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 || s.current >= len(s.options) {
		return models.ResolutionOption{}, false
	}
	return s.options[s.current], true
}

// SwitchTo selects the rendition with the given value and blocks until the player resumed
// on it, the ready wait timed out, or ctx ended.
func (s *Switcher) SwitchTo(ctx context.Context, value string) error {
	s.mu.Lock()
	idx := indexOf(s.options, value)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", shared.ErrUnknownOption, value)
	}
	if idx == s.current {
		s.mu.Unlock()
		return nil
	}
	opt := s.options[idx]
	if opt.RequiresEntitlement && !s.session.Premium {
		s.mu.Unlock()
		s.showPremiumRequired(opt)
		return fmt.Errorf("%w: %s", shared.ErrEntitlementRequired, opt.Label)
	}

	// A switch that interrupts another keeps the first switch's capture; the player is
	// already rewound on the interrupted source.
	r := s.pending
	if r == nil {
		r = &restore{position: s.player.Position(), wasPlaying: !s.player.Paused()}
	}
	s.pending = r
	s.gen++
	gen := s.gen
	s.current = idx
	s.mu.Unlock()

	s.logger.Debug("switching source", "to", opt.Label, "position", r.position, "playing", r.wasPlaying)
	ready := s.player.SetSource(opt.SourceURL)

	select {
	case <-ready:
	case <-s.clock.After(s.timeout):
		if s.finish(gen) {
			s.player.Pause()
			s.player.Seek(0)
			s.logger.Warn("source not ready, leaving player paused", "to", opt.Label, "timeout", s.timeout)
		}
		return nil
	case <-ctx.Done():
		s.finish(gen)
		return ctx.Err()
	}

	if !s.finish(gen) {
		s.logger.Debug("discarding stale ready signal", "to", opt.Label)
		return nil
	}

	s.player.Seek(r.position)
	if !r.wasPlaying {
		return nil
	}
	if err := s.player.Play(ctx); err != nil {
		if errors.Is(err, shared.ErrAutoplayRejected) {
			s.logger.Debug("resume rejected, waiting for a gesture")
			return nil
		}
		return err
	}
	return nil
}

// finish clears the pending capture if gen is still the latest switch. It reports whether it was.
func (s *Switcher) finish(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.pending = nil
	return true
}

func (s *Switcher) showPremiumRequired(opt models.ResolutionOption) {
	if s.toasts == nil {
		return
	}
	s.toasts.Show(toast.Toast{
		Type:    models.NotificationInfo,
		Title:   "Premium Quality",
		Message: fmt.Sprintf("%s is available with a premium subscription", opt.Label),
	})
}
