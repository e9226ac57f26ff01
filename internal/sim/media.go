package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/reelsync/internal/shared"
)

// media is a scripted element. Every command is written to the trace. Sources become ready
// as soon as they are set.
type media struct {
	id       string
	trace    func(subject, text string)
	duration time.Duration
	reject   bool
	paused   bool
	muted    bool
	position time.Duration
	source   string
}

func newMedia(id string, duration time.Duration, rejectAutoplay bool, trace func(subject, text string)) *media {
	return &media{id: id, trace: trace, duration: duration, reject: rejectAutoplay, paused: true}
}

// Play rejects the first call when the item was scripted to refuse autoplay.
func (m *media) Play(context.Context) error {
	if m.reject {
		m.reject = false
		m.trace(m.id, "play rejected")
		return shared.ErrAutoplayRejected
	}
	m.paused = false
	m.trace(m.id, "play")
	return nil
}

func (m *media) Pause() {
	m.paused = true
	m.trace(m.id, "pause")
}

func (m *media) Seek(d time.Duration) {
	m.position = d
	m.trace(m.id, fmt.Sprintf("seek %s", d))
}

func (m *media) SetMuted(muted bool) {
	if m.muted == muted {
		return
	}
	m.muted = muted
	m.trace(m.id, fmt.Sprintf("muted=%t", muted))
}

func (m *media) SetSource(url string) <-chan struct{} {
	m.source = url
	m.position = 0
	m.paused = true
	m.trace(m.id, "source "+url)
	ready := make(chan struct{})
	close(ready)
	return ready
}

func (m *media) Position() time.Duration { return m.position }
func (m *media) Duration() time.Duration { return m.duration }
func (m *media) Paused() bool            { return m.paused }
