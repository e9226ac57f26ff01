package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/reelsync/internal/toast"
)

// CallLog records calls across several fakes so tests can assert causal order.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) Add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// FakeMedia is an in-memory media element.
//
// Every call is written to Log as "<name>:<call>", e.g. "a:play" or "a:seek:0s".
type FakeMedia struct {
	Name string
	Log  *CallLog

	// PlayErr, when set, is returned by Play and leaves the element paused.
	PlayErr error
	// AutoReady closes the ready channel returned by SetSource immediately.
	AutoReady bool

	mu       sync.Mutex
	paused   bool
	muted    bool
	position time.Duration
	duration time.Duration
	source   string
	ready    chan struct{}
}

// NewFakeMedia creates a paused element of the given duration.
func NewFakeMedia(name string, log *CallLog, duration time.Duration) *FakeMedia {
	if log == nil {
		log = &CallLog{}
	}
	return &FakeMedia{Name: name, Log: log, paused: true, duration: duration}
}

func (m *FakeMedia) Play(ctx context.Context) error {
	m.Log.Add("%s:play", m.Name)
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayErr != nil {
		m.paused = true
		return m.PlayErr
	}
	m.paused = false
	return nil
}

func (m *FakeMedia) Pause() {
	m.Log.Add("%s:pause", m.Name)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *FakeMedia) Seek(d time.Duration) {
	m.Log.Add("%s:seek:%s", m.Name, d)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *FakeMedia) SetMuted(muted bool) {
	m.Log.Add("%s:muted:%t", m.Name, muted)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// SetSource swaps the source, resets position and pauses, like a media element reload.
func (m *FakeMedia) SetSource(url string) <-chan struct{} {
	m.Log.Add("%s:source:%s", m.Name, url)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.source = url
	m.position = 0
	m.paused = true
	m.ready = make(chan struct{})
	if m.AutoReady {
		close(m.ready)
	}
	return m.ready
}

// MarkReady signals that the most recently set source can play.
func (m *FakeMedia) MarkReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready == nil {
		return
	}
	select {
	case <-m.ready:
	default:
		close(m.ready)
	}
}

func (m *FakeMedia) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// SetPosition moves the playhead without logging, as playback progress would.
func (m *FakeMedia) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *FakeMedia) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *FakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// SetPaused forces the paused flag without logging.
func (m *FakeMedia) SetPaused(p bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = p
}

func (m *FakeMedia) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *FakeMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// ToastRecorder is a [toast.Sink] that keeps every toast shown.
type ToastRecorder struct {
	mu     sync.Mutex
	toasts []toast.Toast
}

func (r *ToastRecorder) Show(t toast.Toast) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = fmt.Sprintf("toast-%d", len(r.toasts)+1)
	}
	r.toasts = append(r.toasts, t)
	return t.ID
}

func (r *ToastRecorder) Toasts() []toast.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast.Toast(nil), r.toasts...)
}

func (r *ToastRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.toasts)
}
