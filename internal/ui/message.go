package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelsync/internal/notify"
	"github.com/desertthunder/reelsync/internal/toast"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStarted MsgKind = iota
	MsgToast
	MsgEvent
	MsgClosed
)

// startedMsg is the constructor for [MsgStarted]
func startedMsg(err error) Msg {
	return Msg{kind: MsgStarted, data: err}
}

// toastMsg is the constructor for [MsgToast]
func toastMsg(t toast.Toast) Msg {
	return Msg{kind: MsgToast, data: t}
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(e notify.Event) Msg {
	return Msg{kind: MsgEvent, data: e}
}

// closedMsg is the constructor for [MsgClosed]
func closedMsg() Msg {
	return Msg{kind: MsgClosed}
}

// Feed turns subscriber callbacks into a stream of [Msg] values.
//
// Sends block while the buffer is full and return immediately once the feed is closed.
type Feed struct {
	ch   chan Msg
	done chan struct{}
	once sync.Once
}

// NewFeed creates a feed buffering up to size messages.
func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan Msg, size), done: make(chan struct{})}
}

// Toast is a [toast.Center] subscriber.
func (f *Feed) Toast(t toast.Toast) { f.send(toastMsg(t)) }

// Event is a [notify.Poller] subscriber.
func (f *Feed) Event(e notify.Event) { f.send(eventMsg(e)) }

// Close stops delivery; pending and future sends are dropped.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.done) })
}

// Next returns a command that waits for the next message.
func (f *Feed) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-f.ch:
			return m
		case <-f.done:
			return closedMsg()
		}
	}
}

func (f *Feed) send(m Msg) {
	select {
	case <-f.done:
		return
	default:
	}
	select {
	case f.ch <- m:
	case <-f.done:
	}
}
