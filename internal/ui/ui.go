package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/notify"
	"github.com/desertthunder/reelsync/internal/toast"
)

// Watcher is the poller surface the TUI drives. [notify.Poller] implements it.
type Watcher interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
	Dismiss(ctx context.Context)
	Celebration() (models.Notification, bool)
}

var _ Watcher = (*notify.Poller)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	watcher     Watcher
	feed        *Feed
	width       int
	height      int
	toasts      list.Model
	celebration *models.Notification
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model. The caller subscribes feed to the toast center and poller.
func NewModel(ctx context.Context, w Watcher, feed *Feed) *Model {
	toasts := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	toasts.Title = "Notifications"
	toasts.SetShowHelp(false)
	toasts.SetFilteringEnabled(false)

	m := &Model{
		ctx:     ctx,
		watcher: w,
		feed:    feed,
		toasts:  toasts,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	if n, ok := w.Celebration(); ok {
		m.celebration = &n
	}
	return m
}

// Init starts polling and begins listening on the feed.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.feed.Next())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.toasts, cmd = m.toasts.Update(msg)
	return m, cmd
}

// View renders the status line, celebration panel and toast list.
func (m *Model) View() string {
	var b strings.Builder

	status := styles.ok.Render("● polling")
	if !m.watcher.Running() {
		status = styles.help.Render("○ paused")
	}
	b.WriteString(status)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.celebration != nil {
		b.WriteString(m.renderCelebration())
		b.WriteString("\n\n")
	}

	if len(m.toasts.Items()) == 0 {
		b.WriteString(styles.help.Render("No notifications yet."))
	} else {
		b.WriteString(m.toasts.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.watcher.Stop()
		m.feed.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.dismiss):
		if m.celebration != nil {
			m.watcher.Dismiss(m.ctx)
		}
		return m, nil

	case key.Matches(msg, m.keys.pause):
		if m.watcher.Running() {
			m.watcher.Stop()
			if _, ok := m.watcher.Celebration(); !ok {
				m.celebration = nil
			}
			return m, nil
		}
		return m, m.start()

	case key.Matches(msg, m.keys.clear):
		if len(m.toasts.Items()) > 0 {
			m.toasts.RemoveItem(m.toasts.Index())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.toasts, cmd = m.toasts.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStarted:
		m.err, _ = msg.data.(error)
		return m, nil

	case MsgToast:
		t := msg.data.(toast.Toast)
		cmd := m.toasts.InsertItem(0, toastItem{toast: t})
		m.toasts.Select(0)
		return m, tea.Batch(cmd, m.feed.Next())

	case MsgEvent:
		e := msg.data.(notify.Event)
		switch e.Kind {
		case notify.EventCelebration:
			n := e.Notification
			m.celebration = &n
		case notify.EventDismissed:
			if m.celebration != nil && m.celebration.ID == e.Notification.ID {
				m.celebration = nil
			}
		}
		return m, m.feed.Next()

	case MsgClosed:
		return m, nil
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg(m.watcher.Start(m.ctx))
	}
}

func (m *Model) resize() {
	height := m.height - 8
	if m.celebration != nil {
		height -= 5
	}
	m.toasts.SetSize(max(m.width-4, 0), max(height, 0))
}

func (m *Model) renderCelebration() string {
	body := fmt.Sprintf("🎉 %s", m.celebration.Message)
	if m.celebration.Link != "" {
		body = fmt.Sprintf("%s\n%s", body, styles.help.Render(m.celebration.Link))
	}
	return styles.panel.Render(body)
}

func (m *Model) helpKeys() []key.Binding {
	keys := []key.Binding{m.keys.up, m.keys.down}
	if len(m.toasts.Items()) > 0 {
		keys = append(keys, m.keys.clear)
	}
	if m.celebration != nil {
		keys = append(keys, m.keys.dismiss)
	}
	return append(keys, m.keys.pause, m.keys.quit)
}
