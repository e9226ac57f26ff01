package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelsync/internal/repositories"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// NotificationsWatch launches the interactive notification watcher.
func (r *Runner) NotificationsWatch(ctx context.Context, cmd *cli.Command) error {
	if !r.config.CurrentSession().Authenticated() {
		return shared.ErrNotAuthenticated
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/reelsync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	toasts := r.newToasts()
	poller := r.newPoller(toasts, repositories.NewNotificationRepository(db))
	defer poller.Stop()

	feed := ui.NewFeed(64)
	defer feed.Close()
	toasts.Subscribe(feed.Toast)
	poller.Subscribe(feed.Event)

	model := ui.NewModel(ctx, poller, feed)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
