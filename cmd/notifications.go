package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/reelsync/internal/formatter"
	"github.com/desertthunder/reelsync/internal/notify"
	"github.com/desertthunder/reelsync/internal/repositories"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
	"github.com/urfave/cli/v3"
)

// NotificationsPoll fetches unread notifications once, printing toasts and the celebration.
func (r *Runner) NotificationsPoll(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	toasts := r.newToasts()
	poller := r.newPoller(toasts, repositories.NewNotificationRepository(db))

	if !r.config.CurrentSession().Authenticated() {
		return shared.ErrNotAuthenticated
	}

	r.logger.Info("polling notifications", "base_url", r.client.BaseURL())
	if err := poller.Poll(ctx); err != nil {
		return fmt.Errorf("failed to poll notifications: %w", err)
	}

	delivered := toasts.Active()
	for _, t := range delivered {
		r.writePlain("[%s] %s\n", t.Type, t.Message)
	}

	n, ok := poller.Celebration()
	if ok {
		r.writePlainln("🎉 %s", n.Message)
		if n.Link != "" {
			r.writePlain("   %s\n", n.Link)
		}
		if cmd.Bool("ack") {
			poller.Dismiss(ctx)
			r.writePlain("✓ Acknowledged\n")
		}
	}

	if len(delivered) == 0 && !ok {
		return r.writePlain("No new notifications.\n")
	}
	return nil
}

// NotificationsHistory lists locally recorded notifications.
func (r *Runner) NotificationsHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewNotificationRepository(db)
	if age := cmd.Duration("prune"); age > 0 {
		n, err := repo.PruneBefore(ctx, r.clock.Now().Add(-age))
		if err != nil {
			return err
		}
		r.logger.Info("pruned notification history", "removed", n, "older_than", age)
	}

	entries, err := repo.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(cmd.String("format")) {
	case "csv":
		data, err = formatter.HistoryToCSV(entries)
	case "json":
		data, err = formatter.ToJSON(entries)
	case "text", "":
		data = formatter.HistoryToText(entries)
	default:
		return fmt.Errorf("unsupported format %q", cmd.String("format"))
	}
	if err != nil {
		return err
	}

	return r.emit(cmd.String("output"), data)
}

func (r *Runner) newPoller(toasts toast.Sink, history notify.History) *notify.Poller {
	timeout := r.config.Notifications.CelebrationTimeout
	if timeout == 0 {
		timeout = -1
	}
	return notify.NewPoller(notify.Options{
		Source:             r.client,
		Toasts:             toasts,
		History:            history,
		Session:            r.config.CurrentSession(),
		Clock:              r.clock,
		Interval:           r.config.Notifications.PollInterval,
		CelebrationTimeout: timeout,
		Logger:             r.logger,
	})
}

// emit writes data to path when set, otherwise to the runner's output.
func (r *Runner) emit(path string, data []byte) error {
	if path == "" {
		return r.writeBytes(data)
	}
	written, err := formatter.WriteExport(path, data)
	if err != nil {
		return err
	}
	r.logger.Info("export written", "path", written)
	return r.writePlain("✓ Written to %s\n", written)
}
