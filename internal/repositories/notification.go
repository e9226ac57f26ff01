package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
)

// NotificationRepository records notification deliveries.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository with the given database connection
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Record stores a delivery. The first delivery of a notification wins; later calls are ignored.
func (r *NotificationRepository) Record(ctx context.Context, n models.Notification, disposition string, at time.Time) error {
	query := `
		INSERT INTO notifications (id, type, message, link, disposition, created_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = at
	}

	_, err := r.db.ExecContext(ctx, query, n.ID, string(n.Type), n.Message, n.Link, disposition, createdAt, at)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// MarkAcknowledged sets the acknowledgment time of a recorded notification, once.
func (r *NotificationRepository) MarkAcknowledged(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE notifications SET acknowledged_at = ? WHERE id = ? AND acknowledged_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to acknowledge notification: %w", err)
	}
	return nil
}

// Get retrieves a recorded notification by ID
func (r *NotificationRepository) Get(ctx context.Context, id int64) (*models.HistoryEntry, error) {
	query := `
		SELECT id, type, message, link, disposition, created_at, delivered_at, acknowledged_at
		FROM notifications
		WHERE id = ?
	`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: notification %d", shared.ErrNotFound, id)
	}
	return entry, err
}

// List returns the most recent deliveries, newest first. A limit of zero or less returns all.
func (r *NotificationRepository) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, type, message, link, disposition, created_at, delivered_at, acknowledged_at
		FROM notifications
		ORDER BY delivered_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return entries, nil
}

// PruneBefore deletes deliveries older than cutoff.
func (r *NotificationRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return Prune(ctx, r.db, "notifications", "delivered_at", cutoff)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.HistoryEntry, error) {
	var (
		entry models.HistoryEntry
		kind  string
		acked sql.NullTime
	)
	err := s.Scan(
		&entry.Notification.ID,
		&kind,
		&entry.Notification.Message,
		&entry.Notification.Link,
		&entry.Disposition,
		&entry.Notification.CreatedAt,
		&entry.DeliveredAt,
		&acked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	entry.Notification.Type = models.NotificationType(kind)
	if acked.Valid {
		t := acked.Time
		entry.AcknowledgedAt = &t
		entry.Notification.IsRead = true
	}
	return &entry, nil
}
