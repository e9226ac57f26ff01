package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/reelsync/internal/models"
)

// SnapshotRepository caches confirmed engagement values.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// SaveSnapshot upserts the value of one entity field.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, entityID string, field models.Field, s models.Snapshot) error {
	query := `
		INSERT INTO engagement_snapshots (entity_id, field, active, count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (entity_id, field) DO UPDATE SET
			active = excluded.active,
			count = excluded.count,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, entityID, field.String(), s.Active, s.Count, r.now()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// DeleteEntity removes every cached field of an entity.
func (r *SnapshotRepository) DeleteEntity(ctx context.Context, entityID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM engagement_snapshots WHERE entity_id = ?`, entityID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// Get returns the cached value of one field. ok is false when nothing is cached.
func (r *SnapshotRepository) Get(ctx context.Context, entityID string, field models.Field) (models.Snapshot, bool, error) {
	query := `SELECT active, count FROM engagement_snapshots WHERE entity_id = ? AND field = ?`

	var s models.Snapshot
	err := r.db.QueryRowContext(ctx, query, entityID, field.String()).Scan(&s.Active, &s.Count)
	if err == sql.ErrNoRows {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return s, true, nil
}

// List returns every cached field, ordered by entity and field.
func (r *SnapshotRepository) List(ctx context.Context) ([]models.CachedSnapshot, error) {
	query := `
		SELECT entity_id, field, active, count, updated_at
		FROM engagement_snapshots
		ORDER BY entity_id, field
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.CachedSnapshot
	for rows.Next() {
		var (
			c     models.CachedSnapshot
			field string
		)
		if err := rows.Scan(&c.EntityID, &field, &c.Snapshot.Active, &c.Snapshot.Count, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		f, ok := models.ParseField(field)
		if !ok {
			continue
		}
		c.Field = f
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}
