// package repositories provides SQLite-backed caches for engine state.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Count returns the number of rows in table.
func Count(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Prune deletes rows of table whose timeColumn is older than cutoff and returns how many were removed.
func Prune(ctx context.Context, db *sql.DB, table, timeColumn string, cutoff any) (int64, error) {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s < ?", table, timeColumn), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}
