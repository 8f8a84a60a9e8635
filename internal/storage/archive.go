package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"
)

// PostgresArchive keeps a copy of every artifact in the position_reports table.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive returns a sink writing into position_reports. db must
// have the goose migrations in db/migrations applied.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

// Dump implements Sink. Rows of an artifact with the same name are replaced
// in a single transaction.
func (a *PostgresArchive) Dump(ctx context.Context, name string, lines []string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM position_reports WHERE name = $1`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete previous %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("position_reports", "name", "line_no", "local_time", "volume"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for i, l := range lines {
		localTime, volume, ok := strings.Cut(l, ";")
		if !ok {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("line %d of %s is not LocalTime;Volume: %q", i+1, name, l)
		}
		if _, err := stmt.ExecContext(ctx, name, i+1, localTime, volume); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
