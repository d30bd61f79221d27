package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrobridge/tradeapi/internal/domain"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// appendHistoryTx inserts one append-only history row. History is never
// updated or deleted, only inserted.
func appendHistoryTx(ctx context.Context, ex execer, table, fkColumn string, id uuid.UUID, entry domain.HistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, status, updated_by, updated_at, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table, fkColumn)

	_, err := ex.ExecContext(ctx, query,
		uuid.New(), id, entry.Status, entry.UpdatedBy, entry.UpdatedAt, entry.Note)
	return err
}

func loadHistory(ctx context.Context, db *sql.DB, table, fkColumn string, id uuid.UUID) ([]domain.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT status, updated_by, updated_at, note
		FROM %s WHERE %s = $1
		ORDER BY updated_at ASC, id ASC
	`, table, fkColumn)

	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var note sql.NullString
		if err := rows.Scan(&entry.Status, &entry.UpdatedBy, &entry.UpdatedAt, &note); err != nil {
			return nil, err
		}
		if note.Valid {
			entry.Note = note.String
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}
