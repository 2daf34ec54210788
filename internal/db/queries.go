package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/slate/internal/errors"
)

// Draft is a persisted, recoverable snapshot of an in-progress document.
type Draft struct {
	// ID is the caller-supplied stable key (one live draft per key)
	ID string `json:"id"`

	// Type is the document kind, used for enumeration (e.g. "outline")
	Type string `json:"type"`

	// Title is a human-readable label for recovery prompts
	Title string `json:"title"`

	// Data is the serialized document
	Data json.RawMessage `json:"data"`

	// Timestamp is the save time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// Upsert stores d, replacing any existing draft with the same ID.
func Upsert(ctx context.Context, db *sql.DB, d *Draft) error {
	query := `
		INSERT INTO drafts (id, type, title, data, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			data = excluded.data,
			timestamp = excluded.timestamp
	`
	if _, err := db.ExecContext(ctx, query, d.ID, d.Type, d.Title, string(d.Data), d.Timestamp); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a draft by its key.
func GetByID(ctx context.Context, db *sql.DB, id string) (*Draft, error) {
	query := `
		SELECT id, type, title, data, timestamp
		FROM drafts
		WHERE id = ?
	`
	d, err := scanDraft(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// Delete removes a draft. It reports whether a row existed.
func Delete(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return rowsAffected > 0, nil
}

// ListByType returns drafts of the given type, newest first.
// An empty type lists every draft.
func ListByType(ctx context.Context, db *sql.DB, typ string) ([]Draft, error) {
	query := `
		SELECT id, type, title, data, timestamp
		FROM drafts
	`
	var args []any
	if typ != "" {
		query += " WHERE type = ?"
		args = append(args, typ)
	}
	query += " ORDER BY timestamp DESC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	drafts := []Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return drafts, nil
}

// ClearAll removes every draft and returns the number removed.
func ClearAll(ctx context.Context, db *sql.DB) (int, error) {
	return execCount(ctx, db, `DELETE FROM drafts`)
}

// PurgeOlderThan removes drafts saved before cutoff (Unix milliseconds)
// and returns the number removed.
func PurgeOlderThan(ctx context.Context, db *sql.DB, cutoff int64) (int, error) {
	return execCount(ctx, db, `DELETE FROM drafts WHERE timestamp < ?`, cutoff)
}

func execCount(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanDraft scans a single row into a Draft struct.
func scanDraft(row scanner) (*Draft, error) {
	var (
		d    Draft
		data string
	)
	if err := row.Scan(&d.ID, &d.Type, &d.Title, &data, &d.Timestamp); err != nil {
		return nil, err
	}
	d.Data = json.RawMessage(data)
	return &d, nil
}
