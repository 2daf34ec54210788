package drafts

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/slate/internal/db"
)

// SQLiteStore keeps drafts in the local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialised database (see db.Init).
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Save(ctx context.Context, d Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	return db.Upsert(ctx, s.db, &d)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Draft, error) {
	return db.GetByID(ctx, s.db, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := db.Delete(ctx, s.db, id)
	return err
}

func (s *SQLiteStore) ListByType(ctx context.Context, typ string) ([]Draft, error) {
	return db.ListByType(ctx, s.db, typ)
}

func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	return db.ClearAll(ctx, s.db)
}

func (s *SQLiteStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return db.PurgeOlderThan(ctx, s.db, cutoff.UnixMilli())
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
