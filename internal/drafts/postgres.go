package drafts

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS drafts (
  id        TEXT PRIMARY KEY,
  type      TEXT NOT NULL,
  title     TEXT NOT NULL DEFAULT '',
  data      TEXT NOT NULL,
  timestamp BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_type ON drafts(type, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_drafts_timestamp ON drafts(timestamp);
`

// PostgresStore keeps drafts in a shared Postgres database.
// Data is stored as TEXT so documents read back byte-for-byte.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, verifies the connection and ensures the
// drafts table exists. cfg.DBMaxOpenConns caps the pool when set.
func OpenPostgres(ctx context.Context, dsn string, cfg *config.Config) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.NewInvalidRequest("postgres_dsn is required when draft_store is postgres")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unable to parse postgres_dsn: %v", err))
	}
	if cfg != nil && cfg.DBMaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.DBMaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.NewStorageUnavailable(config.DraftStorePostgres, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewStorageUnavailable(config.DraftStorePostgres, err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errors.NewStorageUnavailable(config.DraftStorePostgres, fmt.Errorf("schema: %w", err))
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, d Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	query := `
		INSERT INTO drafts (id, type, title, data, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			data = EXCLUDED.data,
			timestamp = EXCLUDED.timestamp
	`
	if _, err := s.pool.Exec(ctx, query, d.ID, d.Type, d.Title, string(d.Data), d.Timestamp); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Draft, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, type, title, data, timestamp FROM drafts WHERE id = $1`, id)
	d, err := scanPgDraft(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func (s *PostgresStore) ListByType(ctx context.Context, typ string) ([]Draft, error) {
	query := `SELECT id, type, title, data, timestamp FROM drafts`
	var args []any
	if typ != "" {
		query += ` WHERE type = $1`
		args = append(args, typ)
	}
	query += ` ORDER BY timestamp DESC, id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []Draft{}
	for rows.Next() {
		d, err := scanPgDraft(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drafts`)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drafts WHERE timestamp < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgDraft(row pgx.Row) (*Draft, error) {
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
