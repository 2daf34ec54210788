// Package drafts persists recoverable document snapshots and runs the
// auto-save loop that keeps them current.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/db"
	"github.com/hpungsan/slate/internal/errors"
)

// Draft is a persisted snapshot keyed by a caller-supplied ID.
type Draft = db.Draft

// Store is a keyed draft table. Implementations must upsert by ID with
// last-write-wins semantics.
type Store interface {
	// Save inserts or replaces the draft with d.ID.
	Save(ctx context.Context, d Draft) error
	// Get returns the draft with id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Draft, error)
	// Delete removes the draft with id. Deleting a missing draft is not an error.
	Delete(ctx context.Context, id string) error
	// ListByType returns drafts of typ, newest first. An empty typ lists all.
	ListByType(ctx context.Context, typ string) ([]Draft, error)
	// Clear removes every draft and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	// PurgeOlderThan removes drafts saved before cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	// Close releases the backend.
	Close() error
}

// Open returns the store selected by cfg.DraftStore. SQLite files live in
// baseDir.
func Open(ctx context.Context, cfg *config.Config, baseDir string) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.DraftStore))
	switch backend {
	case "", config.DraftStoreSQLite:
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, errors.NewStorageUnavailable(config.DraftStoreSQLite, err)
		}
		db.ConfigurePool(database, cfg)
		return NewSQLiteStore(database), nil
	case config.DraftStoreMemory:
		return NewMemoryStore(), nil
	case config.DraftStorePostgres:
		store, err := OpenPostgres(ctx, cfg.PostgresDSN, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown draft_store %q (want sqlite, memory or postgres)", cfg.DraftStore))
	}
}

// validateDraft checks the fields every backend requires.
func validateDraft(d Draft) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.NewInvalidRequest("draft id is required")
	}
	if strings.TrimSpace(d.Type) == "" {
		return errors.NewInvalidRequest("draft type is required")
	}
	if !json.Valid(d.Data) {
		return errors.NewInvalidRequest("draft data must be valid JSON")
	}
	return nil
}
