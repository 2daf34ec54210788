package drafts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hpungsan/slate/internal/errors"
)

// MemoryStore is a session-scoped store. Drafts do not survive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Save(_ context.Context, d Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	d.Data = slices.Clone(d.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	d.Data = slices.Clone(d.Data)
	return &d, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) ListByType(_ context.Context, typ string) ([]Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Draft{}
	for _, d := range s.drafts {
		if typ == "" || d.Type == typ {
			d.Data = slices.Clone(d.Data)
			out = append(out, d)
		}
	}
	// Newest first, ID breaks ties (matches the SQL stores).
	slices.SortFunc(out, func(a, b Draft) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.drafts)
	clear(s.drafts)
	return n, nil
}

func (s *MemoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := cutoff.UnixMilli()
	n := 0
	for id, d := range s.drafts {
		if d.Timestamp < ms {
			delete(s.drafts, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
