package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
)

// DraftSaveInput contains parameters for the DraftSave operation.
type DraftSaveInput struct {
	ID    string          // optional; a ULID is generated when empty
	Type  string          // default: "outline"
	Title string          // default: the outline title for outline drafts
	Data  json.RawMessage // required
}

// DraftSaveOutput contains the result of the DraftSave operation.
type DraftSaveOutput struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// DraftSave upserts a draft. Outline drafts must decode as an outline.
func DraftSave(ctx context.Context, store drafts.Store, input DraftSaveInput) (*DraftSaveOutput, error) {
	if len(input.Data) == 0 {
		return nil, errors.NewInvalidRequest("data is required")
	}
	typ := NormalizeType(input.Type)
	if typ == "" {
		typ = DefaultDraftType
	}

	title := strings.TrimSpace(input.Title)
	if typ == DefaultDraftType {
		o, err := parseOutline("data", input.Data)
		if err != nil {
			return nil, err
		}
		if title == "" {
			title = o.Title
		}
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		var err error
		id, err = generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	d := drafts.Draft{
		ID:        id,
		Type:      typ,
		Title:     title,
		Data:      input.Data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := store.Save(ctx, d); err != nil {
		return nil, err
	}
	return &DraftSaveOutput{ID: d.ID, Type: d.Type, Timestamp: d.Timestamp}, nil
}

// DraftGetInput contains parameters for the DraftGet operation.
type DraftGetInput struct {
	ID string // required
}

// DraftGetOutput contains the result of the DraftGet operation.
type DraftGetOutput struct {
	drafts.Draft
	Slides *int `json:"slides,omitempty"` // outline drafts only
}

// DraftGet retrieves a draft by key.
func DraftGet(ctx context.Context, store drafts.Store, input DraftGetInput) (*DraftGetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	d, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &DraftGetOutput{Draft: *d}
	if d.Type == DefaultDraftType {
		if o, err := deck.ParseOutline(d.Data); err == nil {
			n := len(o.Slides)
			out.Slides = &n
		}
	}
	return out, nil
}

// DraftListInput contains parameters for the DraftList operation.
type DraftListInput struct {
	Type   string // optional filter
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// DraftSummary is a draft without its data.
type DraftSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
	Bytes     int    `json:"bytes"`
}

// DraftListOutput contains the result of the DraftList operation.
type DraftListOutput struct {
	Items      []DraftSummary `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// DraftList enumerates drafts, newest first.
func DraftList(ctx context.Context, store drafts.Store, input DraftListInput) (*DraftListOutput, error) {
	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	all, err := store.ListByType(ctx, NormalizeType(input.Type))
	if err != nil {
		return nil, err
	}

	total := len(all)
	start := min(offset, total)
	end := min(start+limit, total)

	items := make([]DraftSummary, 0, end-start)
	for _, d := range all[start:end] {
		items = append(items, DraftSummary{
			ID:        d.ID,
			Type:      d.Type,
			Title:     d.Title,
			Timestamp: d.Timestamp,
			Bytes:     len(d.Data),
		})
	}

	return &DraftListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "timestamp_desc",
	}, nil
}

// DraftDeleteInput contains parameters for the DraftDelete operation.
type DraftDeleteInput struct {
	ID string // required
}

// DraftDeleteOutput contains the result of the DraftDelete operation.
type DraftDeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DraftDelete discards a draft. Deleting an unknown key is NOT_FOUND.
func DraftDelete(ctx context.Context, store drafts.Store, input DraftDeleteInput) (*DraftDeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	// Verify it exists (Get returns NOT_FOUND if not)
	if _, err := store.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DraftDeleteOutput{Deleted: true, ID: id}, nil
}

// DraftPurgeInput contains parameters for the DraftPurge operation.
type DraftPurgeInput struct {
	OlderThanDays int // required, > 0
}

// PurgeOutput contains the result of the DraftPurge and DraftClear operations.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// DraftPurge deletes drafts last saved more than N days ago.
func DraftPurge(ctx context.Context, store drafts.Store, input DraftPurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays <= 0 {
		return nil, errors.NewInvalidRequest("older_than_days must be positive")
	}
	cutoff := time.Now().Add(-time.Duration(input.OlderThanDays) * 24 * time.Hour)
	count, err := store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, fmt.Sprintf(" (saved more than %d days ago)", input.OlderThanDays)),
	}, nil
}

// DraftClear deletes every draft.
func DraftClear(ctx context.Context, store drafts.Store) (*PurgeOutput, error) {
	count, err := store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, ""),
	}, nil
}

// formatPurgeMessage creates a human-readable message for a purge result.
func formatPurgeMessage(count int, suffix string) string {
	if count == 0 {
		return "No drafts to purge"
	}
	word := "draft"
	if count > 1 {
		word = "drafts"
	}
	return fmt.Sprintf("Permanently deleted %d %s%s", count, word, suffix)
}
