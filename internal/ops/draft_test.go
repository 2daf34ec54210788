package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
)

func TestDraftSave_GeneratesIDAndTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	out, err := DraftSave(ctx, store, DraftSaveInput{Data: json.RawMessage(compliantOutline)})
	if err != nil {
		t.Fatalf("DraftSave failed: %v", err)
	}
	if len(out.ID) != 26 {
		t.Errorf("ID = %q, want a ULID", out.ID)
	}
	if out.Type != DefaultDraftType {
		t.Errorf("Type = %q, want %q", out.Type, DefaultDraftType)
	}
	if out.Timestamp == 0 {
		t.Error("Timestamp should be set")
	}

	got, err := DraftGet(ctx, store, DraftGetInput{ID: out.ID})
	if err != nil {
		t.Fatalf("DraftGet failed: %v", err)
	}
	if got.Title != "Global Income" {
		t.Errorf("Title = %q, want outline title", got.Title)
	}
	if got.Slides == nil || *got.Slides != 12 {
		t.Errorf("Slides = %v, want 12", got.Slides)
	}
}

func TestDraftSave_UpsertsByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saveDraft(t, store, "deck-1", "", brokenOutline)
	saveDraft(t, store, "deck-1", "", compliantOutline)

	got, err := DraftGet(ctx, store, DraftGetInput{ID: "deck-1"})
	if err != nil {
		t.Fatalf("DraftGet failed: %v", err)
	}
	if *got.Slides != 12 {
		t.Errorf("Slides = %d, want last write to win", *got.Slides)
	}

	list, err := DraftList(ctx, store, DraftListInput{})
	if err != nil {
		t.Fatalf("DraftList failed: %v", err)
	}
	if list.Pagination.Total != 1 {
		t.Errorf("Total = %d, want 1", list.Pagination.Total)
	}
}

func TestDraftSave_Validation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tests := []struct {
		name  string
		input DraftSaveInput
	}{
		{"missing data", DraftSaveInput{ID: "a"}},
		{"outline not an object", DraftSaveInput{ID: "a", Data: json.RawMessage(`[1,2]`)}},
		{"outline invalid json", DraftSaveInput{ID: "a", Data: json.RawMessage(`{"slides":`)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DraftSave(ctx, store, tc.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestDraftSave_OtherTypesSkipOutlineValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	out, err := DraftSave(ctx, store, DraftSaveInput{
		ID:    "notes-1",
		Type:  "  Speaker Notes ",
		Title: "Notes",
		Data:  json.RawMessage(`["slide one", "slide two"]`),
	})
	if err != nil {
		t.Fatalf("DraftSave failed: %v", err)
	}
	if out.Type != "speaker notes" {
		t.Errorf("Type = %q, want normalized", out.Type)
	}

	got, err := DraftGet(ctx, store, DraftGetInput{ID: "notes-1"})
	if err != nil {
		t.Fatalf("DraftGet failed: %v", err)
	}
	if got.Slides != nil {
		t.Errorf("Slides = %d, want nil for non-outline drafts", *got.Slides)
	}
}

func TestDraftGet_NotFound(t *testing.T) {
	_, err := DraftGet(context.Background(), newTestStore(t), DraftGetInput{ID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}

	_, err = DraftGet(context.Background(), newTestStore(t), DraftGetInput{ID: "  "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for blank id, got: %v", err)
	}
}

func TestDraftList_PaginationAndFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := range 5 {
		saveDraft(t, store, fmt.Sprintf("deck-%d", i), "", brokenOutline)
		time.Sleep(2 * time.Millisecond)
	}
	saveDraft(t, store, "notes-1", "notes", `{"text": "hello"}`)

	page, err := DraftList(ctx, store, DraftListInput{Type: "outline", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("DraftList failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(page.Items))
	}
	if page.Items[0].ID != "deck-3" || page.Items[1].ID != "deck-2" {
		t.Errorf("Items = %s, %s; want newest first from offset 1", page.Items[0].ID, page.Items[1].ID)
	}
	if !page.Pagination.HasMore || page.Pagination.Total != 5 {
		t.Errorf("Pagination = %+v, want has_more with total 5", page.Pagination)
	}
	if page.Items[0].Title != "Draft deck" || page.Items[0].Bytes != len(brokenOutline) {
		t.Errorf("summary = %+v", page.Items[0])
	}
	if page.Sort != "timestamp_desc" {
		t.Errorf("Sort = %q", page.Sort)
	}

	all, err := DraftList(ctx, store, DraftListInput{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("DraftList failed: %v", err)
	}
	if all.Pagination.Limit != MaxListLimit || all.Pagination.Offset != 0 {
		t.Errorf("Pagination = %+v, want clamped limit and offset", all.Pagination)
	}
	if len(all.Items) != 6 || all.Items[0].ID != "notes-1" {
		t.Errorf("unfiltered list = %d items, first %q", len(all.Items), all.Items[0].ID)
	}

	past, err := DraftList(ctx, store, DraftListInput{Offset: 50})
	if err != nil {
		t.Fatalf("DraftList failed: %v", err)
	}
	if past.Items == nil || len(past.Items) != 0 || past.Pagination.HasMore {
		t.Errorf("offset past end = %+v, want empty page", past)
	}
}

func TestDraftDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	saveDraft(t, store, "deck-1", "", brokenOutline)

	out, err := DraftDelete(ctx, store, DraftDeleteInput{ID: "deck-1"})
	if err != nil {
		t.Fatalf("DraftDelete failed: %v", err)
	}
	if !out.Deleted || out.ID != "deck-1" {
		t.Errorf("output = %+v", out)
	}

	_, err = DraftDelete(ctx, store, DraftDeleteInput{ID: "deck-1"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got: %v", err)
	}
}

func TestDraftPurgeAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := drafts.Draft{
		ID:        "old",
		Type:      DefaultDraftType,
		Data:      json.RawMessage(brokenOutline),
		Timestamp: time.Now().Add(-10 * 24 * time.Hour).UnixMilli(),
	}
	if err := store.Save(ctx, old); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	saveDraft(t, store, "fresh", "", brokenOutline)

	if _, err := DraftPurge(ctx, store, DraftPurgeInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("zero days: expected ErrInvalidRequest, got: %v", err)
	}

	purged, err := DraftPurge(ctx, store, DraftPurgeInput{OlderThanDays: 7})
	if err != nil {
		t.Fatalf("DraftPurge failed: %v", err)
	}
	if purged.Purged != 1 {
		t.Errorf("Purged = %d, want 1", purged.Purged)
	}
	if purged.Message != "Permanently deleted 1 draft (saved more than 7 days ago)" {
		t.Errorf("Message = %q", purged.Message)
	}

	cleared, err := DraftClear(ctx, store)
	if err != nil {
		t.Fatalf("DraftClear failed: %v", err)
	}
	if cleared.Purged != 1 || cleared.Message != "Permanently deleted 1 draft" {
		t.Errorf("clear = %+v", cleared)
	}

	empty, err := DraftClear(ctx, store)
	if err != nil {
		t.Fatalf("DraftClear failed: %v", err)
	}
	if empty.Message != "No drafts to purge" {
		t.Errorf("Message = %q", empty.Message)
	}
}
