package ops

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/drafts"
)

// compliantOutline passes every error rule and every warning rule.
const compliantOutline = `{
  "title": "Global Income",
  "slides": [
    {"layout": "cover", "title": "GLOBAL INCOME", "subtitle": "Q3 review"},
    {"layout": "section_divider", "section_title": "STRATEGY", "section_number": "01"},
    {"layout": "three_pillars", "title": "WHY IT WORKS", "pillars": [
      {"label": "Quality", "description": "a"},
      {"label": "Yield", "description": "b"},
      {"label": "Risk", "description": "c"}
    ]},
    {"layout": "process_steps", "title": "PROCESS", "components": [{"title": "Screen", "body": "x"}]},
    {"layout": "strategy_overview", "title": "OVERVIEW", "body": "Diversified income."},
    {"layout": "composite_three", "title": "BUILDING BLOCKS", "components": [
      {"title": "Bonds", "body": "x"},
      {"title": "Equity", "body": "y"},
      {"title": "Portfolio", "body": "z", "is_result": true}
    ]},
    {"layout": "chart", "title": "RETURNS", "chart_title": "GROWTH OF 10K", "disclaimer": "Past performance is no guarantee."},
    {"layout": "strategy_table", "title": "CALENDAR RETURNS", "footnote": "Net of fees.",
      "columns": ["Year", "Return"], "rows": [["2023", "8.1%"], ["2024", "6.4%"]]},
    {"layout": "use_cases", "title": "WHO IT IS FOR", "cases": [{"title": "Retirees", "body": "Income"}]},
    {"layout": "disclosures", "disclosure_text": "For professional investors only."},
    {"layout": "definitions", "definitions": [{"term": "Yield", "definition": "Income over price"}]},
    {"layout": "thank_you", "title": "THANK YOU"}
  ]
}`

var fixedTime = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// brokenOutline has a cover and nothing else.
const brokenOutline = `{"title": "Draft deck", "slides": [{"layout": "cover", "title": "DRAFT"}]}`

func newTestStore(t *testing.T) drafts.Store {
	t.Helper()
	store := drafts.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return store
}

// testConfig allows file operations in dir only.
func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func saveDraft(t *testing.T, store drafts.Store, id, typ, data string) {
	t.Helper()
	_, err := DraftSave(context.Background(), store, DraftSaveInput{
		ID:   id,
		Type: typ,
		Data: json.RawMessage(data),
	})
	if err != nil {
		t.Fatalf("DraftSave(%q) failed: %v", id, err)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"Outline":           "outline",
		"  Speaker  Notes ": "speaker notes",
		"a\t\nb":            "a b",
	}
	for in, want := range tests {
		if got := NormalizeType(in); got != want {
			t.Errorf("NormalizeType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := generateULID()
		if err != nil {
			t.Fatalf("generateULID failed: %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("len(id) = %d, want 26", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
