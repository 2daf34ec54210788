package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
)

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

const brokenOutline = `{"title": "Draft deck", "slides": [{"layout": "cover", "title": "DRAFT"}]}`

// testSetup creates an in-memory draft store and a config that allows file
// operations in a temp dir.
func testSetup(t *testing.T) (drafts.Store, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	store := drafts.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	return store, cfg, tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// object decodes a JSON literal into the shape MCP clients send.
func object(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestHandleCheck(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	tests := []struct {
		name          string
		args          map[string]any
		wantError     bool
		wantCompliant bool
	}{
		{
			name:          "compliant outline",
			args:          map[string]any{"outline": object(t, compliantOutline)},
			wantCompliant: true,
		},
		{
			name: "broken outline is data, not an error",
			args: map[string]any{"outline": object(t, brokenOutline), "report": true},
		},
		{
			name:          "outline sent as a JSON string",
			args:          map[string]any{"outline": compliantOutline},
			wantCompliant: true,
		},
		{
			name:      "missing outline",
			args:      map[string]any{},
			wantError: true,
		},
		{
			name:      "outline is an array",
			args:      map[string]any{"outline": []any{1, 2}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCheck(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, string(errors.ErrInvalidRequest))
				return
			}
			output := parseOutput(t, result)
			if output["compliant"] != tt.wantCompliant {
				t.Errorf("compliant = %v, want %v", output["compliant"], tt.wantCompliant)
			}
			if _, ok := output["issues"].([]any); !ok {
				t.Errorf("issues should be an array, got %T", output["issues"])
			}
		})
	}
}

func TestHandleCheck_Report(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)

	result, err := h.HandleCheck(context.Background(), makeRequest(map[string]any{
		"outline": object(t, brokenOutline),
		"report":  true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	report, _ := output["report"].(string)
	if !strings.Contains(report, "## Errors") {
		t.Errorf("report missing errors section:\n%s", report)
	}
	summary := output["summary"].(map[string]any)
	if summary["errors"] != float64(2) {
		t.Errorf("summary.errors = %v, want 2", summary["errors"])
	}
}

func TestHandleSchema(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)

	result, err := h.HandleSchema(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	if _, ok := output["schema"].(map[string]any); !ok {
		t.Errorf("schema missing: %v", output)
	}
	layouts, _ := output["layouts"].([]any)
	if len(layouts) == 0 {
		t.Error("layouts missing")
	}
}

func TestHandleElementsAndSync(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	slide := object(t, `{"layout": "cover", "title": "GLOBAL INCOME"}`)
	result, err := h.HandleElements(ctx, makeRequest(map[string]any{"slide": slide}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	elements := output["elements"].([]any)

	for _, e := range elements {
		el := e.(map[string]any)
		if el["id"] == "title" {
			el["content"] = "NEW TITLE"
		}
	}

	result, err = h.HandleSync(ctx, makeRequest(map[string]any{"slide": slide, "elements": elements}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output = parseOutput(t, result)
	if output["changed"] != true {
		t.Error("changed should be true")
	}
	synced := output["slide"].(map[string]any)
	if synced["title"] != "NEW TITLE" {
		t.Errorf("title = %v", synced["title"])
	}

	result, err = h.HandleSync(ctx, makeRequest(map[string]any{"elements": elements}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))
}

func TestHandleGeometry(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	boxes := object(t, `[
		{"id": "a", "x": 1, "y": 1, "w": 2, "h": 1},
		{"id": "b", "x": 4, "y": 2, "w": 1, "h": 2}
	]`)

	tests := []struct {
		name      string
		handler   func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args      map[string]any
		wantError bool
	}{
		{"align", h.HandleAlign, map[string]any{"boxes": boxes, "edge": "top"}, false},
		{"align bad edge", h.HandleAlign, map[string]any{"boxes": boxes, "edge": "up"}, true},
		{"distribute", h.HandleDistribute, map[string]any{"boxes": boxes, "axis": "vertical"}, false},
		{"match size", h.HandleMatchSize, map[string]any{"boxes": boxes, "dimension": "height", "target_id": "b"}, false},
		{"match size unknown target", h.HandleMatchSize, map[string]any{"boxes": boxes, "dimension": "height", "target_id": "z"}, true},
		{"snap", h.HandleSnap, map[string]any{"boxes": boxes, "grid": 0.5}, false},
		{"snap zero grid", h.HandleSnap, map[string]any{"boxes": boxes}, true},
		{"boxes wrong type", h.HandleSnap, map[string]any{"boxes": "nope", "grid": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantError {
				assertErrorCode(t, result, string(errors.ErrInvalidRequest))
				return
			}
			output := parseOutput(t, result)
			if got := len(output["boxes"].([]any)); got != 2 {
				t.Errorf("len(boxes) = %d, want 2", got)
			}
		})
	}
}

func TestHandleAlign_Values(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)

	result, err := h.HandleAlign(context.Background(), makeRequest(map[string]any{
		"boxes": object(t, `[{"id": "a", "x": 1, "y": 1, "w": 2, "h": 1}, {"id": "b", "x": 4, "y": 3, "w": 1, "h": 2}]`),
		"edge":  "top",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range parseOutput(t, result)["boxes"].([]any) {
		if y := b.(map[string]any)["y"]; y != float64(1) {
			t.Errorf("y = %v, want 1", y)
		}
	}
}

func TestHandleDraftLifecycle(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	result, err := h.HandleDraftSave(ctx, makeRequest(map[string]any{
		"id":   "deck-1",
		"data": object(t, compliantOutline),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := parseOutput(t, result)
	if saved["id"] != "deck-1" || saved["type"] != "outline" {
		t.Errorf("save output = %v", saved)
	}

	result, _ = h.HandleDraftGet(ctx, makeRequest(map[string]any{"id": "deck-1"}))
	got := parseOutput(t, result)
	if got["title"] != "Global Income" || got["slides"] != float64(12) {
		t.Errorf("get output = %v", got)
	}

	result, _ = h.HandleDraftList(ctx, makeRequest(map[string]any{"type": "outline"}))
	list := parseOutput(t, result)
	items := list["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if _, ok := items[0].(map[string]any)["data"]; ok {
		t.Error("list items must not carry data")
	}

	result, _ = h.HandleDraftDelete(ctx, makeRequest(map[string]any{"id": "deck-1"}))
	if parseOutput(t, result)["deleted"] != true {
		t.Error("deleted should be true")
	}

	result, _ = h.HandleDraftGet(ctx, makeRequest(map[string]any{"id": "deck-1"}))
	assertErrorCode(t, result, string(errors.ErrNotFound))

	result, _ = h.HandleDraftSave(ctx, makeRequest(map[string]any{"id": "x"}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))
}

func TestHandleDraftPurge(t *testing.T) {
	store, cfg, _ := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	result, _ := h.HandleDraftPurge(ctx, makeRequest(map[string]any{"older_than_days": 0}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))

	result, _ = h.HandleDraftPurge(ctx, makeRequest(map[string]any{"older_than_days": 30}))
	output := parseOutput(t, result)
	if output["purged"] != float64(0) || output["message"] != "No drafts to purge" {
		t.Errorf("purge output = %v", output)
	}
}

func TestHandleExportImport(t *testing.T) {
	store, cfg, tmpDir := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	for _, id := range []string{"deck-1", "deck-2"} {
		result, _ := h.HandleDraftSave(ctx, makeRequest(map[string]any{"id": id, "data": object(t, brokenOutline)}))
		parseOutput(t, result)
	}

	path := filepath.Join(tmpDir, "backup.jsonl")
	result, err := h.HandleDraftExport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parseOutput(t, result)["count"] != float64(2) {
		t.Errorf("export count mismatch")
	}

	// Same IDs already exist: mode error writes nothing.
	result, _ = h.HandleDraftImport(ctx, makeRequest(map[string]any{"path": path}))
	output := parseOutput(t, result)
	if output["imported"] != float64(0) {
		t.Errorf("imported = %v, want 0", output["imported"])
	}

	result, _ = h.HandleDraftImport(ctx, makeRequest(map[string]any{"path": path, "mode": "rename"}))
	output = parseOutput(t, result)
	if output["imported"] != float64(2) {
		t.Errorf("imported = %v, want 2", output["imported"])
	}

	result, _ = h.HandleDraftImport(ctx, makeRequest(map[string]any{"path": filepath.Join(tmpDir, "nope.jsonl")}))
	assertErrorCode(t, result, string(errors.ErrFileNotFound))

	result, _ = h.HandleDraftExport(ctx, makeRequest(map[string]any{"path": "/etc/backup.jsonl"}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))
}

func TestHandleExportOutline(t *testing.T) {
	store, cfg, tmpDir := testSetup(t)
	h := NewHandlers(store, cfg)
	ctx := context.Background()

	path := filepath.Join(tmpDir, "deck.json")
	result, _ := h.HandleExportOutline(ctx, makeRequest(map[string]any{
		"outline": object(t, brokenOutline),
		"path":    path,
	}))
	assertErrorCode(t, result, string(errors.ErrExportBlocked))
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("blocked export wrote a file")
	}

	result, _ = h.HandleExportOutline(ctx, makeRequest(map[string]any{
		"outline": object(t, compliantOutline),
		"path":    path,
	}))
	output := parseOutput(t, result)
	if output["path"] != path || output["slides"] != float64(12) {
		t.Errorf("export output = %v", output)
	}
}

func TestServerRegistration(t *testing.T) {
	store, cfg, _ := testSetup(t)

	s := NewServer(store, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"outline_check",
		"outline_schema",
		"outline_export",
		"slide_elements",
		"slide_sync",
		"geometry_align",
		"geometry_distribute",
		"geometry_match_size",
		"geometry_snap",
		"draft_save",
		"draft_get",
		"draft_list",
		"draft_delete",
		"draft_purge",
		"draft_export",
		"draft_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	store, cfg, _ := testSetup(t)

	cfg.DisabledTools = []string{"draft_purge", "draft_delete", "draft_delete"}
	tools := NewServer(store, cfg, "test").ListTools()

	if len(tools) != 14 {
		t.Errorf("registered tool count = %d, want 14", len(tools))
	}
	for _, name := range []string{"draft_purge", "draft_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	store, cfg, _ := testSetup(t)

	cfg.DisabledTypes = []string{"draft", "geometry"}
	tools := NewServer(store, cfg, "test").ListTools()

	if len(tools) != 5 {
		t.Errorf("registered tool count = %d, want 5", len(tools))
	}
	for name := range tools {
		if typ := GetTypeForTool(name); typ == "draft" || typ == "geometry" {
			t.Errorf("tool %q of a disabled type is registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	store, cfg, _ := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	if tools := NewServer(store, cfg, "test").ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabled(t *testing.T) {
	if unknown := ValidateDisabledTools([]string{"draft_purge", "fake_tool"}); len(unknown) != 1 || unknown[0] != "fake_tool" {
		t.Errorf("ValidateDisabledTools = %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"draft", "theme"}); len(unknown) != 1 || unknown[0] != "theme" {
		t.Errorf("ValidateDisabledTypes = %v", unknown)
	}
	if unknown := ValidateDisabledTools(AllToolNames()); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	for _, name := range AllToolNames() {
		found := false
		for _, typ := range KnownTypes {
			if GetTypeForTool(name) == typ {
				found = true
			}
		}
		if !found {
			t.Errorf("tool %q has no known type", name)
		}
	}
}

func TestDecode_StringEncodedInvalid(t *testing.T) {
	_, err := decode[CheckRequest](makeRequest(map[string]any{"outline": `{"slides": [`}))
	if err == nil || !strings.Contains(err.Error(), "outline") {
		t.Errorf("expected outline decode error, got: %v", err)
	}

	// Plain strings that are not JSON documents pass through untouched.
	req, err := decode[DraftIDRequest](makeRequest(map[string]any{"id": "[draft]"}))
	if err != nil || req.ID != "[draft]" {
		t.Errorf("id = %q, err = %v", req.ID, err)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	errObj := errorObject(t, r)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
	if strings.Contains(errObj["message"].(string), "secret") {
		t.Fatal("INTERNAL message leaked the cause")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	r := errorResult(fmt.Errorf("slides[2]: %w", errors.NewInvalidRequest("layout is required")))
	errObj := errorObject(t, r)

	if errObj["code"] != string(errors.ErrInvalidRequest) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInvalidRequest)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "slides[2]") {
		t.Errorf("message should contain wrapper context, got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("abc")))

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) || errObj["status"] != float64(500) {
		t.Errorf("error = %v", errObj)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected IsError=true")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatal("no error object in payload")
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %v, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
