package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/geometry"
	"github.com/hpungsan/slate/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store drafts.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store drafts.Store, cfg *config.Config) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handlers{store: store, cfg: cfg}
}

// Request types for each tool

// CheckRequest represents the arguments for outline_check.
type CheckRequest struct {
	Outline json.RawMessage `json:"outline"`
	Report  bool            `json:"report,omitempty"`
}

// ExportOutlineRequest represents the arguments for outline_export.
type ExportOutlineRequest struct {
	Outline json.RawMessage `json:"outline"`
	Path    string          `json:"path,omitempty"`
}

// ElementsRequest represents the arguments for slide_elements.
type ElementsRequest struct {
	Slide json.RawMessage `json:"slide"`
}

// SyncRequest represents the arguments for slide_sync.
type SyncRequest struct {
	Slide    json.RawMessage `json:"slide"`
	Elements []deck.Element  `json:"elements"`
}

// AlignRequest represents the arguments for geometry_align.
type AlignRequest struct {
	Boxes []geometry.Box `json:"boxes"`
	Edge  string         `json:"edge"`
}

// DistributeRequest represents the arguments for geometry_distribute.
type DistributeRequest struct {
	Boxes []geometry.Box `json:"boxes"`
	Axis  string         `json:"axis"`
}

// MatchSizeRequest represents the arguments for geometry_match_size.
type MatchSizeRequest struct {
	Boxes     []geometry.Box `json:"boxes"`
	Dimension string         `json:"dimension"`
	TargetID  string         `json:"target_id"`
}

// SnapRequest represents the arguments for geometry_snap.
type SnapRequest struct {
	Boxes []geometry.Box `json:"boxes"`
	Grid  float64        `json:"grid"`
}

// DraftSaveRequest represents the arguments for draft_save.
type DraftSaveRequest struct {
	ID    string          `json:"id,omitempty"`
	Type  string          `json:"type,omitempty"`
	Title string          `json:"title,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// DraftIDRequest represents the arguments for draft_get and draft_delete.
type DraftIDRequest struct {
	ID string `json:"id"`
}

// DraftListRequest represents the arguments for draft_list.
type DraftListRequest struct {
	Type   string `json:"type,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// DraftPurgeRequest represents the arguments for draft_purge.
type DraftPurgeRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

// DraftExportRequest represents the arguments for draft_export.
type DraftExportRequest struct {
	Path string `json:"path,omitempty"`
	Type string `json:"type,omitempty"`
}

// DraftImportRequest represents the arguments for draft_import.
type DraftImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleCheck handles the outline_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Check(h.cfg, ops.CheckInput{Outline: input.Outline, Report: input.Report}))
}

// HandleSchema handles the outline_schema tool call.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Schema())
}

// HandleExportOutline handles the outline_export tool call.
func (h *Handlers) HandleExportOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportOutlineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.ExportOutline(ctx, h.cfg, ops.ExportOutlineInput{Outline: input.Outline, Path: input.Path}))
}

// HandleElements handles the slide_elements tool call.
func (h *Handlers) HandleElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ElementsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Elements(h.cfg, ops.ElementsInput{Slide: input.Slide}))
}

// HandleSync handles the slide_sync tool call.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SyncRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Sync(h.cfg, ops.SyncInput{Slide: input.Slide, Elements: input.Elements}))
}

// HandleAlign handles the geometry_align tool call.
func (h *Handlers) HandleAlign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AlignRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Align(ops.AlignInput{Boxes: input.Boxes, Edge: input.Edge}))
}

// HandleDistribute handles the geometry_distribute tool call.
func (h *Handlers) HandleDistribute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DistributeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Distribute(ops.DistributeInput{Boxes: input.Boxes, Axis: input.Axis}))
}

// HandleMatchSize handles the geometry_match_size tool call.
func (h *Handlers) HandleMatchSize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MatchSizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.MatchSize(ops.MatchSizeInput{
		Boxes:     input.Boxes,
		Dimension: input.Dimension,
		TargetID:  input.TargetID,
	}))
}

// HandleSnap handles the geometry_snap tool call.
func (h *Handlers) HandleSnap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Snap(ops.SnapInput{Boxes: input.Boxes, Grid: input.Grid}))
}

// HandleDraftSave handles the draft_save tool call.
func (h *Handlers) HandleDraftSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.DraftSave(ctx, h.store, ops.DraftSaveInput{
		ID:    input.ID,
		Type:  input.Type,
		Title: input.Title,
		Data:  input.Data,
	}))
}

// HandleDraftGet handles the draft_get tool call.
func (h *Handlers) HandleDraftGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.DraftGet(ctx, h.store, ops.DraftGetInput{ID: input.ID}))
}

// HandleDraftList handles the draft_list tool call.
func (h *Handlers) HandleDraftList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.DraftList(ctx, h.store, ops.DraftListInput{
		Type:   input.Type,
		Limit:  input.Limit,
		Offset: input.Offset,
	}))
}

// HandleDraftDelete handles the draft_delete tool call.
func (h *Handlers) HandleDraftDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.DraftDelete(ctx, h.store, ops.DraftDeleteInput{ID: input.ID}))
}

// HandleDraftPurge handles the draft_purge tool call.
func (h *Handlers) HandleDraftPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftPurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.DraftPurge(ctx, h.store, ops.DraftPurgeInput{OlderThanDays: input.OlderThanDays}))
}

// HandleDraftExport handles the draft_export tool call.
func (h *Handlers) HandleDraftExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.ExportDrafts(ctx, h.store, h.cfg, ops.ExportInput{Path: input.Path, Type: input.Type}))
}

// HandleDraftImport handles the draft_import tool call.
func (h *Handlers) HandleDraftImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.ImportDrafts(ctx, h.store, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	}))
}

// Result helpers

// respond converts an operation's (output, error) pair into a tool result.
func respond[T any](out T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var slateErr *errors.SlateError
	if stderrors.As(err, &slateErr) {
		msg := slateErr.Message
		// Keep context added by wrappers (e.g. "slides[2]: ...").
		if err != error(slateErr) {
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    slateErr.Code,
			"message": msg,
			"status":  slateErr.Status,
		}
		if slateErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if slateErr.Details != nil {
			errorObj["details"] = slateErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
