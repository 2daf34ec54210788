package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func boolPtr(b bool) *bool { return &b }

var boxItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{"type": "string"},
		"x":  map[string]any{"type": "number"},
		"y":  map[string]any{"type": "number"},
		"w":  map[string]any{"type": "number"},
		"h":  map[string]any{"type": "number"},
	},
	"required": []string{"id", "x", "y", "w", "h"},
}

var elementItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":      map[string]any{"type": "string"},
		"type":    map[string]any{"type": "string", "enum": []string{"text", "image", "shape", "chart", "table", "group"}},
		"x":       map[string]any{"type": "number"},
		"y":       map[string]any{"type": "number"},
		"w":       map[string]any{"type": "number"},
		"h":       map[string]any{"type": "number"},
		"content": map[string]any{"type": "string"},
	},
	"required": []string{"id", "type"},
}

var checkToolDef = mcp.NewTool("outline_check",
	mcp.WithDescription("Validate a slide outline against the compliance rules. Findings are returned as data: errors block export, warnings and suggestions do not."),
	mcp.WithObject("outline", mcp.Description("The outline: {title, strategy_name, slides: [...]}. See outline_schema."), mcp.Required()),
	mcp.WithBoolean("report", mcp.Description("Also return a markdown report (default false)")),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var schemaToolDef = mcp.NewTool("outline_schema",
	mcp.WithDescription("Return the JSON Schema for outlines and the list of known slide layouts."),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var exportOutlineToolDef = mcp.NewTool("outline_export",
	mcp.WithDescription("Write a compliant outline to a .json file. Refused with EXPORT_BLOCKED while compliance errors remain."),
	mcp.WithObject("outline", mcp.Description("The outline to export"), mcp.Required()),
	mcp.WithString("path", mcp.Description("Target .json path (default: ~/.slate/exports/<title>-<timestamp>.json)")),
)

var elementsToolDef = mcp.NewTool("slide_elements",
	mcp.WithDescription("Generate the positioned canvas elements for one slide."),
	mcp.WithObject("slide", mcp.Description("The slide object, including its layout"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var syncToolDef = mcp.NewTool("slide_sync",
	mcp.WithDescription("Re-derive a slide from an edited canvas. Unknown element IDs are kept as custom elements; malformed content leaves fields unchanged."),
	mcp.WithObject("slide", mcp.Description("The slide the canvas was generated from"), mcp.Required()),
	mcp.WithArray("elements", mcp.Description("The edited canvas elements"), mcp.Items(elementItems), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var alignToolDef = mcp.NewTool("geometry_align",
	mcp.WithDescription("Align boxes to a shared edge or midpoint of their bounding box."),
	mcp.WithArray("boxes", mcp.Description("Boxes to align"), mcp.Items(boxItems), mcp.Required()),
	mcp.WithString("edge", mcp.Enum("left", "right", "top", "bottom", "center", "middle"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var distributeToolDef = mcp.NewTool("geometry_distribute",
	mcp.WithDescription("Space three or more boxes evenly; the outermost boxes stay in place."),
	mcp.WithArray("boxes", mcp.Description("Boxes to distribute"), mcp.Items(boxItems), mcp.Required()),
	mcp.WithString("axis", mcp.Enum("horizontal", "vertical"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var matchSizeToolDef = mcp.NewTool("geometry_match_size",
	mcp.WithDescription("Copy one box's width and/or height onto every box."),
	mcp.WithArray("boxes", mcp.Description("Boxes to resize"), mcp.Items(boxItems), mcp.Required()),
	mcp.WithString("dimension", mcp.Enum("width", "height", "both"), mcp.Required()),
	mcp.WithString("target_id", mcp.Description("ID of the box whose size is copied"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var snapToolDef = mcp.NewTool("geometry_snap",
	mcp.WithDescription("Round box positions to the nearest grid multiple."),
	mcp.WithArray("boxes", mcp.Description("Boxes to snap"), mcp.Items(boxItems), mcp.Required()),
	mcp.WithNumber("grid", mcp.Description("Grid size in slide units, > 0"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var draftSaveToolDef = mcp.NewTool("draft_save",
	mcp.WithDescription("Save a recoverable draft. Saving an existing id replaces it."),
	mcp.WithString("id", mcp.Description("Draft key (default: a new ULID)")),
	mcp.WithString("type", mcp.Description("Draft type (default: outline)")),
	mcp.WithString("title", mcp.Description("Label shown in recovery prompts (default: the outline title)")),
	mcp.WithObject("data", mcp.Description("The document; outline drafts must be outline objects"), mcp.Required()),
)

var draftGetToolDef = mcp.NewTool("draft_get",
	mcp.WithDescription("Fetch a draft by id."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var draftListToolDef = mcp.NewTool("draft_list",
	mcp.WithDescription("List drafts newest first, without their data."),
	mcp.WithString("type", mcp.Description("Filter by draft type")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip (default 0)")),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
)

var draftDeleteToolDef = mcp.NewTool("draft_delete",
	mcp.WithDescription("Discard a draft by id."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
)

var draftPurgeToolDef = mcp.NewTool("draft_purge",
	mcp.WithDescription("Permanently delete drafts last saved more than N days ago."),
	mcp.WithNumber("older_than_days", mcp.Description("Age threshold in days, > 0"), mcp.Required()),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
)

var draftExportToolDef = mcp.NewTool("draft_export",
	mcp.WithDescription("Back up drafts to a JSONL file."),
	mcp.WithString("path", mcp.Description("Target .jsonl path (default: ~/.slate/exports/<type|all>-<timestamp>.jsonl)")),
	mcp.WithString("type", mcp.Description("Only export drafts of this type")),
)

var draftImportToolDef = mcp.NewTool("draft_import",
	mcp.WithDescription("Restore drafts from a JSONL backup."),
	mcp.WithString("path", mcp.Description("Backup .jsonl path"), mcp.Required()),
	mcp.WithString("mode", mcp.Enum("error", "replace", "rename"), mcp.Description("Collision handling (default error: write nothing on any collision)")),
)
