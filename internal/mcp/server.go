package mcp

import (
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/drafts"
)

// KnownTypes lists the tool groups that disabled_types may name.
var KnownTypes = []string{"outline", "slide", "geometry", "draft"}

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// tools is the full tool set in registration order. A tool's group is the
// prefix of its name up to the first underscore.
var tools = []toolEntry{
	{checkToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCheck }},
	{schemaToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSchema }},
	{exportOutlineToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportOutline }},
	{elementsToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElements }},
	{syncToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSync }},
	{alignToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleAlign }},
	{distributeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDistribute }},
	{matchSizeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleMatchSize }},
	{snapToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnap }},
	{draftSaveToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftSave }},
	{draftGetToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftGet }},
	{draftListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftList }},
	{draftDeleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftDelete }},
	{draftPurgeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftPurge }},
	{draftExportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftExport }},
	{draftImportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftImport }},
}

// AllToolNames returns every tool name in registration order.
func AllToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.def.Name
	}
	return names
}

// ValidateDisabledTools returns the entries of names that are not tools.
func ValidateDisabledTools(names []string) []string {
	return unknownNames(names, AllToolNames())
}

// ValidateDisabledTypes returns the entries of names that are not tool groups.
func ValidateDisabledTypes(names []string) []string {
	return unknownNames(names, KnownTypes)
}

func unknownNames(names, known []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the group of a tool ("draft_save" -> "draft"), or ""
// when the name has no group prefix.
func GetTypeForTool(toolName string) string {
	typ, _, ok := strings.Cut(toolName, "_")
	if !ok {
		return ""
	}
	return typ
}

// enabled reports whether a tool survives the disabled_tools and
// disabled_types settings.
func enabled(name string, cfg *config.Config) bool {
	return !slices.Contains(cfg.DisabledTools, name) &&
		!slices.Contains(cfg.DisabledTypes, GetTypeForTool(name))
}

// NewServer creates an MCP server with every enabled Slate tool registered.
func NewServer(store drafts.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer("slate", version, server.WithToolCapabilities(true))

	h := NewHandlers(store, cfg)
	for _, t := range tools {
		if enabled(t.def.Name, cfg) {
			s.AddTool(t.def, t.handler(h))
		}
	}
	return s
}

// Run serves the tool set over stdio until stdin closes.
func Run(store drafts.Store, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(store, cfg, version))
}
