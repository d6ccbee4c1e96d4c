// Package mcp exposes the tracker to embedded panels over the Model Context
// Protocol (stdio transport). Panels are thin: every tool call funnels into
// the same mutation pipeline the CLI uses.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tylertestin/InnovationAward/internal/config"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/ingest"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"stakeholder_upsert": {
		def:     upsertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpsert },
	},
	"stakeholder_note": {
		def:     noteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNote },
	},
	"stakeholder_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"timeline_list": {
		def:     timelineToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTimeline },
	},
	"page_capture": {
		def:     pageCaptureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageCapture },
	},
	"slide_capture": {
		def:     slideCaptureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSlideCapture },
	},
	"state_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
}

// Tool definitions

var upsertToolDef = mcp.NewTool("stakeholder_upsert",
	mcp.WithDescription("Create or update a stakeholder, deduplicated by email (case-insensitive). An empty email always creates a new stakeholder."),
	mcp.WithString("email", mcp.Description("Email address; the dedupe key when present")),
	mcp.WithString("display_name", mcp.Description("Display name; only replaces an existing name when non-empty")),
)

var noteToolDef = mcp.NewTool("stakeholder_note",
	mcp.WithDescription("Attach a timestamped free-text note to a stakeholder."),
	mcp.WithString("stakeholder_id", mcp.Required(), mcp.Description("Stakeholder id")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
)

var listToolDef = mcp.NewTool("stakeholder_list",
	mcp.WithDescription("List all stakeholders, most recently created first."),
)

var timelineToolDef = mcp.NewTool("timeline_list",
	mcp.WithDescription("List interactions, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50)")),
)

var pageCaptureToolDef = mcp.NewTool("page_capture",
	mcp.WithDescription("Record a captured document page as a note interaction. Email addresses in the text become external stakeholders."),
	mcp.WithString("title", mcp.Description("Document title")),
	mcp.WithString("text_sample", mcp.Required(), mcp.Description("Extracted page text")),
)

var slideCaptureToolDef = mcp.NewTool("slide_capture",
	mcp.WithDescription("Record a captured slide as a note interaction."),
	mcp.WithString("slide_text", mcp.Required(), mcp.Description("Extracted slide text")),
)

var exportToolDef = mcp.NewTool("state_export",
	mcp.WithDescription("Export the full tracker state as pretty-printed JSON."),
)

// NewServer creates a new MCP server with tracker tools registered.
func NewServer(eng *engine.Engine, pl *ingest.Pipeline, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"award",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(eng, pl, cfg)

	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(eng *engine.Engine, pl *ingest.Pipeline, cfg *config.Config, version string) error {
	s := NewServer(eng, pl, cfg, version)
	return server.ServeStdio(s)
}
