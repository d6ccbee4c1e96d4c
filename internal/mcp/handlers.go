package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tylertestin/InnovationAward/internal/config"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/ingest"
	"github.com/tylertestin/InnovationAward/internal/model"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	eng *engine.Engine
	pl  *ingest.Pipeline
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, pl *ingest.Pipeline, cfg *config.Config) *Handlers {
	return &Handlers{eng: eng, pl: pl, cfg: cfg}
}

// Request types for each tool

// UpsertRequest represents the arguments for stakeholder_upsert.
type UpsertRequest struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// NoteRequest represents the arguments for stakeholder_note.
type NoteRequest struct {
	StakeholderID string `json:"stakeholder_id"`
	Text          string `json:"text"`
}

// TimelineRequest represents the arguments for timeline_list.
type TimelineRequest struct {
	Limit int `json:"limit,omitempty"`
}

// PageCaptureRequest represents the arguments for page_capture.
type PageCaptureRequest struct {
	Title      string `json:"title,omitempty"`
	TextSample string `json:"text_sample"`
}

// SlideCaptureRequest represents the arguments for slide_capture.
type SlideCaptureRequest struct {
	SlideText string `json:"slide_text"`
}

// HandleUpsert handles the stakeholder_upsert tool call.
func (h *Handlers) HandleUpsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	st := h.pl.AddStakeholder(input.Email, input.DisplayName)
	return successResult(st)
}

// HandleNote handles the stakeholder_note tool call.
func (h *Handlers) HandleNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.pl.AddNote(input.StakeholderID, input.Text); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"stakeholder_id": input.StakeholderID})
}

// HandleList handles the stakeholder_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := h.eng.Snapshot()
	return successResult(map[string]any{"stakeholders": s.Stakeholders})
}

// HandleTimeline handles the timeline_list tool call.
func (h *Handlers) HandleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TimelineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	s := h.eng.Snapshot()
	items := s.Interactions
	if len(items) > limit {
		items = items[:limit]
	}
	return successResult(map[string]any{"interactions": items})
}

// HandlePageCapture handles the page_capture tool call. The surface is
// always the document panel: that is the only place this tool runs.
func (h *Handlers) HandlePageCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageCaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.pl.CapturePage(ingest.PageCapture{
		Title:      input.Title,
		TextSample: input.TextSample,
	}, ingest.ExternalOnly(h.cfg.InternalDomain), model.SurfaceDocPanel)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(rec)
}

// HandleSlideCapture handles the slide_capture tool call.
func (h *Handlers) HandleSlideCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlideCaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.pl.CaptureSlide(ingest.SlideCapture{SlideText: input.SlideText}, model.SurfaceSlidePanel)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(rec)
}

// HandleExport handles the state_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := h.eng.ExportState()
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TrackerError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
