// Package impact predicts per-stakeholder reactions to slide content by
// calling a chat-completions API. The core never validates the model's
// reasoning, only that each returned row resolves to a known stakeholder.
package impact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/model"
)

// Impact is one predicted stakeholder reaction.
type Impact struct {
	StakeholderID string `json:"stakeholderId"`
	Reaction      string `json:"reaction"` // "green" or "red"
	Rationale     string `json:"rationale,omitempty"`
}

// Client calls the prediction API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint. apiKey may be empty for
// endpoints that do not require one.
func NewClient(baseURL, apiKey, modelName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      modelName,
		httpClient: &http.Client{},
	}
}

// chat-completions request/response wire types (only the fields used).
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// impactEnvelope is the schema the model is asked to produce.
type impactEnvelope struct {
	Impacts []Impact `json:"impacts"`
}

// Predict asks the model how each stakeholder will react to the slide text,
// given recent email interactions for context. Returns the raw rows; callers
// run them through FilterKnown before display.
func (c *Client) Predict(ctx context.Context, stakeholders []model.Stakeholder, slideText string, recentEmails []model.Interaction) ([]Impact, error) {
	if strings.TrimSpace(slideText) == "" {
		return nil, errors.NewInvalidRequest("slide text is empty")
	}

	prompt := buildPrompt(stakeholders, slideText, recentEmails)

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamFailure(fmt.Sprintf("impact API unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamFailure(fmt.Sprintf("impact API read: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewUpstreamFailure(fmt.Sprintf("impact API returned status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, errors.NewUpstreamFailure(fmt.Sprintf("impact API response undecodable: %v", err))
	}
	if len(chat.Choices) == 0 {
		return nil, errors.NewUpstreamFailure("impact API returned no choices")
	}

	jsonStr, err := extractJSON(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, errors.NewUpstreamFailure(err.Error())
	}

	var env impactEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return nil, errors.NewUpstreamFailure(fmt.Sprintf("impact payload undecodable: %v", err))
	}
	return env.Impacts, nil
}

// FilterKnown drops rows whose stakeholder id does not resolve in the
// snapshot (expected noise from stale data, not an error) and normalizes
// the reaction: anything that is not exactly "red" becomes "green".
func FilterKnown(impacts []Impact, s *model.AppState) []Impact {
	out := make([]Impact, 0, len(impacts))
	for _, imp := range impacts {
		if s.FindStakeholder(imp.StakeholderID) == nil {
			continue
		}
		if imp.Reaction != "red" {
			imp.Reaction = "green"
		}
		out = append(out, imp)
	}
	return out
}

// buildPrompt assembles the prediction prompt.
func buildPrompt(stakeholders []model.Stakeholder, slideText string, recentEmails []model.Interaction) string {
	var b strings.Builder
	b.WriteString("You are a stakeholder relationship analyst.\n\n")
	b.WriteString("Given the stakeholder list, recent email interactions, and slide content below, ")
	b.WriteString("predict how each stakeholder will react to the slide.\n\nStakeholders:\n")
	for _, st := range stakeholders {
		fmt.Fprintf(&b, "- id=%s name=%q email=%q\n", st.ID, st.DisplayName, st.Email)
	}
	b.WriteString("\nRecent emails:\n")
	for _, in := range recentEmails {
		if in.Type != model.InteractionEmail {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", in.OccurredAt, in.Title)
	}
	b.WriteString("\nSlide content:\n")
	b.WriteString(slideText)
	b.WriteString(`

Output ONLY a valid JSON object matching this exact schema:
{
  "impacts": [
    {"stakeholderId": "<id from the list>", "reaction": "green" | "red", "rationale": "<one sentence>"}
  ]
}

Rules:
- Include only stakeholders from the list, referenced by their id
- "red" means the stakeholder is likely to push back; everything else is "green"
- Output ONLY the JSON, no markdown, no explanations`)
	return b.String()
}

// extractJSON returns the substring between the first "{" and the last "}".
// Models wrap JSON in prose often enough that this is worth doing up front.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("response contains no JSON object")
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("response does not contain valid JSON")
	}
	return candidate, nil
}
