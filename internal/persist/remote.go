package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tylertestin/InnovationAward/internal/model"
)

// envelope is the wire format of the sync endpoint: the state is optional on
// reads, and its absence means "nothing to sync".
type envelope struct {
	State *model.AppState `json:"state,omitempty"`
}

// HTTPRemote talks to the sync endpoint: GET returns {state?}, PUT accepts
// {state}. No per-request timeout beyond the client's defaults.
type HTTPRemote struct {
	url    string
	client *http.Client
}

// NewHTTPRemote creates a remote for the given endpoint URL.
func NewHTTPRemote(url string) *HTTPRemote {
	return &HTTPRemote{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{},
	}
}

// Fetch reads the remote snapshot. An empty body or an envelope without a
// state field returns (nil, nil).
func (r *HTTPRemote) Fetch(ctx context.Context) (*model.AppState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sync fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sync fetch: read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("sync fetch: decode body: %w", err)
	}
	if env.State == nil {
		return nil, nil
	}
	if env.State.Stakeholders == nil {
		env.State.Stakeholders = []model.Stakeholder{}
	}
	if env.State.Interactions == nil {
		env.State.Interactions = []model.Interaction{}
	}
	return env.State, nil
}

// Push replaces the remote snapshot. The endpoint is expected to be
// idempotent; no response body is required.
func (r *HTTPRemote) Push(ctx context.Context, s *model.AppState) error {
	payload, err := json.Marshal(envelope{State: s})
	if err != nil {
		return fmt.Errorf("sync push: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sync push: unexpected status %d", resp.StatusCode)
	}
	return nil
}
