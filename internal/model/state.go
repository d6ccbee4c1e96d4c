package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeState parses a persisted or imported snapshot. Reads are tolerant:
// absent stakeholders/interactions decode to empty lists, never to an error.
// Only structurally invalid JSON is rejected.
func DecodeState(raw []byte) (*AppState, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewState(), nil
	}

	var s AppState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	if s.Stakeholders == nil {
		s.Stakeholders = []Stakeholder{}
	}
	if s.Interactions == nil {
		s.Interactions = []Interaction{}
	}
	return &s, nil
}

// EncodeState serializes a snapshot for the keyed local slot and the sync
// endpoint. Compact form; use ExportState for the user-facing file.
func EncodeState(s *AppState) ([]byte, error) {
	return json.Marshal(s)
}

// ExportState serializes a snapshot verbatim as pretty-printed JSON, the
// import/export file contract.
func ExportState(s *AppState) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
