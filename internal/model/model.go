// Package model defines the tracked entities and the aggregate state that is
// the unit of persistence and sync.
package model

// InteractionType is the closed set of interaction kinds.
type InteractionType string

const (
	InteractionEmail   InteractionType = "email"
	InteractionMeeting InteractionType = "meeting"
	InteractionNote    InteractionType = "note"
)

// Surface identifies which surface produced a mutation. It is a closed set;
// every branch on it should handle all three values.
type Surface string

const (
	// SurfaceWeb is the browser tab UI.
	SurfaceWeb Surface = "web"

	// SurfaceDocPanel is the embedded document (word processor) panel.
	SurfaceDocPanel Surface = "doc-panel"

	// SurfaceSlidePanel is the embedded slide deck panel.
	SurfaceSlidePanel Surface = "slide-panel"
)

// KnownSurface reports whether s is one of the closed surface values.
func KnownSurface(s Surface) bool {
	switch s {
	case SurfaceWeb, SurfaceDocPanel, SurfaceSlidePanel:
		return true
	}
	return false
}

// Note is a timestamped free-text note attached to a stakeholder.
// Note lists are ordered newest-first.
type Note struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// Stakeholder is a tracked contact. At most one stakeholder exists per
// normalized email; stakeholders without an email are never deduplicated
// against each other.
type Stakeholder struct {
	// ID is a ULID assigned at creation, never reused.
	ID string `json:"id"`

	// DisplayName is required and mutable.
	DisplayName string `json:"displayName"`

	// Email is optional. When present it is the case-insensitive unique
	// key among stakeholders that have one.
	Email string `json:"email,omitempty"`

	// Tags is a free-form set of labels.
	Tags []string `json:"tags,omitempty"`

	// Notes is ordered newest-first.
	Notes []Note `json:"notes,omitempty"`

	// CreatedAt is immutable after creation.
	CreatedAt string `json:"createdAt"`

	// UpdatedAt is refreshed on any field change.
	UpdatedAt string `json:"updatedAt"`

	// LastInteractionAt is refreshed only by interaction linkage, never by
	// plain field edits.
	LastInteractionAt string `json:"lastInteractionAt,omitempty"`
}

// Provenance records which surface and which external source item produced
// an interaction. SourceItemID exists for dedupe/debugging only; nothing in
// the engine keys on it.
type Provenance struct {
	Surface      Surface `json:"surface"`
	SourceItemID string  `json:"sourceItemId,omitempty"`
}

// Interaction is an immutable, timestamped record of contact. Once appended
// to the log it is never edited or deleted. Participants are held by id only;
// a dangling participant id means "unknown participant", not corruption.
type Interaction struct {
	// ID is a ULID assigned at append time.
	ID string `json:"id"`

	Type InteractionType `json:"type"`

	// OccurredAt is caller-supplied and may be backdated (e.g. an email's
	// receipt time).
	OccurredAt string `json:"occurredAt"`

	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`

	// ParticipantIDs reference stakeholders by id, never by object.
	ParticipantIDs []string `json:"participantIds,omitempty"`

	Provenance Provenance `json:"provenance"`

	// NextActions are display-only suggestion strings.
	NextActions []string `json:"nextActions,omitempty"`
}

// AppState is the aggregate root: the whole registry plus the whole log.
// It is the unit of persistence and the unit of reconciliation; there is no
// finer-grained sync. Snapshots are never mutated in place; every mutation
// derives a new snapshot from the previous one.
type AppState struct {
	Stakeholders []Stakeholder `json:"stakeholders"`
	Interactions []Interaction `json:"interactions"`

	// UpdatedAt is the aggregate stamp, refreshed on every mutation.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// NewState returns an empty snapshot.
func NewState() *AppState {
	return &AppState{
		Stakeholders: []Stakeholder{},
		Interactions: []Interaction{},
	}
}

// FindStakeholder returns the stakeholder with the given id, or nil.
func (s *AppState) FindStakeholder(id string) *Stakeholder {
	for i := range s.Stakeholders {
		if s.Stakeholders[i].ID == id {
			return &s.Stakeholders[i]
		}
	}
	return nil
}

// Clone returns a snapshot that shares no slice headers with s. Element
// values are copied; their inner slices are shared, which is safe because
// mutations always build fresh inner slices instead of writing through them.
func (s *AppState) Clone() *AppState {
	next := &AppState{
		Stakeholders: make([]Stakeholder, len(s.Stakeholders)),
		Interactions: make([]Interaction, len(s.Interactions)),
		UpdatedAt:    s.UpdatedAt,
	}
	copy(next.Stakeholders, s.Stakeholders)
	copy(next.Interactions, s.Interactions)
	return next
}
