// Package store implements the entity store: pure snapshot-in, snapshot-out
// mutations over the stakeholder registry and the interaction log.
//
// Every function derives a new snapshot from the input snapshot and never
// writes through it. None of them return errors for structurally valid input;
// invalid references and blank text degrade to no-ops.
package store

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/model"
)

// FallbackDisplayName is used when a stakeholder is created without a name.
const FallbackDisplayName = "Unknown Stakeholder"

// UpsertStakeholderByEmail looks a stakeholder up by normalized email and
// creates one when the lookup misses.
//
// An empty email always creates a new stakeholder; there is no identity to
// dedupe on. A non-empty email that matches an existing stakeholder returns
// that identity with the display name replaced only if a non-empty new name
// was supplied; email, notes, and tags are preserved. Upsert-by-email is the
// only deduplication mechanism in the system: exact, case-insensitive address
// match, no fuzzy name matching.
func UpsertStakeholderByEmail(state *model.AppState, clk clock.Clock, email, displayName string) (*model.AppState, model.Stakeholder) {
	norm := model.NormalizeEmail(email)
	name := strings.TrimSpace(displayName)

	if norm != "" {
		for i := range state.Stakeholders {
			if model.NormalizeEmail(state.Stakeholders[i].Email) != norm {
				continue
			}
			existing := state.Stakeholders[i]
			if name != "" {
				existing.DisplayName = name
			}
			existing.UpdatedAt = clk.Now()

			next := state.Clone()
			next.Stakeholders[i] = existing
			return next, existing
		}
	}

	if name == "" {
		name = FallbackDisplayName
	}
	now := clk.Now()
	created := model.Stakeholder{
		ID:          newID(),
		DisplayName: name,
		Email:       norm,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := state.Clone()
	next.Stakeholders = append([]model.Stakeholder{created}, next.Stakeholders...)
	return next, created
}

// AddNote prepends a timestamped note to a stakeholder's note list and
// refreshes its update stamp. Blank text or an unresolvable id returns the
// input snapshot unchanged.
func AddNote(state *model.AppState, clk clock.Clock, stakeholderID, text string) *model.AppState {
	text = strings.TrimSpace(text)
	if text == "" {
		return state
	}

	for i := range state.Stakeholders {
		if state.Stakeholders[i].ID != stakeholderID {
			continue
		}
		now := clk.Now()
		updated := state.Stakeholders[i]
		updated.Notes = append([]model.Note{{Text: text, CreatedAt: now}}, updated.Notes...)
		updated.UpdatedAt = now

		next := state.Clone()
		next.Stakeholders[i] = updated
		return next
	}

	return state
}

// Draft is an interaction before the store assigns it an id.
type Draft struct {
	Type model.InteractionType

	// OccurredAt may be backdated. Empty falls back to the current instant.
	OccurredAt string

	Title   string
	Summary string

	// ParticipantIDs may reference unknown stakeholders; those are ignored.
	ParticipantIDs []string

	Provenance  model.Provenance
	NextActions []string
}

// AddInteraction assigns a fresh id, prepends the record to the interaction
// log, and refreshes every known participant's last-interaction stamp to the
// interaction's occurrence time and its update stamp to now. Unknown
// participant ids are silently ignored.
func AddInteraction(state *model.AppState, clk clock.Clock, d Draft) (*model.AppState, model.Interaction) {
	now := clk.Now()

	occurredAt := d.OccurredAt
	if model.ParseStamp(occurredAt).IsZero() {
		occurredAt = now
	}

	rec := model.Interaction{
		ID:             newID(),
		Type:           d.Type,
		OccurredAt:     occurredAt,
		Title:          d.Title,
		Summary:        d.Summary,
		ParticipantIDs: dedupeIDs(d.ParticipantIDs),
		Provenance:     d.Provenance,
		NextActions:    d.NextActions,
	}

	next := state.Clone()
	next.Interactions = append([]model.Interaction{rec}, next.Interactions...)

	for _, pid := range rec.ParticipantIDs {
		for i := range next.Stakeholders {
			if next.Stakeholders[i].ID != pid {
				continue
			}
			updated := next.Stakeholders[i]
			updated.LastInteractionAt = occurredAt
			updated.UpdatedAt = now
			next.Stakeholders[i] = updated
			break
		}
	}

	return next, rec
}

// dedupeIDs drops duplicates while preserving first-seen order.
func dedupeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// newID generates a new ULID.
func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
