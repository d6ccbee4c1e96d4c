// Package ingest is the single path every external signal takes into the
// entity store: extract participant identities, filter them through the
// caller's inclusion predicate, upsert the survivors, then append one
// interaction per external record. Routing every flow through the same steps
// keeps stakeholder dedupe and interaction linkage identical regardless of
// whether the signal came from a CSV row, a captured page, or a manual note.
package ingest

import (
	"fmt"
	"strings"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/model"
	"github.com/tylertestin/InnovationAward/internal/outlook"
	"github.com/tylertestin/InnovationAward/internal/store"
)

// MaxBatchRecords caps how many records of a batch are processed. The
// remainder of a larger file is dropped, a deliberate responsiveness
// tradeoff, reported to the caller through BatchResult.Truncated.
const MaxBatchRecords = 200

// Pipeline funnels ingestion flows into the engine.
type Pipeline struct {
	eng *engine.Engine
	clk clock.Clock
}

// New creates a pipeline over the given engine.
func New(eng *engine.Engine, clk clock.Clock) *Pipeline {
	return &Pipeline{eng: eng, clk: clk}
}

// BatchResult summarizes one batch import.
type BatchResult struct {
	// Processed counts records that produced an interaction.
	Processed int `json:"processed"`

	// Skipped counts records dropped by the skip-empty rule: no title, no
	// summary, and no surviving participants.
	Skipped int `json:"skipped"`

	// Truncated counts records beyond the batch cap that were not
	// processed at all.
	Truncated int `json:"truncated"`
}

// ImportEmails ingests normalized inbox records. Participants are the sender
// plus all recipients, filtered through keep. Each surviving record appends
// one email interaction; the batch ends with a summary note interaction.
//
// Repeat imports of the same file append the same interactions again:
// at-least-once, no source-item dedupe.
func (p *Pipeline) ImportEmails(emails []outlook.Email, keep Filter, surface model.Surface) *BatchResult {
	if keep == nil {
		keep = KeepAll()
	}
	result := &BatchResult{}

	batch := emails
	if len(batch) > MaxBatchRecords {
		result.Truncated = len(batch) - MaxBatchRecords
		batch = batch[:MaxBatchRecords]
	}

	p.eng.Apply(func(s *model.AppState) *model.AppState {
		for i, email := range batch {
			participants := participantIDs(&s, p.clk, keep, addressPairs(email.From, email.To))

			title := strings.TrimSpace(email.Subject)
			if title == "" && email.BodyPreview == "" && len(participants) == 0 {
				result.Skipped++
				continue
			}

			s, _ = store.AddInteraction(s, p.clk, store.Draft{
				Type:           model.InteractionEmail,
				OccurredAt:     email.ReceivedAt,
				Title:          title,
				Summary:        email.BodyPreview,
				ParticipantIDs: participants,
				Provenance: model.Provenance{
					Surface:      surface,
					SourceItemID: fmt.Sprintf("inbox-row-%d", i+1),
				},
				NextActions: suggestNextActions(s, participants, email.BodyPreview),
			})
			result.Processed++
		}

		s, _ = store.AddInteraction(s, p.clk, store.Draft{
			Type:       model.InteractionNote,
			Title:      "CSV import",
			Summary:    fmt.Sprintf("Imported %d emails from CSV.", result.Processed),
			Provenance: model.Provenance{Surface: surface},
		})
		return s
	})

	return result
}

// ImportEvents ingests normalized calendar records. Participants are the
// organizer plus all attendees. Each surviving record appends one meeting
// interaction; the batch ends with a summary note interaction.
func (p *Pipeline) ImportEvents(events []outlook.Event, keep Filter, surface model.Surface) *BatchResult {
	if keep == nil {
		keep = KeepAll()
	}
	result := &BatchResult{}

	batch := events
	if len(batch) > MaxBatchRecords {
		result.Truncated = len(batch) - MaxBatchRecords
		batch = batch[:MaxBatchRecords]
	}

	p.eng.Apply(func(s *model.AppState) *model.AppState {
		for i, ev := range batch {
			participants := participantIDs(&s, p.clk, keep, addressPairs(ev.Organizer, ev.Attendees))

			title := strings.TrimSpace(ev.Title)
			if title == "" && ev.BodyPreview == "" && len(participants) == 0 {
				result.Skipped++
				continue
			}

			s, _ = store.AddInteraction(s, p.clk, store.Draft{
				Type:           model.InteractionMeeting,
				OccurredAt:     ev.StartsAt,
				Title:          title,
				Summary:        ev.BodyPreview,
				ParticipantIDs: participants,
				Provenance: model.Provenance{
					Surface:      surface,
					SourceItemID: fmt.Sprintf("calendar-row-%d", i+1),
				},
			})
			result.Processed++
		}

		s, _ = store.AddInteraction(s, p.clk, store.Draft{
			Type:       model.InteractionNote,
			Title:      "CSV import",
			Summary:    fmt.Sprintf("Imported %d events from CSV.", result.Processed),
			Provenance: model.Provenance{Surface: surface},
		})
		return s
	})

	return result
}

// PageCapture is the document page reader's output contract.
type PageCapture struct {
	Title      string
	TextSample string

	// Emails is optional; addresses extracted from TextSample are always
	// unioned in.
	Emails []string
}

// CapturePage ingests one captured document page as a note interaction whose
// participants are the extracted external addresses.
func (p *Pipeline) CapturePage(capture PageCapture, keep Filter, surface model.Surface) (*model.Interaction, error) {
	if keep == nil {
		keep = KeepAll()
	}

	addresses := append([]string{}, capture.Emails...)
	addresses = append(addresses, ExtractEmails(capture.TextSample)...)
	addresses = dedupeNormalized(addresses)

	title := strings.TrimSpace(capture.Title)
	if title == "" {
		title = "Captured page"
	}

	var appended model.Interaction
	p.eng.Apply(func(s *model.AppState) *model.AppState {
		var participants []string
		for _, addr := range addresses {
			if !keep(addr) {
				continue
			}
			var st model.Stakeholder
			s, st = store.UpsertStakeholderByEmail(s, p.clk, addr, "")
			participants = append(participants, st.ID)
		}

		s, appended = store.AddInteraction(s, p.clk, store.Draft{
			Type:           model.InteractionNote,
			Title:          title,
			Summary:        truncate(capture.TextSample, 500),
			ParticipantIDs: participants,
			Provenance:     model.Provenance{Surface: surface},
		})
		return s
	})

	return &appended, nil
}

// SlideCapture is the slide reader's output contract.
type SlideCapture struct {
	SlideText string
}

// CaptureSlide ingests one captured slide as a note interaction. Slides
// carry no participant identities, only text.
func (p *Pipeline) CaptureSlide(capture SlideCapture, surface model.Surface) (*model.Interaction, error) {
	text := strings.TrimSpace(capture.SlideText)
	if text == "" {
		return nil, errors.NewInvalidRequest("slide text is empty")
	}

	var appended model.Interaction
	p.eng.Apply(func(s *model.AppState) *model.AppState {
		s, appended = store.AddInteraction(s, p.clk, store.Draft{
			Type:       model.InteractionNote,
			Title:      "Slide capture",
			Summary:    truncate(text, 500),
			Provenance: model.Provenance{Surface: surface},
		})
		return s
	})

	return &appended, nil
}

// AddStakeholder upserts a stakeholder by email from a manual action.
func (p *Pipeline) AddStakeholder(email, displayName string) model.Stakeholder {
	var created model.Stakeholder
	p.eng.Apply(func(s *model.AppState) *model.AppState {
		next, st := store.UpsertStakeholderByEmail(s, p.clk, email, displayName)
		created = st
		return next
	})
	return created
}

// AddNote attaches a manual note to a stakeholder. Unknown ids and blank
// text are reported here, unlike in the store, because a manual action
// deserves feedback.
func (p *Pipeline) AddNote(stakeholderID, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewInvalidRequest("note text is empty")
	}
	if p.eng.Snapshot().FindStakeholder(stakeholderID) == nil {
		return errors.NewNotFound(stakeholderID)
	}
	p.eng.Apply(func(s *model.AppState) *model.AppState {
		return store.AddNote(s, p.clk, stakeholderID, text)
	})
	return nil
}

// participantIDs filters addresses and upserts the survivors, threading the
// snapshot forward through the pointer. Display names ride along so a known
// sender can name an otherwise anonymous stakeholder.
func participantIDs(s **model.AppState, clk clock.Clock, keep Filter, addrs []addressPair) []string {
	var ids []string
	for _, a := range addrs {
		norm := model.NormalizeEmail(a.addr)
		if norm == "" || !keep(norm) {
			continue
		}
		var st model.Stakeholder
		*s, st = store.UpsertStakeholderByEmail(*s, clk, norm, a.name)
		ids = append(ids, st.ID)
	}
	return ids
}

// suggestNextActions derives display-only follow-up suggestions for an email
// record. Plain string heuristics; nothing downstream keys on these.
func suggestNextActions(s *model.AppState, participantIDs []string, bodyPreview string) []string {
	var actions []string
	if len(participantIDs) > 0 {
		if st := s.FindStakeholder(participantIDs[0]); st != nil {
			actions = append(actions, fmt.Sprintf("Reply to %s", st.DisplayName))
		}
	}
	lower := strings.ToLower(bodyPreview)
	if strings.Contains(lower, "meeting") || strings.Contains(lower, "schedule") || strings.Contains(lower, "call") {
		actions = append(actions, "Propose a meeting time")
	}
	return actions
}

type addressPair struct {
	name string
	addr string
}

// addressPairs flattens a primary address plus a recipient list.
func addressPairs(first outlook.Address, rest []outlook.Address) []addressPair {
	pairs := make([]addressPair, 0, len(rest)+1)
	if first.Addr != "" {
		pairs = append(pairs, addressPair{name: first.Name, addr: first.Addr})
	}
	for _, a := range rest {
		if a.Addr != "" {
			pairs = append(pairs, addressPair{name: a.Name, addr: a.Addr})
		}
	}
	return pairs
}

// dedupeNormalized normalizes and deduplicates addresses, first-seen order.
func dedupeNormalized(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		norm := model.NormalizeEmail(a)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
