package web

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/model"
)

// maxStateBody bounds PUT /api/state request bodies.
const maxStateBody = 16 << 20

// Handlers contains HTTP route handlers.
type Handlers struct {
	eng      *engine.Engine
	renderer *Renderer
}

// interactionView is one timeline row with participant ids resolved to
// display names. Unresolvable ids render as "Unknown participant".
type interactionView struct {
	Interaction  model.Interaction
	When         string
	Participants []string
	SummaryHTML  template.HTML
}

// HandleTimeline handles GET /timeline: the interaction log, newest first.
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	s := h.eng.Snapshot()

	views := make([]interactionView, 0, len(s.Interactions))
	for _, in := range s.Interactions {
		views = append(views, interactionView{
			Interaction:  in,
			When:         formatStamp(in.OccurredAt),
			Participants: participantNames(s, in.ParticipantIDs),
			SummaryHTML:  renderMarkdown(in.Summary),
		})
	}

	h.renderer.renderPage(w, r, "timeline", TimelinePageData{
		PageData: PageData{
			Title:   "Timeline",
			Version: h.renderer.version,
			Nav:     "timeline",
		},
		Items: views,
	})
}

// stakeholderView is one registry row.
type stakeholderView struct {
	Stakeholder     model.Stakeholder
	LastInteraction string
	NoteCount       int
}

// HandleStakeholders handles GET /stakeholders: the registry.
func (h *Handlers) HandleStakeholders(w http.ResponseWriter, r *http.Request) {
	s := h.eng.Snapshot()

	views := make([]stakeholderView, 0, len(s.Stakeholders))
	for _, st := range s.Stakeholders {
		views = append(views, stakeholderView{
			Stakeholder:     st,
			LastInteraction: formatStamp(st.LastInteractionAt),
			NoteCount:       len(st.Notes),
		})
	}

	h.renderer.renderPage(w, r, "stakeholders", StakeholdersPageData{
		PageData: PageData{
			Title:   "Stakeholders",
			Version: h.renderer.version,
			Nav:     "stakeholders",
		},
		Items: views,
	})
}

// HandleStakeholderDetail handles GET /stakeholders/{id}: the stakeholder's
// notes plus every interaction referencing them.
func (h *Handlers) HandleStakeholderDetail(w http.ResponseWriter, r *http.Request) {
	s := h.eng.Snapshot()

	st := s.FindStakeholder(r.PathValue("id"))
	if st == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(r.PathValue("id")))
		return
	}

	var linked []interactionView
	for _, in := range s.Interactions {
		for _, pid := range in.ParticipantIDs {
			if pid != st.ID {
				continue
			}
			linked = append(linked, interactionView{
				Interaction:  in,
				When:         formatStamp(in.OccurredAt),
				Participants: participantNames(s, in.ParticipantIDs),
				SummaryHTML:  renderMarkdown(in.Summary),
			})
			break
		}
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   st.DisplayName,
			Version: h.renderer.version,
			Nav:     "stakeholders",
		},
		Stakeholder:     *st,
		LastInteraction: formatStamp(st.LastInteractionAt),
		Interactions:    linked,
	})
}

// stateEnvelope is the sync endpoint wire format.
type stateEnvelope struct {
	State *model.AppState `json:"state,omitempty"`
}

// HandleStateGet handles GET /api/state. Always returns the current
// snapshot; a never-written snapshot has zero recency, so clients will not
// adopt it.
func (h *Handlers) HandleStateGet(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, stateEnvelope{State: h.eng.Snapshot()})
}

// HandleStatePut handles PUT /api/state: whole-state replacement, last full
// write wins, no server-side merge. The snapshot is adopted without
// restamping so recency comparisons elsewhere stay meaningful.
func (h *Handlers) HandleStatePut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStateBody))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("unreadable request body"))
		return
	}

	var env stateEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("body is not valid JSON"))
		return
	}
	if env.State == nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("missing state field"))
		return
	}
	if env.State.Stakeholders == nil {
		env.State.Stakeholders = []model.Stakeholder{}
	}
	if env.State.Interactions == nil {
		env.State.Interactions = []model.Interaction{}
	}

	h.eng.Adopt(env.State)
	w.WriteHeader(http.StatusNoContent)
}

// participantNames resolves participant ids to display names.
func participantNames(s *model.AppState, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if st := s.FindStakeholder(id); st != nil {
			names = append(names, st.DisplayName)
		} else {
			names = append(names, "Unknown participant")
		}
	}
	return names
}
