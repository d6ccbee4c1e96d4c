package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/model"
	"github.com/tylertestin/InnovationAward/internal/store"
)

// memLocal is an in-memory persist.Local for handler tests.
type memLocal struct {
	saved *model.AppState
}

func (m *memLocal) Load() (*model.AppState, error) { return m.saved, nil }
func (m *memLocal) Save(s *model.AppState) error   { m.saved = s; return nil }

func testServer(t *testing.T) (*http.Server, *engine.Engine) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), time.Second)
	eng := engine.New(&memLocal{}, nil, clk, engine.WithLogf(func(string, ...any) {}))
	return NewServer(eng, "test", "127.0.0.1", 0), eng
}

func seedStakeholder(eng *engine.Engine, email, name string) model.Stakeholder {
	clk := clock.NewFixed(time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC), time.Second)
	var st model.Stakeholder
	eng.Apply(func(s *model.AppState) *model.AppState {
		next, created := store.UpsertStakeholderByEmail(s, clk, email, name)
		st = created
		return next
	})
	return st
}

func TestRootRedirectsToTimeline(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/timeline" {
		t.Errorf("Location = %q", loc)
	}
}

func TestTimelinePage(t *testing.T) {
	srv, eng := testServer(t)
	st := seedStakeholder(eng, "jane@acme.com", "Jane Doe")

	clk := clock.NewFixed(time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), time.Second)
	eng.Apply(func(s *model.AppState) *model.AppState {
		next, _ := store.AddInteraction(s, clk, store.Draft{
			Type:           model.InteractionEmail,
			Title:          "Kickoff",
			ParticipantIDs: []string{st.ID, "dangling-id"},
			Provenance:     model.Provenance{Surface: model.SurfaceWeb},
		})
		return next
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Kickoff") {
		t.Error("timeline should show the interaction title")
	}
	if !strings.Contains(body, "Jane Doe") {
		t.Error("timeline should resolve participant names")
	}
	if !strings.Contains(body, "Unknown participant") {
		t.Error("dangling participant ids should render as Unknown participant")
	}
}

func TestStakeholdersPage(t *testing.T) {
	srv, eng := testServer(t)
	seedStakeholder(eng, "jane@acme.com", "Jane Doe")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stakeholders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jane Doe") {
		t.Error("registry should list the stakeholder")
	}
}

func TestStakeholderDetail(t *testing.T) {
	srv, eng := testServer(t)
	st := seedStakeholder(eng, "jane@acme.com", "Jane Doe")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stakeholders/"+st.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jane Doe") {
		t.Error("detail page should show the stakeholder")
	}
}

func TestStakeholderDetail_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stakeholders/no-such-id", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStateGet(t *testing.T) {
	srv, eng := testServer(t)
	seedStakeholder(eng, "jane@acme.com", "Jane Doe")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var env stateEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.State == nil || len(env.State.Stakeholders) != 1 {
		t.Errorf("state = %+v", env.State)
	}
}

func TestStatePut(t *testing.T) {
	srv, eng := testServer(t)

	payload := `{"state":{"stakeholders":[{"id":"a","displayName":"A"}],"updatedAt":"2024-06-01T00:00:00.000Z"}}`
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(payload)))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	s := eng.Snapshot()
	if len(s.Stakeholders) != 1 {
		t.Errorf("adopted stakeholders = %d", len(s.Stakeholders))
	}
	if s.UpdatedAt != "2024-06-01T00:00:00.000Z" {
		t.Errorf("UpdatedAt = %q, adopted state must not be restamped", s.UpdatedAt)
	}
	if s.Interactions == nil {
		t.Error("absent interactions should be normalized to an empty list")
	}
}

func TestStatePut_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{broken"},
		{"missing state", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)

			req := httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(tt.body))
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing frame options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing CSP header")
	}
}

func TestFormatStamp(t *testing.T) {
	if got := formatStamp("2024-01-05T10:30:00.000Z"); got != "2024-01-05 10:30" {
		t.Errorf("formatStamp = %q", got)
	}
	if got := formatStamp(""); got != "—" {
		t.Errorf("formatStamp(empty) = %q", got)
	}
	if got := formatStamp("garbage"); got != "—" {
		t.Errorf("formatStamp(garbage) = %q", got)
	}
}
