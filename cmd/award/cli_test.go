package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/config"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/ingest"
	"github.com/tylertestin/InnovationAward/internal/model"
	"github.com/tylertestin/InnovationAward/internal/persist"
)

// setupApp builds a CLI app over a temp SQLite store.
func setupApp(t *testing.T) (*engine.Engine, func(args ...string) (string, error)) {
	t.Helper()

	local, err := persist.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	clk := clock.NewFixed(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), time.Second)
	eng := engine.New(local, nil, clk, engine.WithLogf(func(string, ...any) {}))
	eng.Load()
	pl := ingest.New(eng, clk)
	cfg := config.DefaultConfig()
	cfg.InternalDomain = "bcg.com"

	app := newCLIApp(eng, pl, cfg, clk)

	run := func(args ...string) (string, error) {
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		runErr := app.Run(append([]string{"award"}, args...))

		w.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		os.Stdout = oldStdout

		return buf.String(), runErr
	}
	return eng, run
}

func TestCLIAdd(t *testing.T) {
	eng, run := setupApp(t)

	out, err := run("add", "--email=jane@acme.com", "--name=Jane Doe")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var st model.Stakeholder
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if st.ID == "" || st.Email != "jane@acme.com" {
		t.Errorf("stakeholder = %+v", st)
	}

	if len(eng.Snapshot().Stakeholders) != 1 {
		t.Error("stakeholder was not stored")
	}
}

func TestCLIAdd_RequiresInput(t *testing.T) {
	_, run := setupApp(t)

	if _, err := run("add"); err == nil {
		t.Error("add without email or name should fail")
	}
}

func TestCLINote(t *testing.T) {
	eng, run := setupApp(t)

	out, err := run("add", "--email=jane@acme.com", "--name=Jane")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	var st model.Stakeholder
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("parse add output: %v", err)
	}

	if _, err := run("note", st.ID, "met", "at", "kickoff"); err != nil {
		t.Fatalf("note failed: %v", err)
	}

	got := eng.Snapshot().FindStakeholder(st.ID)
	if got == nil || len(got.Notes) != 1 || got.Notes[0].Text != "met at kickoff" {
		t.Errorf("stakeholder after note = %+v", got)
	}
}

func TestCLIImport(t *testing.T) {
	eng, run := setupApp(t)

	csvPath := filepath.Join(t.TempDir(), "inbox.csv")
	csv := "Subject,From,Received\nKickoff,\"Jane Doe <jane@acme.com>\",2024-01-05T10:00:00Z\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, err := run("import", "--file="+csvPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var result ingest.BatchResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v\nOutput: %s", err, out)
	}
	if result.Processed != 1 {
		t.Errorf("result = %+v", result)
	}

	s := eng.Snapshot()
	if len(s.Stakeholders) != 1 || s.Stakeholders[0].DisplayName != "Jane Doe" {
		t.Errorf("stakeholders = %+v", s.Stakeholders)
	}
}

func TestCLIImport_BadKind(t *testing.T) {
	_, run := setupApp(t)

	csvPath := filepath.Join(t.TempDir(), "inbox.csv")
	if err := os.WriteFile(csvPath, []byte("Subject\nx\n"), 0600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, err := run("import", "--file="+csvPath, "--kind=contacts"); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestCLIList(t *testing.T) {
	_, run := setupApp(t)

	if _, err := run("add", "--email=jane@acme.com", "--name=Jane"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := run("list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var payload struct {
		Stakeholders []model.Stakeholder `json:"stakeholders"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("parse output: %v\nOutput: %s", err, out)
	}
	if len(payload.Stakeholders) != 1 {
		t.Errorf("stakeholders = %+v", payload.Stakeholders)
	}
}

func TestCLIExportImportState(t *testing.T) {
	eng, run := setupApp(t)

	if _, err := run("add", "--email=jane@acme.com", "--name=Jane"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "state.json")
	if _, err := run("export", "--out="+exportPath); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if _, err := run("reset", "--force"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(eng.Snapshot().Stakeholders) != 0 {
		t.Fatal("reset did not empty the state")
	}

	if _, err := run("import-state", "--file="+exportPath); err != nil {
		t.Fatalf("import-state failed: %v", err)
	}
	if len(eng.Snapshot().Stakeholders) != 1 {
		t.Error("import-state did not restore the snapshot")
	}
}

func TestCLIReset_RequiresForce(t *testing.T) {
	eng, run := setupApp(t)

	if _, err := run("add", "--email=jane@acme.com", "--name=Jane"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := run("reset"); err == nil {
		t.Error("reset without --force should fail")
	}
	if len(eng.Snapshot().Stakeholders) != 1 {
		t.Error("reset without --force must not touch the state")
	}
}

func TestParseSurface(t *testing.T) {
	if _, err := parseSurface("web"); err != nil {
		t.Errorf("web should be valid: %v", err)
	}
	if _, err := parseSurface("doc-panel"); err != nil {
		t.Errorf("doc-panel should be valid: %v", err)
	}
	if _, err := parseSurface("mobile"); err == nil {
		t.Error("unknown surface should be rejected")
	}
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"award", "list"}
	if !isCLIMode() {
		t.Error("known subcommand should select CLI mode")
	}

	os.Args = []string{"award"}
	if isCLIMode() {
		t.Error("bare invocation is not CLI mode")
	}
}
