package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollIntervalSeconds != 5 {
		t.Errorf("PollIntervalSeconds = %d, want 5", cfg.PollIntervalSeconds)
	}
	if cfg.AIModel != "gpt-4o-mini" {
		t.Errorf("AIModel = %q", cfg.AIModel)
	}
	if cfg.AIKeyEnv != "AWARD_AI_KEY" {
		t.Errorf("AIKeyEnv = %q", cfg.AIKeyEnv)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"internal_domain":"bcg.com","sync_url":"http://localhost:8787/api/state","poll_interval_seconds":30}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InternalDomain != "bcg.com" {
		t.Errorf("InternalDomain = %q", cfg.InternalDomain)
	}
	if cfg.SyncURL != "http://localhost:8787/api/state" {
		t.Errorf("SyncURL = %q", cfg.SyncURL)
	}
	if cfg.PollIntervalSeconds != 30 {
		t.Errorf("PollIntervalSeconds = %d", cfg.PollIntervalSeconds)
	}
	// Untouched fields keep their defaults.
	if cfg.AIModel != "gpt-4o-mini" {
		t.Errorf("AIModel = %q, want default kept", cfg.AIModel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestPollInterval(t *testing.T) {
	if got := (&Config{PollIntervalSeconds: 30}).PollInterval(); got != 30*time.Second {
		t.Errorf("PollInterval = %v", got)
	}
	if got := (&Config{}).PollInterval(); got != 5*time.Second {
		t.Errorf("PollInterval zero = %v, want default 5s", got)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.InternalDomain = "bcg.com"

	merged := Merge(base, &Config{SyncURL: "http://peer", PollIntervalSeconds: 60})
	if merged.InternalDomain != "bcg.com" {
		t.Errorf("InternalDomain = %q, want base kept", merged.InternalDomain)
	}
	if merged.SyncURL != "http://peer" {
		t.Errorf("SyncURL = %q, want overlay", merged.SyncURL)
	}
	if merged.PollIntervalSeconds != 60 {
		t.Errorf("PollIntervalSeconds = %d, want overlay", merged.PollIntervalSeconds)
	}
}
