package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// InternalDomain is the operator's own email domain. Imports and
	// captures keep externally-domained addresses only; addresses on this
	// domain are filtered out before dedupe. Empty means keep everything.
	InternalDomain string `json:"internal_domain,omitempty"`

	// SyncURL is the remote sync endpoint base URL. Empty disables the
	// remote copy entirely (local-only operation).
	SyncURL string `json:"sync_url,omitempty"`

	// PollIntervalSeconds is the remote pull cadence while a surface is
	// active. 0 means the default of 5 seconds.
	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty"`

	// AIBaseURL is the base URL of the chat-completions API used for
	// impact prediction. Empty disables the impact feature.
	AIBaseURL string `json:"ai_base_url,omitempty"`

	// AIModel is the model name sent with impact requests.
	AIModel string `json:"ai_model,omitempty"`

	// AIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	AIKeyEnv string `json:"ai_key_env,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalSeconds: 5,
		AIModel:             "gpt-4o-mini",
		AIKeyEnv:            "AWARD_AI_KEY",
	}
}

// PollInterval returns the pull cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.award.
func Load(baseDir string) (*Config, error) {
	raw, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), raw), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for non-zero scalars.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.InternalDomain = pickString(base.InternalDomain, overlay.InternalDomain)
	result.SyncURL = pickString(base.SyncURL, overlay.SyncURL)
	result.AIBaseURL = pickString(base.AIBaseURL, overlay.AIBaseURL)
	result.AIModel = pickString(base.AIModel, overlay.AIModel)
	result.AIKeyEnv = pickString(base.AIKeyEnv, overlay.AIKeyEnv)

	result.PollIntervalSeconds = overlay.PollIntervalSeconds
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = base.PollIntervalSeconds
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	return result
}

// pickString returns overlay if non-blank, else base.
func pickString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}
