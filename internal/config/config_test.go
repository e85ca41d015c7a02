package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Translation != nil || cfg.Source.URL != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[practice]
translation = "KJV"
commuter = true
weak-factor = 3.5

[source]
url = "http://localhost:8080"
timeout-sec = 5
cache = false

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.Translation == nil || *cfg.Practice.Translation != "KJV" {
		t.Fatalf("unexpected translation %+v", cfg.Practice.Translation)
	}
	if cfg.Practice.Commuter == nil || !*cfg.Practice.Commuter {
		t.Fatalf("expected commuter enabled")
	}
	if cfg.Practice.WeakFactor == nil || *cfg.Practice.WeakFactor != 3.5 {
		t.Fatalf("unexpected weak factor")
	}
	if cfg.Practice.Plan != nil {
		t.Fatalf("expected unset plan")
	}
	if cfg.Source.TimeoutSec == nil || *cfg.Source.TimeoutSec != 5 || cfg.Source.Cache == nil || *cfg.Source.Cache {
		t.Fatalf("unexpected source config %+v", cfg.Source)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	if got := DefaultConfigPath(); got != filepath.Join(dir, "cfg", "memverse", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "memverse", "memverse.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "state", "memverse", "memverse.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
