package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.ExternalLookups {
		t.Error("external lookups should default on")
	}
	if !cfg.UpdateTags {
		t.Error("tag updates should default on")
	}
	if cfg.UnknownPolicy != UnknownPolicyMove {
		t.Errorf("UnknownPolicy = %q, want %q", cfg.UnknownPolicy, UnknownPolicyMove)
	}
	if cfg.MusicBrainzDelay() != 1200*time.Millisecond {
		t.Errorf("MusicBrainzDelay() = %v, want 1.2s", cfg.MusicBrainzDelay())
	}
	if cfg.LastFMDelay() != 500*time.Millisecond {
		t.Errorf("LastFMDelay() = %v, want 500ms", cfg.LastFMDelay())
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mp3catalog.yaml")
	content := `
base_path: /music
verbose: true
external_lookups: false
unknown_genre_policy: skip
lastfm_api_key: secret
musicbrainz_interval_ms: 2000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.BasePath != "/music" {
		t.Errorf("BasePath = %q", cfg.BasePath)
	}
	if !cfg.Verbose {
		t.Error("Verbose not loaded")
	}
	if cfg.ExternalLookups {
		t.Error("ExternalLookups override not applied")
	}
	if cfg.UnknownPolicy != UnknownPolicySkip {
		t.Errorf("UnknownPolicy = %q, want skip", cfg.UnknownPolicy)
	}
	if cfg.LastFMAPIKey != "secret" {
		t.Errorf("LastFMAPIKey = %q", cfg.LastFMAPIKey)
	}
	if cfg.MusicBrainzDelay() != 2*time.Second {
		t.Errorf("MusicBrainzDelay() = %v, want 2s", cfg.MusicBrainzDelay())
	}
	// Unset fields keep their defaults.
	if cfg.LastFMIntervalMS != 500 {
		t.Errorf("LastFMIntervalMS = %d, want default 500", cfg.LastFMIntervalMS)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must fall back to defaults, got %v", err)
	}
	if cfg.UnknownPolicy != UnknownPolicyMove {
		t.Error("defaults not returned for missing file")
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected error for unparseable config")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.BasePath = "/music"
	cfg.CacheMaxAgeDays = 7

	if err := SaveConfigFile(cfg, path); err != nil {
		t.Fatalf("SaveConfigFile() error: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}
	if loaded.BasePath != "/music" || loaded.CacheMaxAgeDays != 7 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	base := t.TempDir()

	valid := DefaultConfig()
	valid.BasePath = base

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty base path", func(c *Config) { c.BasePath = "" }, true},
		{"missing base path", func(c *Config) { c.BasePath = filepath.Join(base, "absent") }, true},
		{"bad policy", func(c *Config) { c.UnknownPolicy = "ask" }, true},
		{"skip policy ok", func(c *Config) { c.UnknownPolicy = UnknownPolicySkip }, false},
		{"zero interval", func(c *Config) { c.MusicBrainzIntervalMS = 0 }, true},
		{"negative cache age", func(c *Config) { c.CacheMaxAgeDays = -1 }, true},
		{"empty unknown folder", func(c *Config) { c.UnknownFolder = "" }, true},
		{"empty fallback genre", func(c *Config) { c.FallbackGenre = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BasePathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.BasePath = file
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when base path is a file")
	}
}

func TestCachePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BasePath = "/music"

	if got := cfg.CachePath(); got != filepath.Join("/music", "metadata_cache.json") {
		t.Errorf("CachePath() = %q", got)
	}

	cfg.CacheFile = "/elsewhere/cache.json"
	if got := cfg.CachePath(); got != "/elsewhere/cache.json" {
		t.Errorf("CachePath() = %q, want explicit path", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandHome("~/Music"); got != filepath.Join(home, "Music") {
		t.Errorf("ExpandHome(~/Music) = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome(/abs/path) = %q", got)
	}
}
