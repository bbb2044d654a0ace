package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Unknown-genre policies: what to do with a file whose genre cannot be
// resolved beyond the fallback bucket. The observed behavior of earlier
// versions of this tool disagreed, so it is an explicit choice.
const (
	UnknownPolicyMove = "move" // file it under the Unknown folder
	UnknownPolicySkip = "skip" // leave it in place, report as uncatalogued
)

// Config contains the program configuration.
type Config struct {
	BasePath        string `yaml:"base_path"`
	Verbose         bool   `yaml:"verbose"`
	Simulate        bool   `yaml:"simulate"`
	ExternalLookups bool   `yaml:"external_lookups"`
	UpdateTags      bool   `yaml:"update_tags"`
	AnalyzeOnly     bool   `yaml:"analyze_only"`
	CleanupEmpty    bool   `yaml:"cleanup_empty_folders"`

	UnknownPolicy string `yaml:"unknown_genre_policy"`
	UnknownFolder string `yaml:"unknown_folder"`
	FallbackGenre string `yaml:"fallback_genre"`

	MusicBrainzIntervalMS int    `yaml:"musicbrainz_interval_ms"`
	LastFMIntervalMS      int    `yaml:"lastfm_interval_ms"`
	LastFMAPIKey          string `yaml:"lastfm_api_key"`
	SongBPMAPIKey         string `yaml:"songbpm_api_key"`

	CacheFile       string `yaml:"cache_file"`
	CacheMaxAgeDays int    `yaml:"cache_max_age_days"`
	ReportDir       string `yaml:"report_dir"`

	WebListenAddr string `yaml:"web_listen_addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ExternalLookups:     true,
		UpdateTags:          true,
		UnknownPolicy:       UnknownPolicyMove,
		UnknownFolder:       "Unknown",
		FallbackGenre:       "Other",
		MusicBrainzIntervalMS: 1200,
		LastFMIntervalMS:      500,
		CacheMaxAgeDays:       30,
		WebListenAddr:         ":8080",
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no
// file is found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.BasePath = ExpandHome(cfg.BasePath)
	cfg.CacheFile = ExpandHome(cfg.CacheFile)
	cfg.ReportDir = ExpandHome(cfg.ReportDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations.
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./mp3catalog.yaml",
		"./mp3catalog.yml",
		filepath.Join(home, ".config", "mp3catalog", "config.yaml"),
		filepath.Join(home, ".config", "mp3catalog", "config.yml"),
		filepath.Join(home, ".mp3catalog.yaml"),
		filepath.Join(home, ".mp3catalog.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// SaveConfigFile saves the configuration to a YAML file.
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "mp3catalog", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path.
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "mp3catalog", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// CachePath returns the configured cache file location, defaulting to a
// file inside the collection directory.
func (c *Config) CachePath() string {
	if c.CacheFile != "" {
		return c.CacheFile
	}
	return filepath.Join(c.BasePath, "metadata_cache.json")
}

// MusicBrainzDelay returns the minimum spacing between MusicBrainz
// requests.
func (c *Config) MusicBrainzDelay() time.Duration {
	return time.Duration(c.MusicBrainzIntervalMS) * time.Millisecond
}

// LastFMDelay returns the minimum spacing between Last.fm requests.
func (c *Config) LastFMDelay() time.Duration {
	return time.Duration(c.LastFMIntervalMS) * time.Millisecond
}

// ReportPath returns the directory the run report is written to,
// defaulting to the collection directory.
func (c *Config) ReportPath() string {
	if c.ReportDir != "" {
		return c.ReportDir
	}
	return c.BasePath
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base path cannot be empty")
	}

	info, err := os.Stat(c.BasePath)
	if err != nil {
		return fmt.Errorf("base path does not exist: %s", c.BasePath)
	}
	if !info.IsDir() {
		return fmt.Errorf("base path is not a directory: %s", c.BasePath)
	}

	if c.UnknownPolicy != UnknownPolicyMove && c.UnknownPolicy != UnknownPolicySkip {
		return fmt.Errorf("unknown_genre_policy must be %q or %q, got %q",
			UnknownPolicyMove, UnknownPolicySkip, c.UnknownPolicy)
	}

	if c.MusicBrainzIntervalMS <= 0 {
		return fmt.Errorf("musicbrainz_interval_ms must be positive, got %d", c.MusicBrainzIntervalMS)
	}
	if c.LastFMIntervalMS <= 0 {
		return fmt.Errorf("lastfm_interval_ms must be positive, got %d", c.LastFMIntervalMS)
	}

	if c.CacheMaxAgeDays < 0 {
		return fmt.Errorf("cache_max_age_days cannot be negative, got %d", c.CacheMaxAgeDays)
	}

	if c.UnknownFolder == "" {
		return fmt.Errorf("unknown_folder cannot be empty")
	}
	if c.FallbackGenre == "" {
		return fmt.Errorf("fallback_genre cannot be empty")
	}

	return nil
}
