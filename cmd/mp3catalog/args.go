package main

import (
	"fmt"
	"os"

	"mp3catalog/internal/config"
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs() (config.Config, string, error) {
	args := os.Args[1:]

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return config.Config{}, "", initConfigFile()
		}
	}

	var configPath string
	var cfg config.Config
	var err error

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err = config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--simulate", "-n":
			cfg.Simulate = true

		case "--no-external":
			cfg.ExternalLookups = false

		case "--no-update-tags":
			cfg.UpdateTags = false

		case "--analyze-only", "-a":
			cfg.AnalyzeOnly = true

		case "--cleanup":
			cfg.CleanupEmpty = true

		case "--unknown-policy":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--unknown-policy requires %q or %q", config.UnknownPolicyMove, config.UnknownPolicySkip)
			}
			i++
			cfg.UnknownPolicy = args[i]

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, "", fmt.Errorf("unknown flag: %s", arg)
			}
			cfg.BasePath = config.ExpandHome(arg)
		}
	}

	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  base_path: collection directory to catalog")
	fmt.Println("  unknown_genre_policy: move (into the Unknown folder) or skip")
	fmt.Println("  lastfm_api_key / songbpm_api_key: enable the extra providers")
	fmt.Println("  musicbrainz_interval_ms / lastfm_interval_ms: per-provider request spacing")
	fmt.Println("  cache_max_age_days: discard the lookup cache after this many days")
	fmt.Println("  verbose: true/false (enable detailed logging)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("mp3catalog - Sort a music collection into genre folders")
	fmt.Println()
	fmt.Println("Usage: mp3catalog [options] <music_directory>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -n, --simulate             Preview every move without touching any file")
	fmt.Println("  -a, --analyze-only         Classify and report, but move nothing")
	fmt.Println("      --no-external          Skip MusicBrainz/Last.fm lookups (tags and filenames only)")
	fmt.Println("      --no-update-tags       Never write resolved metadata back into the files")
	fmt.Println("      --cleanup              Remove genre folders left empty after the run")
	fmt.Println("      --unknown-policy <p>   move (default) or skip files with no resolvable genre")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./mp3catalog.yaml")
	fmt.Println("  ~/.config/mp3catalog/config.yaml")
	fmt.Println("  ~/.mp3catalog.yaml")
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Progress bar shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/mp3catalog/logs/")
	fmt.Println("  Verbose mode: All output to stdout, no progress bar, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Preview what a run would do")
	fmt.Println("  mp3catalog --simulate ~/Music")
	fmt.Println()
	fmt.Println("  # Catalog with defaults (progress bar + file logging)")
	fmt.Println("  mp3catalog ~/Music")
	fmt.Println()
	fmt.Println("  # Offline pass over a collection with good tags")
	fmt.Println("  mp3catalog --no-external ~/Music")
	fmt.Println()
	fmt.Println("  # Inspect how the collection is currently organized")
	fmt.Println("  mp3catalog --analyze-only ~/Music")
	fmt.Println()
	fmt.Println("  # Create a config file to persist settings")
	fmt.Println("  mp3catalog --init-config")
}
