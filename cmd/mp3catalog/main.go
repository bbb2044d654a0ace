package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"

	"mp3catalog/internal/config"
	"mp3catalog/internal/logger"
	"mp3catalog/internal/pipeline"
	"mp3catalog/internal/shutdown"
)

var (
	colorHeader  = color.New(color.FgCyan, color.Bold)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
)

func main() {
	cfg, configPath, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()

	log := logger.New(cfg.Verbose)
	sh.AddCleanup(func() { log.Close() })

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("mp3catalog_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if cfg.Verbose && configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(sh, cfg, log); err != nil {
		log.Error("%v", err)
		sh.Shutdown()
		os.Exit(1)
	}
	sh.Shutdown()
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) error {
	p, err := pipeline.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if cfg.AnalyzeOnly {
		return analyze(p, cfg)
	}

	var bar *pb.ProgressBar
	p.Hooks = pipeline.Hooks{
		OnFilesScanned: func(total int) {
			if !cfg.Verbose && !cfg.Simulate && total > 0 {
				bar = pb.StartNew(total)
				log.SetProgressBar(true)
			}
		},
		OnProgress: func(file string) {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	if cfg.Simulate {
		colorWarning.Println("SIMULATE MODE - no files will be modified")
	}

	err = p.Run(sh.Context())

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if err != nil {
		return err
	}

	if cfg.CleanupEmpty {
		removed, err := p.CleanupEmptyFolders()
		if err != nil {
			log.Warn("cleanup failed: %v", err)
		} else if len(removed) > 0 {
			log.Info("Removed %d empty folders", len(removed))
		}
	}

	printSummary(p)
	return nil
}

func printSummary(p *pipeline.Pipeline) {
	rep := p.Report()
	stats := rep.Statistics

	colorHeader.Println("\n=== Cataloging complete ===")
	fmt.Printf("  Processed:     %d\n", stats.Processed)
	colorSuccess.Printf("  Moved:         %d\n", stats.Moved)
	if stats.TagsUpdated > 0 {
		fmt.Printf("  Tags updated:  %d\n", stats.TagsUpdated)
	}
	if stats.Uncatalogued > 0 {
		colorWarning.Printf("  Uncatalogued:  %d\n", stats.Uncatalogued)
	}
	if stats.Failed > 0 {
		colorWarning.Printf("  Failed:        %d\n", stats.Failed)
	}
	fmt.Printf("  Genres found:  %d\n", stats.GenresFound)
	fmt.Printf("  Cache hits:    %d\n", stats.CacheHits)
	fmt.Printf("  API calls:     %d\n", stats.APICalls)

	if len(rep.GenreCounts) > 0 {
		colorHeader.Println("\nGenre distribution:")
		for _, folder := range sortedKeys(rep.GenreCounts) {
			fmt.Printf("  %-24s %d\n", folder, rep.GenreCounts[folder])
		}
	}
}

func analyze(p *pipeline.Pipeline, cfg config.Config) error {
	counts, loose, err := p.Analyze()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	colorHeader.Printf("=== Collection analysis: %s ===\n", cfg.BasePath)
	fmt.Printf("  Uncataloged files in root: %d\n", loose)

	if len(counts) == 0 {
		colorWarning.Println("  No genre folders yet")
		return nil
	}

	colorHeader.Println("\nFiles per genre folder:")
	for _, folder := range sortedKeys(counts) {
		fmt.Printf("  %-24s %d\n", folder, counts[folder])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
