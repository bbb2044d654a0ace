// Package pipeline orchestrates a cataloging run: scan, resolve, merge,
// normalize, relocate, report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mp3catalog/internal/cache"
	"mp3catalog/internal/config"
	"mp3catalog/internal/genre"
	"mp3catalog/internal/logger"
	"mp3catalog/internal/metadata"
	"mp3catalog/internal/provider"
	"mp3catalog/internal/provider/lastfm"
	"mp3catalog/internal/provider/musicbrainz"
	"mp3catalog/internal/ratelimit"
	"mp3catalog/internal/relocate"
	"mp3catalog/internal/report"
	"mp3catalog/internal/resolver"
	"mp3catalog/internal/tempo"
	"mp3catalog/pkg/utils"
)

// Hooks let a frontend (CLI progress bar, web job monitor) observe a run.
type Hooks struct {
	OnFilesScanned func(total int)
	OnProgress     func(file string)
	OnWarning      func(msg string)
}

// Pipeline holds the wired components for one run over one collection.
// The TagReader and tempo Estimator fields are settable so environments
// without the native tag library (or without an API key) degrade cleanly.
type Pipeline struct {
	cfg   config.Config
	log   *logger.Logger
	Hooks Hooks

	Tags  metadata.TagReader
	Tempo tempo.Estimator

	resolver   *resolver.Resolver
	classifier *genre.Classifier
	relocator  *relocate.Relocator
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	report     *report.Report

	genreMemoStart int
}

// New wires a pipeline from the configuration: cache (purged if stale,
// then loaded), shared rate limiter, provider chain, classifier seeded
// from the persisted genre memo, and relocator.
func New(cfg config.Config, log *logger.Logger) (*Pipeline, error) {
	cachePath := cfg.CachePath()
	if cfg.CacheMaxAgeDays > 0 {
		maxAge := time.Duration(cfg.CacheMaxAgeDays) * 24 * time.Hour
		if removed, err := cache.PurgeIfOlderThan(cachePath, maxAge); err != nil {
			log.Warn("cache purge check failed: %v", err)
		} else if removed {
			log.Info("Discarded cache older than %d days", cfg.CacheMaxAgeDays)
		}
	}

	c := cache.New(cfg.BasePath)
	if mismatch, err := c.Load(cachePath); err != nil {
		log.Warn("starting with an empty cache: %v", err)
	} else if mismatch {
		log.Warn("cache was built for a different collection path; results may be stale")
	}

	limiter := ratelimit.New(map[string]rate.Limit{
		musicbrainz.ProviderName: rate.Every(cfg.MusicBrainzDelay()),
		lastfm.ProviderName:      rate.Every(cfg.LastFMDelay()),
	})

	providers := []provider.Provider{musicbrainz.New(limiter)}
	if cfg.LastFMAPIKey != "" {
		providers = append(providers, lastfm.New(cfg.LastFMAPIKey, limiter))
	}

	p := &Pipeline{
		cfg:        cfg,
		log:        log,
		Tags:       metadata.TaglibReader{},
		Tempo:      tempo.NewSongBPM(cfg.SongBPMAPIKey),
		resolver:   resolver.New(providers, c, log, cfg.ExternalLookups),
		classifier: genre.NewClassifier(cfg.FallbackGenre, c.GenreMemo()),
		relocator:  relocate.New(cfg.BasePath, cfg.Simulate, log),
		cache:      c,
		limiter:    limiter,
		report: report.New(cfg.BasePath, map[string]any{
			"simulate":             cfg.Simulate,
			"external_lookups":     cfg.ExternalLookups,
			"update_tags":          cfg.UpdateTags,
			"unknown_genre_policy": cfg.UnknownPolicy,
		}),
		genreMemoStart: c.GenreLen(),
	}
	return p, nil
}

// Report exposes the run report for frontends.
func (p *Pipeline) Report() *report.Report { return p.report }

// Run processes every loose audio file in the collection root. The file
// list is fixed at scan time; files that vanish mid-run (another process,
// a previous simulate target made real) are skipped, not failed.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	files, err := listFiles(p.cfg.BasePath)
	if err != nil {
		return fmt.Errorf("failed to scan collection: %w", err)
	}
	p.log.Info("Found %d files to catalog in %s", len(files), p.cfg.BasePath)
	if p.Hooks.OnFilesScanned != nil {
		p.Hooks.OnFilesScanned(len(files))
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			p.log.Warn("run interrupted after %d files", p.report.Statistics.Processed)
			break
		}

		if _, err := os.Stat(file); err != nil {
			p.log.Debug("skipping vanished file %s", filepath.Base(file))
			continue
		}

		p.processFile(ctx, file)

		if p.Hooks.OnProgress != nil {
			p.Hooks.OnProgress(filepath.Base(file))
		}
	}

	p.report.Statistics.CacheHits = p.cache.Hits()
	p.report.Statistics.APICalls = p.limiter.Calls()
	p.report.SetDuration(time.Since(start))

	if p.cache.GenreLen() > p.genreMemoStart {
		p.cache.MarkDirty()
	}
	return p.Flush()
}

// processFile takes one file through the full chain: tags, filename
// guess, external lookup, merge, validation, optional tag write, genre
// normalization, relocation.
func (p *Pipeline) processFile(ctx context.Context, file string) {
	p.report.Statistics.Processed++
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	existing, err := p.Tags.ReadTags(file)
	if err != nil {
		p.log.Debug("could not read tags from %s: %v", base, err)
		existing = metadata.Record{}
	}

	guess := metadata.GuessFromFilename(stem)

	query := metadata.Query{
		Artist: firstOf(existing.Artist, guess.Artist),
		Title:  firstOf(existing.Title, guess.Title),
		Album:  existing.Album,
	}

	var external metadata.Record
	if rec := p.resolver.Resolve(ctx, query); rec != nil {
		external = *rec
	}

	merged := metadata.Validate(metadata.Merge(existing, external, guess))

	// Tempo estimation runs before the write-back so an estimated BPM
	// lands in the file too.
	if merged.BPM == 0 && p.cfg.ExternalLookups {
		if bpm, err := p.Tempo.Estimate(ctx, query); err != nil {
			p.log.Debug("tempo estimate failed for %s: %v", base, err)
		} else if bpm > 0 {
			merged.BPM = bpm
		}
	}

	if p.cfg.UpdateTags && !p.cfg.Simulate && !p.cfg.AnalyzeOnly && tagsChanged(existing, merged) {
		if err := metadata.WriteTags(file, merged); err != nil {
			p.log.Warn("failed to update tags on %s: %v", base, err)
		} else {
			p.report.Statistics.TagsUpdated++
			p.log.Debug("updated tags on %s", base)
		}
	}

	canonical, raw := p.classifyGenre(merged, stem)
	if canonical == "" {
		p.handleUnknown(file, merged)
		return
	}

	folder := relocate.DestFolder(canonical, raw)
	p.fileUnder(file, folder, merged, "")
}

// classifyGenre normalizes the merged genre, falling back through the
// full candidate list and finally to text inference. raw is the string
// the winning normalization came from, for sub-genre folding.
func (p *Pipeline) classifyGenre(rec metadata.Record, stem string) (canonical, raw string) {
	if c := p.classifier.Normalize(rec.Genre); c != "" {
		return c, rec.Genre
	}
	for _, g := range rec.AllGenres {
		if c := p.classifier.Normalize(g); c != "" {
			return c, g
		}
	}
	if c := p.classifier.InferFromText(rec.Artist + " " + stem); c != "" {
		return c, ""
	}
	return "", ""
}

// handleUnknown applies the configured policy to a file with no
// resolvable genre.
func (p *Pipeline) handleUnknown(file string, rec metadata.Record) {
	base := filepath.Base(file)

	if p.cfg.UnknownPolicy == config.UnknownPolicySkip {
		p.report.Statistics.Skipped++
		p.report.AddUncatalogued(file, "no genre resolved; left in place", rec)
		p.log.Debug("no genre for %s, leaving in place", base)
		return
	}

	p.report.AddUncatalogued(file, "no genre resolved", rec)
	p.fileUnder(file, p.cfg.UnknownFolder, rec, " (genre unknown)")
}

func (p *Pipeline) fileUnder(file, folder string, rec metadata.Record, note string) {
	base := filepath.Base(file)

	if p.cfg.AnalyzeOnly {
		p.report.CountGenre(folder)
		p.log.Info("%s -> %s%s [analyze only]", base, folder, note)
		return
	}

	if _, err := p.relocator.Move(file, folder); err != nil {
		p.report.Statistics.Failed++
		msg := fmt.Sprintf("failed to move %s: %v", base, err)
		p.log.Warn(msg)
		if p.Hooks.OnWarning != nil {
			p.Hooks.OnWarning(msg)
		}
		return
	}

	p.report.Statistics.Moved++
	p.report.CountGenre(folder)
	p.log.Debug("%s -> %s%s", base, folder, note)
}

// Analyze reports the current shape of the collection without changing
// anything: files per genre folder plus the loose files still waiting in
// the root.
func (p *Pipeline) Analyze() (map[string]int, int, error) {
	loose, err := listFiles(p.cfg.BasePath)
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int)
	entries, err := os.ReadDir(p.cfg.BasePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", p.cfg.BasePath, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := countAudioFiles(filepath.Join(p.cfg.BasePath, entry.Name()))
		if err != nil {
			continue
		}
		if n > 0 {
			counts[entry.Name()] = n
		}
	}
	return counts, len(loose), nil
}

// CleanupEmptyFolders removes genre folders left empty, typically after
// files were re-cataloged elsewhere.
func (p *Pipeline) CleanupEmptyFolders() ([]string, error) {
	return p.relocator.CleanupEmptyFolders()
}

// Flush persists the cache (when it changed) and the run report. It is
// safe to call more than once and is also the shutdown path.
func (p *Pipeline) Flush() error {
	if p.cache.Dirty() {
		if err := p.cache.Save(p.cfg.CachePath()); err != nil {
			p.log.Warn("failed to save cache: %v", err)
		} else {
			p.log.Debug("cache saved: %d entries, %d genre memos", p.cache.Len(), p.cache.GenreLen())
		}
	}

	path, err := p.report.Save(p.cfg.ReportPath())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	p.log.Info("Report written to %s", path)
	return nil
}

func listFiles(dir string) ([]string, error) {
	return utils.ListAudioFiles(dir)
}

func countAudioFiles(dir string) (int, error) {
	n := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && utils.IsAudioFile(path) {
			n++
		}
		return nil
	})
	return n, err
}

// tagsChanged reports whether the merge improved on what the file
// already carried, looking only at the fields that get written back.
func tagsChanged(existing, merged metadata.Record) bool {
	return existing.Title != merged.Title ||
		existing.Artist != merged.Artist ||
		existing.Album != merged.Album ||
		existing.Year != merged.Year ||
		existing.Genre != merged.Genre ||
		existing.TrackNum != merged.TrackNum ||
		existing.BPM != merged.BPM
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
