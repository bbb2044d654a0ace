// Package report renders the end-of-run cataloging report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mp3catalog/internal/metadata"
)

// Uncatalogued describes a file the run could not file under a genre,
// with whatever metadata was recovered before giving up.
type Uncatalogued struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`

	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

// Stats accumulates counters over a run.
type Stats struct {
	Processed    int `json:"processed"`
	Moved        int `json:"moved"`
	TagsUpdated  int `json:"tags_updated"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	Uncatalogued int `json:"uncatalogued"`
	GenresFound  int `json:"genres_found"`
	CacheHits    int `json:"cache_hits"`
	APICalls     int `json:"api_calls"`
}

// Report is the JSON document written at the end of a run.
type Report struct {
	Timestamp     string            `json:"timestamp"`
	BasePath      string            `json:"base_path"`
	Configuration map[string]any    `json:"configuration"`
	Statistics    Stats             `json:"statistics"`
	GenreCounts   map[string]int    `json:"genre_distribution"`
	Uncatalogued  []Uncatalogued    `json:"uncatalogued_files"`
	Performance   map[string]string `json:"performance_metrics"`

	// stamp fixes the report filename at creation so repeated saves of
	// the same run overwrite one file instead of accumulating.
	stamp string
}

// New creates an empty report for a run over basePath.
func New(basePath string, configuration map[string]any) *Report {
	now := time.Now()
	return &Report{
		Timestamp:     now.Format(time.RFC3339),
		BasePath:      basePath,
		Configuration: configuration,
		GenreCounts:   make(map[string]int),
		Performance:   make(map[string]string),
		stamp:         now.Format("20060102_150405"),
	}
}

// CountGenre increments the distribution counter for a genre folder.
func (r *Report) CountGenre(folder string) {
	if r.GenreCounts[folder] == 0 {
		r.Statistics.GenresFound++
	}
	r.GenreCounts[folder]++
}

// AddUncatalogued records a file that could not be filed, keeping the
// partial record for the report.
func (r *Report) AddUncatalogued(path, reason string, rec metadata.Record) {
	r.Statistics.Uncatalogued++
	r.Uncatalogued = append(r.Uncatalogued, Uncatalogued{
		Path:   path,
		Reason: reason,
		Title:  rec.Title,
		Artist: rec.Artist,
		Album:  rec.Album,
		Genre:  rec.Genre,
	})
}

// SetDuration records the wall-clock metrics for the run.
func (r *Report) SetDuration(elapsed time.Duration) {
	r.Performance["elapsed"] = elapsed.Round(time.Millisecond).String()
	if r.Statistics.Processed > 0 {
		per := elapsed / time.Duration(r.Statistics.Processed)
		r.Performance["per_file"] = per.Round(time.Millisecond).String()
	}
}

// Save writes the report as indented JSON into dir and returns the file
// path, stamped per run so consecutive runs never overwrite each other.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("catalog_report_%s.json", r.stamp)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
