package metadata

import (
	"regexp"
	"strings"
)

// Filename patterns, tried in order. The numbered-track form must come
// first or the generic dash pattern would swallow the track prefix.
var filenamePatterns = []struct {
	re     *regexp.Regexp
	fields []string
}{
	{regexp.MustCompile(`^(\d+)\.\s*(.+?)\s*[-–—]\s*(.+)$`), []string{"track", "artist", "title"}},
	{regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`), []string{"artist", "title"}},
	{regexp.MustCompile(`^(.+?)\s*_\s*(.+)$`), []string{"artist", "title"}},
}

// GuessFromFilename derives a best-effort partial record from a filename
// stem (no directory, no extension). The first matching pattern wins; when
// nothing matches, the whole stem becomes the title. The returned record
// always has a non-empty Title and the guess never fails.
func GuessFromFilename(stem string) Record {
	stem = strings.TrimSpace(stem)

	var rec Record
	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		for i, field := range p.fields {
			val := strings.TrimSpace(m[i+1])
			switch field {
			case "track":
				rec.TrackNum = val
			case "artist":
				rec.Artist = val
			case "title":
				rec.Title = val
			}
		}
		break
	}

	if rec.Title == "" {
		rec.Title = stem
	}
	return rec
}
