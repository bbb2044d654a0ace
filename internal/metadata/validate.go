package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitPattern = regexp.MustCompile(`\d+`)
)

// BPM values outside this range are treated as tagging noise.
const (
	minBPM = 60
	maxBPM = 200
)

// Validate sanity-checks a merged record field by field. Values that fail
// validation are dropped, not reported: downstream code treats "field
// missing" as the only failure state.
func Validate(rec Record) Record {
	out := rec.Clone()

	out.Title = strings.TrimSpace(out.Title)
	out.Artist = strings.TrimSpace(out.Artist)
	out.Album = strings.TrimSpace(out.Album)
	out.Genre = strings.TrimSpace(out.Genre)

	// Keep only a plausible 4-digit year, wherever it sits in the value
	// ("2003-05-12", "(c) 1987", ...).
	out.Year = yearPattern.FindString(out.Year)

	if out.BPM < minBPM || out.BPM > maxBPM {
		out.BPM = 0
	}

	if m := digitPattern.FindString(out.TrackNum); m != "" {
		out.TrackNum = m
	} else {
		out.TrackNum = ""
	}

	if out.Duration < 0 {
		out.Duration = 0
	}

	return out
}

// ParseBPM parses a free-text tempo value, returning 0 when the value is
// not numeric.
func ParseBPM(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(v)
}
