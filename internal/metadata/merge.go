package metadata

import "strings"

// Merge combines the three source records into one under a fixed priority:
// embedded tags beat the external provider, which beats the filename guess.
// Empty values are skipped at every level, so a present-but-empty field
// never shadows a later non-empty source.
func Merge(existing, external, guess Record) Record {
	var out Record

	out.Title = firstNonEmpty(existing.Title, external.Title, guess.Title)
	out.Artist = firstNonEmpty(existing.Artist, external.Artist, guess.Artist)
	out.Album = firstNonEmpty(existing.Album, external.Album, guess.Album)
	out.Genre = firstNonEmpty(existing.Genre, external.Genre, guess.Genre)
	out.TrackNum = firstNonEmpty(existing.TrackNum, external.TrackNum, guess.TrackNum)

	// Year falls back through the provider's estimated year before the
	// filename guess.
	out.Year = firstNonEmpty(existing.Year, external.Year, external.EstimatedYear, guess.Year)

	// Filename guesses never carry a duration, and zero or negative values
	// are not valid ones.
	if existing.Duration > 0 {
		out.Duration = existing.Duration
	} else if external.Duration > 0 {
		out.Duration = external.Duration
	}

	// A measured BPM from either source beats an estimated one.
	switch {
	case existing.BPM > 0:
		out.BPM = existing.BPM
	case external.BPM > 0:
		out.BPM = external.BPM
	case external.EstimatedBPM > 0:
		out.BPM = external.EstimatedBPM
	}

	if len(external.AllGenres) > 0 {
		out.AllGenres = append([]string(nil), external.AllGenres...)
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
