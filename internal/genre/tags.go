package genre

import (
	"regexp"
	"strings"
)

// knownGenreTags is the allow-list for provider folksonomy tags.
var knownGenreTags = map[string]bool{
	"rock": true, "pop": true, "jazz": true, "blues": true,
	"classical": true, "electronic": true, "hip hop": true,
	"country": true, "folk": true, "reggae": true, "metal": true,
	"punk": true, "alternative": true, "indie": true,
	"soul": true, "funk": true, "disco": true, "house": true,
	"techno": true, "trance": true, "ambient": true,
	"salsa": true, "bachata": true, "merengue": true, "reggaeton": true,
	"latin": true, "tropical": true, "cumbia": true, "tango": true,
	"bossa nova": true, "samba": true, "mambo": true, "cha cha": true,
	"world": true, "experimental": true, "soundtrack": true, "vocal": true,
}

// excludedTags are folksonomy noise: moods, decades, and personal labels
// that look like genres but are not. The deny-list wins over the allow-list
// and over pattern matching.
var excludedTags = map[string]bool{
	"male vocalists": true, "female vocalists": true, "seen live": true,
	"favorite": true, "love": true, "beautiful": true, "relaxing": true,
	"energetic": true, "happy": true, "sad": true,
	"classic": true, "old": true, "new": true,
	"80s": true, "90s": true, "2000s": true, "decade": true,
	"album": true, "single": true, "ep": true, "live": true,
	"remix": true, "cover": true, "instrumental": true,
}

// genreTagPatterns catch compound genres the allow-list cannot enumerate
// ("garage rock", "neo soul", "deep house").
var genreTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\w+ rock$`),
	regexp.MustCompile(`^\w+ pop$`),
	regexp.MustCompile(`^\w+ jazz$`),
	regexp.MustCompile(`^\w+ metal$`),
	regexp.MustCompile(`^neo \w+$`),
	regexp.MustCompile(`^post \w+$`),
	regexp.MustCompile(`^alt \w+$`),
	regexp.MustCompile(`^indie \w+$`),
	regexp.MustCompile(`^\w+ house$`),
	regexp.MustCompile(`^\w+ techno$`),
	regexp.MustCompile(`^\w+ trance$`),
}

// IsGenreTag reports whether a free-text provider tag plausibly names a
// music genre. Deny-list first, then the allow-list (including containment
// with known genres), then the compound patterns as a last resort.
func IsGenreTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}

	if excludedTags[tag] {
		return false
	}

	if knownGenreTags[tag] {
		return true
	}
	for known := range knownGenreTags {
		if strings.Contains(tag, known) || strings.Contains(known, tag) {
			return true
		}
	}

	for _, p := range genreTagPatterns {
		if p.MatchString(tag) {
			return true
		}
	}
	return false
}

// genrePriority ranks candidate genres from most specific to most generic.
// Regional genres outrank broad ones so a track tagged both "salsa" and
// "latin" files under the former.
var genrePriority = []string{
	"salsa", "bachata", "merengue", "reggaeton", "cumbia", "mambo",
	"tango", "bossa nova", "samba", "tropical", "vallenato",

	"jazz fusion", "progressive rock", "death metal", "drum and bass",
	"deep house", "tech house", "minimal techno",

	"rock", "pop", "jazz", "blues", "electronic", "hip hop",
	"metal", "reggae", "folk", "country", "classical",

	"alternative", "indie", "experimental", "world",
}

// SelectPrimary picks one genre out of an ordered candidate list using the
// priority ladder; candidates tie-break by first-seen order and an empty
// list yields "". Candidates that match no rung fall back to the first one.
func SelectPrimary(genres []string) string {
	if len(genres) == 0 {
		return ""
	}

	for _, priority := range genrePriority {
		for _, g := range genres {
			if g == priority || strings.Contains(g, priority) {
				return g
			}
		}
	}
	return genres[0]
}
