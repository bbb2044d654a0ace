package genre

import (
	"strings"
	"unicode"
)

// DefaultFallback is the canonical genre assigned to strings the taxonomy
// does not recognize.
const DefaultFallback = "Other"

// Classifier normalizes free-text genre strings against the taxonomy and
// memoizes every answer. It is owned by a single pipeline instance; the
// memo map may be shared with the persistent cache so normalizations
// survive across runs.
type Classifier struct {
	exact    map[string]string
	memo     map[string]string
	fallback string
}

// NewClassifier creates a Classifier. fallback is returned for unmatched
// genres (empty means DefaultFallback). memo, when non-nil, is used as the
// normalization memo in place of a fresh map, letting the caller persist it.
func NewClassifier(fallback string, memo map[string]string) *Classifier {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if memo == nil {
		memo = make(map[string]string)
	}
	exact := make(map[string]string, len(taxonomy))
	for _, e := range taxonomy {
		exact[e.key] = e.canonical
	}
	return &Classifier{exact: exact, memo: memo, fallback: fallback}
}

// Normalize maps a free-text genre to its canonical name. Empty input
// returns "" so the caller decides the fallback policy; everything else
// resolves deterministically and never fails. Results, including fallback
// answers, are memoized under the lowercased input.
func (c *Classifier) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}

	if cached, ok := c.memo[key]; ok {
		return cached
	}

	normalized := c.lookup(key)
	c.memo[key] = normalized
	return normalized
}

func (c *Classifier) lookup(key string) string {
	// Exact match wins outright.
	if canonical, ok := c.exact[key]; ok {
		return canonical
	}

	// Containment in either direction, scanning in declaration order so
	// specific entries shadow the generic ones they contain.
	for _, e := range taxonomy {
		if strings.Contains(key, e.key) || strings.Contains(e.key, key) {
			return e.canonical
		}
	}

	// Last resort: any single word of the input that is itself a key.
	for _, word := range strings.Fields(key) {
		if canonical, ok := c.exact[word]; ok {
			return canonical
		}
	}

	return c.fallback
}

// InferFromText guesses a genre from free text (artist name plus filename
// stem) when normalization produced nothing usable. Returns "" when no
// indicator matches.
func (c *Classifier) InferFromText(text string) string {
	text = strings.ToLower(text)
	for _, indicator := range latinIndicators {
		if strings.Contains(text, indicator) {
			return "Latin"
		}
	}
	return ""
}

// SubGenreParent reports the canonical parent of a recognized sub-genre
// token, matched case-insensitively.
func SubGenreParent(raw string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return "", false
	}
	for parent, tokens := range subGenres {
		for _, t := range tokens {
			if t == token {
				return parent, true
			}
		}
	}
	return "", false
}

// Capitalize upper-cases the first rune of a sub-genre token for use as a
// folder name ("bachata" -> "Bachata").
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
