package metadata

// Record contains metadata for a single audio file. A Record is a value
// type: each source (embedded tags, external provider, filename guess)
// produces its own Record, and merging copies fields into a fresh one.
// The zero value of a field means "absent".
type Record struct {
	Title    string
	Artist   string
	Album    string
	Year     string // 4-digit year once validated
	Genre    string // free text until classified
	TrackNum string
	BPM      int     // beats per minute, 0 when unknown
	Duration float64 // seconds, 0 when unknown

	// Diagnostic fields populated by external providers only.
	AllGenres     []string // deduplicated candidate genre tags, capped
	EstimatedYear string   // year derived indirectly (e.g. album wiki text)
	EstimatedBPM  int      // tempo from an estimator rather than a tag
}

// IsZero reports whether no field of the record carries a value.
func (r Record) IsZero() bool {
	return r.Title == "" && r.Artist == "" && r.Album == "" &&
		r.Year == "" && r.Genre == "" && r.TrackNum == "" &&
		r.BPM == 0 && r.Duration == 0 &&
		len(r.AllGenres) == 0 && r.EstimatedYear == "" && r.EstimatedBPM == 0
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.AllGenres != nil {
		out.AllGenres = append([]string(nil), r.AllGenres...)
	}
	return out
}

// Query identifies a track for an external provider lookup.
type Query struct {
	Artist string
	Title  string
	Album  string
}

// TagReader reads embedded tags from an audio file. Implementations that
// cannot parse a file return an error; the pipeline falls through to the
// next metadata source instead of abandoning the file.
type TagReader interface {
	ReadTags(path string) (Record, error)
}
