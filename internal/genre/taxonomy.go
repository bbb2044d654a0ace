package genre

// taxonomyEntry maps a lowercased free-text genre key to its canonical
// folder name.
type taxonomyEntry struct {
	key       string
	canonical string
}

// taxonomy is scanned in declaration order during containment matching, so
// the order is policy, not accident: multi-word genres must be declared
// before the generic genres they contain ("latin pop" before "pop",
// "punk rock" before "rock"). Exact lookups are unaffected.
var taxonomy = []taxonomyEntry{
	// Latin family
	{"salsa", "Latin"},
	{"bachata", "Latin"},
	{"merengue", "Latin"},
	{"reggaeton", "Latin"},
	{"cumbia", "Latin"},
	{"vallenato", "Latin"},
	{"mambo", "Latin"},
	{"cha cha", "Latin"},
	{"tango", "Latin"},
	{"bossa nova", "Latin"},
	{"samba", "Latin"},
	{"tropical", "Latin"},
	{"latin pop", "Latin"},
	{"latin rock", "Latin"},
	{"latino", "Latin"},
	{"latin", "Latin"},

	// Rock family
	{"alternative rock", "Rock"},
	{"indie rock", "Rock"},
	{"classic rock", "Rock"},
	{"hard rock", "Rock"},
	{"soft rock", "Rock"},
	{"folk rock", "Rock"},
	{"punk rock", "Rock"},
	{"progressive rock", "Rock"},
	{"rock", "Rock"},

	// Pop family
	{"pop rock", "Pop"},
	{"indie pop", "Pop"},
	{"dance pop", "Pop"},
	{"electropop", "Pop"},
	{"synthpop", "Pop"},
	{"pop", "Pop"},

	// Electronic family
	{"drum and bass", "Electronic"},
	{"dnb", "Electronic"},
	{"electronic", "Electronic"},
	{"electro", "Electronic"},
	{"techno", "Electronic"},
	{"house", "Electronic"},
	{"trance", "Electronic"},
	{"ambient", "Electronic"},
	{"dubstep", "Electronic"},
	{"edm", "Electronic"},

	// Hip hop
	{"hip hop", "Hip Hop"},
	{"hip-hop", "Hip Hop"},
	{"rap", "Hip Hop"},
	{"trap", "Hip Hop"},

	// R&B and soul
	{"neo soul", "R&B"},
	{"neo-soul", "R&B"},
	{"r&b", "R&B"},
	{"rnb", "R&B"},
	{"soul", "R&B"},

	// Jazz
	{"smooth jazz", "Jazz"},
	{"bebop", "Jazz"},
	{"fusion", "Jazz"},
	{"jazz", "Jazz"},

	// Classical
	{"classical", "Classical"},
	{"orchestra", "Classical"},
	{"symphony", "Classical"},
	{"classic", "Classical"},

	// Reggae
	{"dancehall", "Reggae"},
	{"reggae", "Reggae"},
	{"dub", "Reggae"},

	// Country and folk
	{"country", "Country"},
	{"acoustic", "Folk"},
	{"folk", "Folk"},

	// Metal
	{"heavy metal", "Metal"},
	{"death metal", "Metal"},
	{"black metal", "Metal"},
	{"metal", "Metal"},

	{"blues", "Blues"},

	// Catch-alls
	{"alternative", "Alternative"},
	{"indie", "Indie"},
	{"experimental", "Experimental"},
	{"soundtrack", "Soundtrack"},
	{"vocal", "Vocal"},
}

// subGenres lists, per canonical parent, the raw genre tokens that get
// their own sub-folder under the parent at placement time. Classification
// is unaffected: "bachata" still normalizes to "Latin".
var subGenres = map[string][]string{
	"Latin": {"salsa", "bachata", "merengue", "cumbia", "reggaeton", "tropical"},
}

// latinIndicators are substrings of artist names or filenames that mark a
// track as Latin when tags and providers gave no usable genre.
var latinIndicators = []string{
	"chiquito", "salsa", "bachata", "merengue", "reggaeton",
	"tropical", "titanes", "latinos",
}
