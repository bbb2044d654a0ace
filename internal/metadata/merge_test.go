package metadata

import "testing"

func TestMerge_PriorityOrder(t *testing.T) {
	existing := Record{Title: "From Tags", Artist: "Tag Artist"}
	external := Record{Title: "From Provider", Artist: "Provider Artist", Album: "Provider Album", Genre: "salsa"}
	guess := Record{Title: "From Filename", Artist: "File Artist", TrackNum: "03"}

	got := Merge(existing, external, guess)

	if got.Title != "From Tags" {
		t.Errorf("Title = %q, embedded tags must win", got.Title)
	}
	if got.Artist != "Tag Artist" {
		t.Errorf("Artist = %q, embedded tags must win", got.Artist)
	}
	if got.Album != "Provider Album" {
		t.Errorf("Album = %q, provider fills gaps", got.Album)
	}
	if got.Genre != "salsa" {
		t.Errorf("Genre = %q, provider fills gaps", got.Genre)
	}
	if got.TrackNum != "03" {
		t.Errorf("TrackNum = %q, filename guess fills remaining gaps", got.TrackNum)
	}
}

func TestMerge_EmptyFieldDoesNotShadow(t *testing.T) {
	existing := Record{Title: "   ", Genre: ""}
	external := Record{Title: "Real Title", Genre: "jazz"}

	got := Merge(existing, external, Record{})
	if got.Title != "Real Title" {
		t.Errorf("Title = %q, whitespace-only value must not shadow", got.Title)
	}
	if got.Genre != "jazz" {
		t.Errorf("Genre = %q, empty value must not shadow", got.Genre)
	}
}

func TestMerge_YearChain(t *testing.T) {
	tests := []struct {
		name     string
		existing Record
		external Record
		guess    Record
		want     string
	}{
		{"tags win", Record{Year: "1975"}, Record{Year: "1976", EstimatedYear: "1977"}, Record{Year: "1978"}, "1975"},
		{"provider year over estimate", Record{}, Record{Year: "1976", EstimatedYear: "1977"}, Record{}, "1976"},
		{"estimate over guess", Record{}, Record{EstimatedYear: "1977"}, Record{Year: "1978"}, "1977"},
		{"guess last", Record{}, Record{}, Record{Year: "1978"}, "1978"},
		{"nothing", Record{}, Record{}, Record{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.existing, tt.external, tt.guess); got.Year != tt.want {
				t.Errorf("Year = %q, want %q", got.Year, tt.want)
			}
		})
	}
}

func TestMerge_BPMPrefersMeasured(t *testing.T) {
	tests := []struct {
		name     string
		existing Record
		external Record
		want     int
	}{
		{"tag bpm wins", Record{BPM: 120}, Record{BPM: 100, EstimatedBPM: 90}, 120},
		{"provider bpm over estimate", Record{}, Record{BPM: 100, EstimatedBPM: 90}, 100},
		{"estimate last", Record{}, Record{EstimatedBPM: 90}, 90},
		{"nothing", Record{}, Record{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.existing, tt.external, Record{}); got.BPM != tt.want {
				t.Errorf("BPM = %d, want %d", got.BPM, tt.want)
			}
		})
	}
}

func TestMerge_Duration(t *testing.T) {
	got := Merge(Record{}, Record{Duration: 251.4}, Record{})
	if got.Duration != 251.4 {
		t.Errorf("Duration = %v, want 251.4", got.Duration)
	}

	got = Merge(Record{Duration: 250}, Record{Duration: 260}, Record{})
	if got.Duration != 250 {
		t.Errorf("Duration = %v, tag duration must win", got.Duration)
	}
}

func TestMerge_CopiesAllGenres(t *testing.T) {
	external := Record{AllGenres: []string{"salsa", "latin"}}
	got := Merge(Record{}, external, Record{})

	external.AllGenres[0] = "mutated"
	if got.AllGenres[0] != "salsa" {
		t.Error("AllGenres must be copied, not aliased")
	}
}
