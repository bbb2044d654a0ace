package metadata

import "testing"

func TestGuessFromFilename(t *testing.T) {
	tests := []struct {
		name string
		stem string
		want Record
	}{
		{
			name: "numbered track",
			stem: "01. Queen - Bohemian Rhapsody",
			want: Record{TrackNum: "01", Artist: "Queen", Title: "Bohemian Rhapsody"},
		},
		{
			name: "artist dash title",
			stem: "Queen - Bohemian Rhapsody",
			want: Record{Artist: "Queen", Title: "Bohemian Rhapsody"},
		},
		{
			name: "en dash separator",
			stem: "Queen – Bohemian Rhapsody",
			want: Record{Artist: "Queen", Title: "Bohemian Rhapsody"},
		},
		{
			name: "underscore separator",
			stem: "Queen _ Bohemian Rhapsody",
			want: Record{Artist: "Queen", Title: "Bohemian Rhapsody"},
		},
		{
			name: "dash inside title kept",
			stem: "ACDC - Shoot to Thrill - Live",
			want: Record{Artist: "ACDC", Title: "Shoot to Thrill - Live"},
		},
		{
			name: "no separator becomes title",
			stem: "track07",
			want: Record{Title: "track07"},
		},
		{
			name: "whitespace trimmed",
			stem: "  Queen - Bohemian Rhapsody  ",
			want: Record{Artist: "Queen", Title: "Bohemian Rhapsody"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuessFromFilename(tt.stem)
			if got.TrackNum != tt.want.TrackNum || got.Artist != tt.want.Artist || got.Title != tt.want.Title {
				t.Errorf("GuessFromFilename(%q) = %+v, want %+v", tt.stem, got, tt.want)
			}
		})
	}
}

func TestGuessFromFilename_AlwaysHasTitle(t *testing.T) {
	for _, stem := range []string{"", "   ", "x", "-"} {
		got := GuessFromFilename(stem)
		if stem != "" && stem != "   " && got.Title == "" {
			t.Errorf("GuessFromFilename(%q) produced empty title", stem)
		}
	}
}
