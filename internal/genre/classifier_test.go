package genre

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact match", "rock", "Rock"},
		{"case and whitespace", "  ROCK  ", "Rock"},
		{"salsa maps to latin", "salsa", "Latin"},
		{"latin pop stays latin not pop", "latin pop", "Latin"},
		{"compound via containment", "garage rock revival", "Rock"},
		{"input contained in key", "merengu", "Latin"},
		{"word level fallback", "finest vintage salsa", "Latin"},
		{"hip hop", "Hip Hop", "Hip Hop"},
		{"neo soul", "neo soul", "R&B"},
		{"unmatched falls back", "birdsong field recordings", "Other"},
		{"empty stays empty", "", ""},
	}

	c := NewClassifier("", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	c := NewClassifier("", nil)
	for i := 0; i < 10; i++ {
		if got := c.Normalize("alternative rock"); got != "Rock" {
			t.Fatalf("iteration %d: Normalize = %q, want Rock", i, got)
		}
	}
}

func TestNormalize_Memoizes(t *testing.T) {
	memo := make(map[string]string)
	c := NewClassifier("", memo)

	c.Normalize("Progressive Rock")
	if memo["progressive rock"] != "Rock" {
		t.Errorf("memo = %v, want progressive rock -> Rock", memo)
	}

	c.Normalize("tuba ensembles")
	if memo["tuba ensembles"] != "Other" {
		t.Error("fallback answers must be memoized too")
	}
}

func TestNormalize_SharedMemoWins(t *testing.T) {
	// A persisted memo answer beats a fresh taxonomy lookup.
	memo := map[string]string{"rock": "Metal"}
	c := NewClassifier("", memo)
	if got := c.Normalize("rock"); got != "Metal" {
		t.Errorf("Normalize = %q, want memoized Metal", got)
	}
}

func TestNormalize_CustomFallback(t *testing.T) {
	c := NewClassifier("Misc", nil)
	if got := c.Normalize("birdsong field recordings"); got != "Misc" {
		t.Errorf("Normalize = %q, want Misc", got)
	}
}

func TestInferFromText(t *testing.T) {
	c := NewClassifier("", nil)

	tests := []struct {
		text string
		want string
	}{
		{"Los Titanes - La Fiesta", "Latin"},
		{"El Chiquito de la Calle track07", "Latin"},
		{"Orquesta Tropical", "Latin"},
		{"Pink Floyd - Time", ""},
	}

	for _, tt := range tests {
		if got := c.InferFromText(tt.text); got != tt.want {
			t.Errorf("InferFromText(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSubGenreParent(t *testing.T) {
	tests := []struct {
		raw    string
		parent string
		ok     bool
	}{
		{"salsa", "Latin", true},
		{"BACHATA", "Latin", true},
		{"  merengue  ", "Latin", true},
		{"latin pop", "", false},
		{"rock", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		parent, ok := SubGenreParent(tt.raw)
		if parent != tt.parent || ok != tt.ok {
			t.Errorf("SubGenreParent(%q) = (%q, %v), want (%q, %v)", tt.raw, parent, ok, tt.parent, tt.ok)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"bachata", "Bachata"},
		{"SALSA", "Salsa"},
		{" cumbia ", "Cumbia"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
