package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"mp3catalog/internal/metadata"
	"mp3catalog/internal/ratelimit"
)

func newTestClient(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiURL:     url,
		apiKey:     "test-key",
		limiter:    ratelimit.New(map[string]rate.Limit{ProviderName: rate.Inf}),
	}
}

func TestLookup_TrackTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("missing api_key parameter")
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("method") {
		case "track.getInfo":
			w.Write([]byte(`{
				"track": {
					"name": "Vivir Mi Vida",
					"duration": "252000",
					"artist": {"name": "Marc Anthony"},
					"album": {"title": "3.0"},
					"toptags": {"tag": [
						{"name": "salsa"},
						{"name": "latin"},
						{"name": "favorite"}
					]}
				}
			}`))
		case "album.getInfo":
			w.Write([]byte(`{
				"album": {
					"name": "3.0",
					"tags": {"tag": []},
					"wiki": {"published": "23 Jul 2013, 14:02"}
				}
			}`))
		default:
			t.Errorf("unexpected method: %s", r.URL.Query().Get("method"))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec, err := c.Lookup(context.Background(), metadata.Query{
		Artist: "Marc Anthony",
		Title:  "Vivir Mi Vida",
	})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record, got nil")
	}

	if rec.Title != "Vivir Mi Vida" {
		t.Errorf("Title = %q, want %q", rec.Title, "Vivir Mi Vida")
	}
	if rec.Artist != "Marc Anthony" {
		t.Errorf("Artist = %q, want %q", rec.Artist, "Marc Anthony")
	}
	if rec.Album != "3.0" {
		t.Errorf("Album = %q, want %q", rec.Album, "3.0")
	}
	if rec.Duration != 252 {
		t.Errorf("Duration = %v, want 252", rec.Duration)
	}
	if rec.Genre != "salsa" {
		t.Errorf("Genre = %q, want %q", rec.Genre, "salsa")
	}
	// "favorite" is a personal label, not a genre.
	if len(rec.AllGenres) != 2 {
		t.Errorf("AllGenres = %v, want [salsa latin]", rec.AllGenres)
	}
	if rec.EstimatedYear != "2013" {
		t.Errorf("EstimatedYear = %q, want %q", rec.EstimatedYear, "2013")
	}
}

func TestLookup_ArtistTagFallback(t *testing.T) {
	artistCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("method") {
		case "track.getInfo":
			w.Write([]byte(`{"track": {"name": "Untagged Song", "artist": {"name": "Someone"}, "toptags": {"tag": []}}}`))
		case "artist.getTopTags":
			artistCalled = true
			w.Write([]byte(`{"toptags": {"tag": [{"name": "bachata"}]}}`))
		default:
			t.Errorf("unexpected method: %s", r.URL.Query().Get("method"))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec, err := c.Lookup(context.Background(), metadata.Query{Artist: "Someone", Title: "Untagged Song"})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !artistCalled {
		t.Error("expected artist tag fallback when track tags are empty")
	}
	if rec.Genre != "bachata" {
		t.Errorf("Genre = %q, want %q", rec.Genre, "bachata")
	}
}

func TestLookup_TrackNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": 6, "message": "Track not found"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec, err := c.Lookup(context.Background(), metadata.Query{Artist: "Nobody", Title: "Nothing"})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for not-found track, got %+v", rec)
	}
}

func TestLookup_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": 10, "message": "Invalid API key"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Lookup(context.Background(), metadata.Query{Artist: "A", Title: "B"})
	if err == nil {
		t.Fatal("expected error for invalid API key response")
	}
}

func TestLookup_NoAPIKey(t *testing.T) {
	c := New("", ratelimit.New(nil))
	_, err := c.Lookup(context.Background(), metadata.Query{Artist: "A", Title: "B"})
	if err == nil {
		t.Fatal("expected error when no API key is configured")
	}
}

func TestLookup_IncompleteQuery(t *testing.T) {
	c := newTestClient("http://unused")
	rec, err := c.Lookup(context.Background(), metadata.Query{Title: "Only a title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record without an artist, got %+v", rec)
	}
}
