// Package lastfm queries the Last.fm scrobbling database for track
// metadata and crowd-sourced genre tags.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mp3catalog/internal/genre"
	"mp3catalog/internal/metadata"
	"mp3catalog/internal/ratelimit"
)

// ProviderName is the rate-limiter and cache-key identifier for this
// provider.
const ProviderName = "lastfm"

const maxGenreTags = 5

var publishedYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Client is a Last.fm API client that implements provider.Provider. It
// requires an API key; without one Lookup reports an error so the caller
// can skip the provider entirely.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	limiter    *ratelimit.Limiter
}

// New creates a Last.fm client. apiKey may be empty, in which case every
// Lookup fails fast.
func New(apiKey string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://ws.audioscrobbler.com/2.0/",
		apiKey:     apiKey,
		limiter:    limiter,
	}
}

func (c *Client) Name() string { return ProviderName }

// Lookup fetches track info and harvests genre tags, preferring the
// track's own tags, then the artist's, then the album's. The album info
// call doubles as a year estimate source via its wiki publication date.
func (c *Client) Lookup(ctx context.Context, query metadata.Query) (*metadata.Record, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("lastfm: no API key configured")
	}
	if query.Artist == "" || query.Title == "" {
		return nil, nil
	}

	var trackResp trackInfoResponse
	err := c.call(ctx, map[string]string{
		"method": "track.getInfo",
		"artist": query.Artist,
		"track":  query.Title,
	}, &trackResp)
	if err != nil {
		return nil, err
	}
	if trackResp.Track.Name == "" {
		return nil, nil
	}

	rec := &metadata.Record{
		Title:  trackResp.Track.Name,
		Artist: trackResp.Track.Artist.Name,
		Album:  trackResp.Track.Album.Title,
	}
	if ms, err := strconv.Atoi(trackResp.Track.Duration); err == nil && ms > 0 {
		rec.Duration = float64(ms) / 1000
	}

	genres := filterTags(trackResp.Track.TopTags.Tag)

	if len(genres) == 0 {
		var artistResp artistTagsResponse
		if err := c.call(ctx, map[string]string{
			"method": "artist.getTopTags",
			"artist": query.Artist,
		}, &artistResp); err == nil {
			genres = filterTags(artistResp.TopTags.Tag)
		}
	}

	album := rec.Album
	if album == "" {
		album = query.Album
	}
	if album != "" {
		var albumResp albumInfoResponse
		if err := c.call(ctx, map[string]string{
			"method": "album.getInfo",
			"artist": query.Artist,
			"album":  album,
		}, &albumResp); err == nil {
			if len(genres) == 0 {
				genres = filterTags(albumResp.Album.Tags.Tag)
			}
			if y := publishedYear.FindString(albumResp.Album.Wiki.Published); y != "" {
				rec.EstimatedYear = y
			}
		}
	}

	if len(genres) > 0 {
		if len(genres) > maxGenreTags {
			genres = genres[:maxGenreTags]
		}
		rec.AllGenres = genres
		rec.Genre = genre.SelectPrimary(genres)
	}

	return rec, nil
}

// call performs one rate-limited API request and decodes the response. A
// Last.fm error payload (error code 6 = not found, etc.) is not a Go
// error for code 6; any other code is.
func (c *Client) call(ctx context.Context, params map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx, ProviderName); err != nil {
		return err
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("api_key", c.apiKey)
	values.Set("format", "json")
	values.Set("autocorrect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create lastfm request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lastfm request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read lastfm response: %w", err)
	}

	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != 0 {
		if apiErr.Error == 6 { // not found
			return nil
		}
		return fmt.Errorf("lastfm error %d: %s", apiErr.Error, apiErr.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lastfm returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode lastfm response: %w", err)
	}
	return nil
}

// filterTags keeps the plausible genre tags in order, lowercased and
// deduplicated.
func filterTags(tags []tag) []string {
	var genres []string
	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" || !genre.IsGenreTag(name) {
			continue
		}
		dup := false
		for _, g := range genres {
			if g == name {
				dup = true
				break
			}
		}
		if !dup {
			genres = append(genres, name)
		}
	}
	return genres
}

// Last.fm API response types

type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type trackInfoResponse struct {
	Track struct {
		Name     string `json:"name"`
		Duration string `json:"duration"` // milliseconds, as a string
		Artist   struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album struct {
			Title string `json:"title"`
		} `json:"album"`
		TopTags tagList `json:"toptags"`
	} `json:"track"`
}

type artistTagsResponse struct {
	TopTags tagList `json:"toptags"`
}

type albumInfoResponse struct {
	Album struct {
		Name string  `json:"name"`
		Tags tagList `json:"tags"`
		Wiki struct {
			Published string `json:"published"`
		} `json:"wiki"`
	} `json:"album"`
}

type tagList struct {
	Tag []tag `json:"tag"`
}

type tag struct {
	Name string `json:"name"`
}
