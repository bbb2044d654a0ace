package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"

	"mp3catalog/internal/genre"
	"mp3catalog/internal/metadata"
	"mp3catalog/internal/ratelimit"
)

// ProviderName is the rate-limiter and cache-key identifier for this
// provider.
const ProviderName = "musicbrainz"

const (
	searchLimit   = 5
	maxGenreTags  = 5
	userAgent     = "mp3catalog/1.0 ( https://github.com/mp3catalog )"
	clientTimeout = 10 * time.Second
)

// Client is a MusicBrainz Web API client that implements provider.Provider.
type Client struct {
	httpClient *http.Client
	apiURL     string
	limiter    *ratelimit.Limiter
}

// New creates a new MusicBrainz client sharing the pipeline's rate limiter.
func New(limiter *ratelimit.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: clientTimeout},
		apiURL:     "https://musicbrainz.org/ws/2",
		limiter:    limiter,
	}
}

func (c *Client) Name() string { return ProviderName }

// Lookup searches the recording index for the query, picks the best fuzzy
// match, and fetches its detail (releases, credits, folksonomy tags) in one
// further call. Genre tags are harvested from the recording, then the
// release, then — only if both were empty — the primary artist.
func (c *Client) Lookup(ctx context.Context, query metadata.Query) (*metadata.Record, error) {
	q := buildQuery(query)
	if q == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=%d", c.apiURL, url.QueryEscape(q), searchLimit)
	var searchResp searchResponse
	if err := c.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, fmt.Errorf("musicbrainz search failed: %w", err)
	}
	if len(searchResp.Recordings) == 0 {
		return nil, nil
	}

	best := pickBestMatch(query, searchResp.Recordings)

	detailURL := fmt.Sprintf("%s/recording/%s?fmt=json&inc=releases+artist-credits+tags", c.apiURL, url.PathEscape(best.ID))
	var detail recording
	if err := c.getJSON(ctx, detailURL, &detail); err != nil {
		return nil, fmt.Errorf("musicbrainz detail fetch failed: %w", err)
	}

	rec := &metadata.Record{
		Title:  detail.Title,
		Artist: query.Artist,
	}
	if name := joinArtistCredits(detail.ArtistCredit); name != "" {
		rec.Artist = name
	}
	if detail.Length > 0 {
		rec.Duration = float64(detail.Length) / 1000
	}

	genres := collectGenreTags(detail.Tags, nil)

	if len(detail.Releases) > 0 {
		rel := detail.Releases[0]
		rec.Album = rel.Title
		if len(rel.Date) >= 4 {
			rec.Year = rel.Date[:4]
		}
		genres = collectGenreTags(rel.Tags, genres)
	}

	// The artist lookup costs an extra API call, so it only runs when the
	// recording and release carried no usable tags.
	if len(genres) == 0 && len(detail.ArtistCredit) > 0 {
		if artistGenres, err := c.artistGenres(ctx, detail.ArtistCredit[0].Artist.ID); err == nil {
			genres = artistGenres
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

func (c *Client) artistGenres(ctx context.Context, artistID string) ([]string, error) {
	if artistID == "" {
		return nil, nil
	}
	reqURL := fmt.Sprintf("%s/artist/%s?fmt=json&inc=tags", c.apiURL, url.PathEscape(artistID))
	var detail artistDetail
	if err := c.getJSON(ctx, reqURL, &detail); err != nil {
		return nil, err
	}
	return collectGenreTags(detail.Tags, nil), nil
}

// getJSON performs a rate-limited GET and decodes the JSON response,
// retrying once on 429/503 honoring Retry-After.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx, ProviderName); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create musicbrainz request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("musicbrainz returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}
	return nil
}

// doWithRetry executes the request, retrying on 429/503 with backoff.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		resp.Body.Close()
		retryAfter := 2
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if parsed, err := strconv.Atoi(ra); err == nil {
				retryAfter = parsed
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}

		if err := c.limiter.Wait(ctx, ProviderName); err != nil {
			return nil, err
		}
		return c.httpClient.Do(req.Clone(ctx))
	}

	return resp, nil
}

// buildQuery conjoins the non-empty query clauses.
func buildQuery(query metadata.Query) string {
	var parts []string
	if query.Artist != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", query.Artist))
	}
	if query.Title != "" {
		parts = append(parts, fmt.Sprintf("recording:%q", query.Title))
	}
	if query.Album != "" {
		parts = append(parts, fmt.Sprintf("release:%q", query.Album))
	}
	return strings.Join(parts, " AND ")
}

// pickBestMatch scores each candidate against the query with Jaro-Winkler
// similarity (60% title, 40% artist) and returns the highest scorer; the
// first result wins ties, matching the search index's own ranking.
func pickBestMatch(query metadata.Query, recordings []recording) recording {
	best := recordings[0]
	bestScore := matchScore(query, best)

	for _, rec := range recordings[1:] {
		if s := matchScore(query, rec); s > bestScore {
			best = rec
			bestScore = s
		}
	}
	return best
}

func matchScore(query metadata.Query, rec recording) float64 {
	titleScore := similarity(query.Title, rec.Title)
	if query.Artist == "" {
		return titleScore
	}
	artistScore := similarity(query.Artist, joinArtistCredits(rec.ArtistCredit))
	return titleScore*0.6 + artistScore*0.4
}

func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}

// collectGenreTags appends the plausible genre tags from a tag list onto
// acc, deduplicating in first-seen order.
func collectGenreTags(tags []tag, acc []string) []string {
	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" || !genre.IsGenreTag(name) {
			continue
		}
		if !contains(acc, name) {
			acc = append(acc, name)
		}
	}
	return acc
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinArtistCredits(credits []artistCredit) string {
	var parts []string
	for _, ac := range credits {
		if ac.Artist.Name != "" {
			parts = append(parts, ac.Artist.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length"` // milliseconds
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
	Tags         []tag          `json:"tags"`
}

type artistCredit struct {
	Artist artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Tags  []tag  `json:"tags"`
}

type artistDetail struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags []tag  `json:"tags"`
}

type tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}
