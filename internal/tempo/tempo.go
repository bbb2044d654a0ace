// Package tempo estimates track BPM when the file's own tags carry none.
package tempo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mp3catalog/internal/metadata"
)

// Estimated BPM outside this window is treated as a lookup artifact and
// discarded.
const (
	minBPM = 60
	maxBPM = 200
)

// Estimator produces a tempo estimate for a track. A zero return means no
// estimate is available.
type Estimator interface {
	Estimate(ctx context.Context, query metadata.Query) (int, error)
}

// Unavailable is the default Estimator when no tempo service is configured.
type Unavailable struct{}

func (Unavailable) Estimate(ctx context.Context, query metadata.Query) (int, error) {
	return 0, nil
}

// SongBPM queries the getsongbpm.com API.
type SongBPM struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

// NewSongBPM creates a getsongbpm.com client. Returns an Unavailable
// estimator when no API key is configured.
func NewSongBPM(apiKey string) Estimator {
	if apiKey == "" {
		return Unavailable{}
	}
	return &SongBPM{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.getsongbpm.com",
		apiKey:     apiKey,
	}
}

// Estimate searches for the track and returns the first plausible tempo.
func (s *SongBPM) Estimate(ctx context.Context, query metadata.Query) (int, error) {
	if query.Artist == "" || query.Title == "" {
		return 0, nil
	}

	values := url.Values{}
	values.Set("api_key", s.apiKey)
	values.Set("type", "both")
	values.Set("lookup", fmt.Sprintf("song:%s artist:%s", query.Title, query.Artist))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/search/?"+values.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create songbpm request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("songbpm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("songbpm returned %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("failed to decode songbpm response: %w", err)
	}

	for _, song := range sr.Search {
		bpm, err := strconv.Atoi(song.Tempo)
		if err != nil {
			continue
		}
		if bpm >= minBPM && bpm <= maxBPM {
			return bpm, nil
		}
	}
	return 0, nil
}

type searchResponse struct {
	Search []struct {
		Title string `json:"song_title"`
		Tempo string `json:"tempo"`
	} `json:"search"`
}
