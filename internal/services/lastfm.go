// Last.fm implementation of [SimilarityProvider]
//
// Reference: https://www.last.fm/api/show/track.getSimilar
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"golang.org/x/time/rate"
)

const (
	lastfmBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// lastfmTrackNotFound is the API error code for an unknown track.
	lastfmTrackNotFound = 6
)

var _ SimilarityProvider = (*LastFMClient)(nil)

// LastFMClient is a minimal Last.fm client for similar-track lookups.
type LastFMClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// LastFMOpts configures a [LastFMClient]. Zero values use the defaults.
type LastFMOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Logger            *log.Logger
}

// NewLastFMClient creates a client for apiKey. Requests are paced to RequestsPerSecond (default 5).
func NewLastFMClient(apiKey string, opts LastFMOpts) *LastFMClient {
	if opts.BaseURL == "" {
		opts.BaseURL = lastfmBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &LastFMClient{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:     shared.WithLogger(opts.Logger, "service", "lastfm"),
	}
}

type lastfmError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

type lastfmSimilarResponse struct {
	SimilarTracks struct {
		Track json.RawMessage `json:"track"`
	} `json:"similartracks"`
}

type lastfmTrack struct {
	Name   string      `json:"name"`
	Match  lastfmFloat `json:"match"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// lastfmFloat decodes numbers that the API sometimes sends as strings.
type lastfmFloat float64

func (f *lastfmFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = lastfmFloat(v)
	return nil
}

// SimilarTracks calls track.getSimilar and returns at most limit candidates, best match first.
func (c *LastFMClient) SimilarTracks(ctx context.Context, artist, title string, limit int) ([]models.Candidate, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("%w: artist and title are required", shared.ErrInvalidInput)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: lastfm api key", shared.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("method", "track.getsimilar")
	params.Set("artist", artist)
	params.Set("track", title)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp lastfmSimilarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode similar tracks: %w", shared.ErrAPIRequest, err)
	}

	tracks, err := decodeLastFMTracks(resp.SimilarTracks.Track)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode similar tracks: %w", shared.ErrAPIRequest, err)
	}

	candidates := make([]models.Candidate, 0, len(tracks))
	for _, t := range tracks {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{Artist: t.Artist.Name, Title: t.Name, Match: float64(t.Match)})
		if limit > 0 && len(candidates) == limit {
			break
		}
	}

	c.logger.Debug("similar tracks", "artist", artist, "title", title, "limit", limit, "results", len(candidates))
	return candidates, nil
}

// get performs a paced GET and returns the body, translating API error envelopes.
func (c *LastFMClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	var apiErr lastfmError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != 0 {
		if apiErr.Code == lastfmTrackNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: lastfm error %d: %s", shared.ErrAPIRequest, apiErr.Code, apiErr.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: lastfm status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return body, nil
}

// decodeLastFMTracks accepts the list form as well as the single-object form the API uses for one result.
func decodeLastFMTracks(raw json.RawMessage) ([]lastfmTrack, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '{' {
		var one lastfmTrack
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []lastfmTrack{one}, nil
	}

	var many []lastfmTrack
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}
