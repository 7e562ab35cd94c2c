// Package rating fetches IMDb rating and vote counts from OMDb.
package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/metrics"
)

// ErrNotFound reports that OMDb answered but has no entry for the IMDb id.
var ErrNotFound = errors.New("omdb: title not found")

// Rating is the IMDb score and vote count for a title. Missing values are zero.
type Rating struct {
	Rating float64 `json:"imdb_rating"`
	Votes  int64   `json:"imdb_votes"`
}

// Source is implemented by the plain client and the breaker wrapper.
type Source interface {
	Rating(ctx context.Context, imdbID string) (Rating, error)
}

// Client queries the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
}

// Rating fetches the rating for an IMDb id such as "tt0133093".
func (c *Client) Rating(ctx context.Context, imdbID string) (Rating, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return Rating{}, errors.New("imdb id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return Rating{}, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Rating{}, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		metrics.RecordUpstream("omdb", latency, err)
		return Rating{}, fmt.Errorf("omdb: execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("omdb returned %d (latency=%v)", resp.StatusCode, latency)
		metrics.RecordUpstream("omdb", latency, err)
		return Rating{}, err
	}

	var payload omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordUpstream("omdb", latency, err)
		return Rating{}, fmt.Errorf("decode omdb response: %w", err)
	}
	metrics.RecordUpstream("omdb", latency, nil)

	if strings.EqualFold(payload.Response, "False") {
		if strings.Contains(strings.ToLower(payload.Error), "not found") {
			return Rating{}, fmt.Errorf("%w: %s", ErrNotFound, imdbID)
		}
		return Rating{}, fmt.Errorf("omdb error for %s: %s", imdbID, payload.Error)
	}

	return Rating{
		Rating: parseRating(payload.IMDbRating),
		Votes:  parseVotes(payload.IMDbVotes),
	}, nil
}

// parseRating maps "N/A" and unparsable values to 0.
func parseRating(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// parseVotes strips thousands separators: "1,234" -> 1234.
func parseVotes(value string) int64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
