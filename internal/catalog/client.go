package catalog

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

	"golang.org/x/time/rate"

	"marquee/internal/media"
	"marquee/internal/metrics"
)

const (
	defaultPosterBase = "https://image.tmdb.org/t/p/original"
	youtubeWatchURL   = "https://www.youtube.com/watch?v="
)

// DiscoverResult is one item from a discover page.
type DiscoverResult struct {
	ID       int64 `json:"id"`
	GenreIDs []int `json:"genre_ids"`
}

type discoverResponse struct {
	Page       int              `json:"page"`
	Results    []DiscoverResult `json:"results"`
	TotalPages int              `json:"total_pages"`
}

// Details is the subset of a movie or TV detail payload the cache keeps.
type Details struct {
	ID          int64
	Title       string
	Overview    string
	GenreIDs    []int
	ReleaseDate string
	PosterPath  string
	IMDbID      string
}

// ReleaseYear returns the year prefix of ReleaseDate, or 0.
func (d Details) ReleaseYear() int {
	if len(d.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(d.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

type detailsPayload struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	IMDbID       string `json:"imdb_id"`
	Genres       []struct {
		ID int `json:"id"`
	} `json:"genres"`
	ExternalIDs struct {
		IMDbID string `json:"imdb_id"`
	} `json:"external_ids"`
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

type videosResponse struct {
	Results []struct {
		Key  string `json:"key"`
		Site string `json:"site"`
		Type string `json:"type"`
	} `json:"results"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	posterBase string
	httpClient *http.Client
	limiter    *rate.Limiter
}

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

// WithRateLimit caps outbound requests per second. Zero or negative disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithPosterBase overrides the image prefix used by PosterURL.
func WithPosterBase(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.posterBase = base
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		posterBase: defaultPosterBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Discover fetches one page of /discover/{kind} constrained by filters.
func (c *Client) Discover(ctx context.Context, kind media.Kind, filters media.Filters, page int) ([]DiscoverResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("discover: invalid kind %q", kind)
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", filters.NormalizedSort())
	params.Set("include_adult", "false")
	if filters.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(filters.GenreID))
	}
	if lang := strings.TrimSpace(filters.OriginalLanguage); lang != "" {
		params.Set("with_original_language", lang)
	}
	datePrefix := "primary_release_date"
	if kind == media.KindTV {
		datePrefix = "first_air_date"
	}
	if filters.MinReleaseYear > 0 {
		params.Set(datePrefix+".gte", fmt.Sprintf("%04d-01-01", filters.MinReleaseYear))
	}
	if filters.MaxReleaseYear > 0 {
		params.Set(datePrefix+".lte", fmt.Sprintf("%04d-12-31", filters.MaxReleaseYear))
	}

	var payload discoverResponse
	if err := c.get(ctx, "/discover/"+kind.String(), params, &payload, "discover"); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Details fetches the localized detail payload including external ids.
func (c *Client) Details(ctx context.Context, kind media.Kind, id int64, locale string) (*Details, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("details: invalid kind %q", kind)
	}
	if id <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	if locale = strings.TrimSpace(locale); locale != "" {
		params.Set("language", locale)
	}

	var payload detailsPayload
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), params, &payload, kind.String()+" details"); err != nil {
		return nil, err
	}

	details := &Details{
		ID:         payload.ID,
		Overview:   payload.Overview,
		PosterPath: payload.PosterPath,
		IMDbID:     strings.TrimSpace(payload.IMDbID),
	}
	if details.IMDbID == "" {
		details.IMDbID = strings.TrimSpace(payload.ExternalIDs.IMDbID)
	}
	if kind == media.KindTV {
		details.Title = payload.Name
		details.ReleaseDate = payload.FirstAirDate
	} else {
		details.Title = payload.Title
		details.ReleaseDate = payload.ReleaseDate
	}
	for _, g := range payload.Genres {
		details.GenreIDs = append(details.GenreIDs, g.ID)
	}
	return details, nil
}

// IDByTitleYear searches for a title and returns the first match's id.
// A zero year searches without a year constraint.
func (c *Client) IDByTitleYear(ctx context.Context, kind media.Kind, title string, year int) (int64, bool, error) {
	if !kind.Valid() {
		return 0, false, fmt.Errorf("search: invalid kind %q", kind)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, false, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		if kind == media.KindTV {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("primary_release_year", strconv.Itoa(year))
		}
	}

	var payload searchResponse
	if err := c.get(ctx, "/search/"+kind.String(), params, &payload, kind.String()+" search"); err != nil {
		return 0, false, err
	}
	if len(payload.Results) == 0 || payload.Results[0].ID <= 0 {
		return 0, false, nil
	}
	return payload.Results[0].ID, true, nil
}

// Trailer returns the first YouTube trailer URL for the locale, or "" when none exists.
func (c *Client) Trailer(ctx context.Context, kind media.Kind, id int64, locale string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("videos: invalid kind %q", kind)
	}
	params := url.Values{}
	if locale = strings.TrimSpace(locale); locale != "" {
		params.Set("language", locale)
	}

	var payload videosResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", kind, id), params, &payload, "videos"); err != nil {
		return "", err
	}
	for _, video := range payload.Results {
		if video.Site == "YouTube" && video.Type == "Trailer" && video.Key != "" {
			return youtubeWatchURL + video.Key, nil
		}
	}
	return "", nil
}

// PosterURL builds the full image URL for a poster path, or "" for an empty path.
func (c *Client) PosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.posterBase + path
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any, op string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("tmdb %s: rate limit wait: %w", op, err)
		}
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		metrics.RecordUpstream("tmdb", latency, err)
		return fmt.Errorf("tmdb %s: execute request (latency=%v): %w", op, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("tmdb %s returned %d (latency=%v)", op, resp.StatusCode, latency)
		metrics.RecordUpstream("tmdb", latency, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		metrics.RecordUpstream("tmdb", latency, err)
		return fmt.Errorf("decode tmdb %s response: %w", op, err)
	}
	metrics.RecordUpstream("tmdb", latency, nil)
	return nil
}
