// Package media holds the value types shared by the catalog, cache, and
// recommendation layers: media kinds, search filters, user statuses, and the
// localized cards returned to callers.
package media

import (
	"fmt"
	"strings"
)

// Kind distinguishes movies from TV shows. TMDB numbers each kind
// independently, so a catalog id is only meaningful together with its kind.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// ParseKind accepts "movie"/"tv" and a few common spellings.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies", "film", "films":
		return KindMovie, nil
	case "tv", "tvshow", "tvshows", "tv_show", "show", "shows", "series":
		return KindTV, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", value)
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindTV
}

func (k Kind) String() string { return string(k) }

// Sort orders accepted by discovery and the rerank stage.
const (
	SortPopularity  = "popularity.desc"
	SortVoteAverage = "vote_average.desc"
	SortVoteCount   = "vote_count.desc"
)

// Filters is the structured search request. JSON names match what the
// generative service is asked to emit. A nil minimum means no threshold;
// an explicit zero still excludes titles rated or voted 0.
type Filters struct {
	GenreName        string   `json:"genre_name,omitempty"`
	GenreID          int      `json:"genre_id,omitempty"`
	MinIMDbRating    *float64 `json:"min_imdb_rating,omitempty"`
	MinIMDbVotes     *int64   `json:"min_imdb_votes,omitempty"`
	MinReleaseYear   int      `json:"min_release_year,omitempty"`
	MaxReleaseYear   int      `json:"max_release_year,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	SortBy           string   `json:"sort_by,omitempty"`
}

// Ptr returns a pointer to v, for setting optional filter minimums.
func Ptr[T any](v T) *T {
	return &v
}

// NormalizedSort returns SortBy if it is a known order, otherwise popularity.
func (f Filters) NormalizedSort() string {
	switch strings.TrimSpace(f.SortBy) {
	case SortVoteAverage:
		return SortVoteAverage
	case SortVoteCount:
		return SortVoteCount
	default:
		return SortPopularity
	}
}

// Status is a per-user exclusion state.
type Status string

const (
	StatusNone         Status = "none"
	StatusSeen         Status = "seen"
	StatusToWatchLater Status = "towatchlater"
	StatusHidden       Status = "hidden"
)

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusNone, StatusSeen, StatusToWatchLater, StatusHidden:
		return s, nil
	case "":
		return "", fmt.Errorf("status is required")
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Card is the localized projection of a cached title.
type Card struct {
	TMDBID      int64    `json:"tmdb_id"`
	Kind        Kind     `json:"media_kind"`
	IMDbID      string   `json:"imdb_id,omitempty"`
	Title       string   `json:"title"`
	GenreNames  []string `json:"genre_names"`
	ReleaseYear int      `json:"release_year,omitempty"`
	IMDbRating  float64  `json:"imdb_rating"`
	IMDbVotes   int64    `json:"imdb_votes"`
	PosterURL   string   `json:"poster_url,omitempty"`
	TrailerURL  string   `json:"trailer_url,omitempty"`
	Overview    string   `json:"overview,omitempty"`
}
