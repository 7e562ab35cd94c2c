package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marquee/internal/media"
)

// CachedMedia is one enriched catalog title.
type CachedMedia struct {
	Kind         media.Kind
	TMDBID       int64
	IMDbID       string
	IMDbRating   float64
	IMDbVotes    int64
	ReleaseYear  int
	PosterURL    string
	TitleEN      string
	TitleFR      string
	OverviewEN   string
	OverviewFR   string
	GenreIDs     []int
	GenreNamesEN []string
	GenreNamesFR []string
	TrailerURLEN string
	TrailerURLFR string
	RefreshedOn  time.Time
}

// Age returns whole days between the refresh date and today.
func (m CachedMedia) Age(today time.Time) int {
	return int(truncateDay(today).Sub(truncateDay(m.RefreshedOn)).Hours() / 24)
}

// CacheStats summarizes cache contents.
type CacheStats struct {
	Movies     int    `json:"movies"`
	TVShows    int    `json:"tv_shows"`
	Stale      int    `json:"stale"`
	NoIMDbID   int    `json:"no_imdb_id"`
	OldestDate string `json:"oldest_refresh,omitempty"`
}

const cachedMediaColumns = `media_kind, tmdb_id, imdb_id, imdb_rating, imdb_votes, release_year,
	poster_url, title_en, title_fr, overview_en, overview_fr, genre_ids, genre_names_en,
	genre_names_fr, trailer_url_en, trailer_url_fr, refreshed_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCachedMedia(row rowScanner) (CachedMedia, error) {
	var (
		m                                   CachedMedia
		kind, genreIDs, namesEN, namesFR, d string
	)
	if err := row.Scan(
		&kind, &m.TMDBID, &m.IMDbID, &m.IMDbRating, &m.IMDbVotes, &m.ReleaseYear,
		&m.PosterURL, &m.TitleEN, &m.TitleFR, &m.OverviewEN, &m.OverviewFR,
		&genreIDs, &namesEN, &namesFR, &m.TrailerURLEN, &m.TrailerURLFR, &d,
	); err != nil {
		return CachedMedia{}, err
	}
	m.Kind = media.Kind(kind)
	if err := unmarshalList(genreIDs, &m.GenreIDs); err != nil {
		return CachedMedia{}, fmt.Errorf("decode genre_ids for %d: %w", m.TMDBID, err)
	}
	if err := unmarshalList(namesEN, &m.GenreNamesEN); err != nil {
		return CachedMedia{}, fmt.Errorf("decode genre_names_en for %d: %w", m.TMDBID, err)
	}
	if err := unmarshalList(namesFR, &m.GenreNamesFR); err != nil {
		return CachedMedia{}, fmt.Errorf("decode genre_names_fr for %d: %w", m.TMDBID, err)
	}
	refreshed, err := parseDate(d)
	if err != nil {
		return CachedMedia{}, fmt.Errorf("decode refreshed_on for %d: %w", m.TMDBID, err)
	}
	m.RefreshedOn = refreshed
	return m, nil
}

func unmarshalList[T any](raw string, target *[]T) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*target = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}

func marshalList[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// GetByIDs returns every cached row of kind whose id is in ids. Order is unspecified.
func (s *Store) GetByIDs(ctx context.Context, kind media.Kind, ids []int64) ([]CachedMedia, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(kind))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cachedMediaColumns+" FROM cached_media WHERE media_kind = ? AND tmdb_id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query cached media: %w", err)
	}
	defer rows.Close()

	var out []CachedMedia
	for rows.Next() {
		m, err := scanCachedMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached media: %w", err)
	}
	return out, nil
}

// CacheStats counts cached rows per kind and how many are older than freshness.
func (s *Store) CacheStats(ctx context.Context, freshness time.Duration) (CacheStats, error) {
	var stats CacheStats
	cutoff := formatDate(s.Today().Add(-freshness))
	var oldest sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN media_kind = 'movie' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN media_kind = 'tv' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN refreshed_on < ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN imdb_id = '' THEN 1 ELSE 0 END), 0),
		MIN(refreshed_on)
		FROM cached_media`, cutoff,
	).Scan(&stats.Movies, &stats.TVShows, &stats.Stale, &stats.NoIMDbID, &oldest)
	if err != nil {
		return CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	stats.OldestDate = oldest.String
	return stats, nil
}

// Handle pins one pooled connection for a single unit of concurrent work.
// A Handle must not be shared between goroutines.
type Handle struct {
	conn  *sql.Conn
	store *Store
}

// Acquire reserves a dedicated connection. Callers must Close the handle.
func (s *Store) Acquire(ctx context.Context) (*Handle, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Handle{conn: conn, store: s}, nil
}

// Close returns the connection to the pool.
func (h *Handle) Close() error {
	if h == nil || h.conn == nil {
		return nil
	}
	return h.conn.Close()
}

// Get loads one cached row or returns ErrNotFound.
func (h *Handle) Get(ctx context.Context, kind media.Kind, id int64) (*CachedMedia, error) {
	row := h.conn.QueryRowContext(ctx,
		"SELECT "+cachedMediaColumns+" FROM cached_media WHERE media_kind = ? AND tmdb_id = ?",
		string(kind), id,
	)
	m, err := scanCachedMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached media %s/%d: %w", kind, id, err)
	}
	return &m, nil
}

// InsertIfAbsent inserts m. It returns false without error when a row with the
// same kind and id already exists, which is how concurrent enrichment of the
// same title resolves.
func (h *Handle) InsertIfAbsent(ctx context.Context, m CachedMedia) (bool, error) {
	if !m.Kind.Valid() {
		return false, fmt.Errorf("insert cached media: invalid kind %q", m.Kind)
	}
	if m.IMDbRating < 0 || m.IMDbVotes < 0 {
		return false, fmt.Errorf("insert cached media %d: negative rating fields", m.TMDBID)
	}
	genreIDs, err := marshalList(m.GenreIDs)
	if err != nil {
		return false, fmt.Errorf("encode genre ids: %w", err)
	}
	namesEN, err := marshalList(m.GenreNamesEN)
	if err != nil {
		return false, fmt.Errorf("encode genre names: %w", err)
	}
	namesFR, err := marshalList(m.GenreNamesFR)
	if err != nil {
		return false, fmt.Errorf("encode genre names: %w", err)
	}
	refreshed := m.RefreshedOn
	if refreshed.IsZero() {
		refreshed = h.store.Today()
	}

	_, err = execWithRetry(ctx, h.conn,
		"INSERT INTO cached_media ("+cachedMediaColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		string(m.Kind), m.TMDBID, m.IMDbID, m.IMDbRating, m.IMDbVotes, m.ReleaseYear,
		m.PosterURL, m.TitleEN, m.TitleFR, m.OverviewEN, m.OverviewFR,
		genreIDs, namesEN, namesFR, m.TrailerURLEN, m.TrailerURLFR, formatDate(refreshed),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert cached media %s/%d: %w", m.Kind, m.TMDBID, err)
	}
	return true, nil
}

// UpdateRatingFields stores fresh rating values. The refresh date never moves
// backwards: an older date leaves refreshed_on untouched.
func (h *Handle) UpdateRatingFields(ctx context.Context, kind media.Kind, id int64, rating float64, votes int64, refreshedOn time.Time) error {
	if rating < 0 || votes < 0 {
		return fmt.Errorf("update rating %s/%d: negative rating fields", kind, id)
	}
	res, err := execWithRetry(ctx, h.conn,
		`UPDATE cached_media
		 SET imdb_rating = ?, imdb_votes = ?, refreshed_on = MAX(refreshed_on, ?)
		 WHERE media_kind = ? AND tmdb_id = ?`,
		rating, votes, formatDate(refreshedOn), string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("update rating %s/%d: %w", kind, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rating %s/%d: rows affected: %w", kind, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
