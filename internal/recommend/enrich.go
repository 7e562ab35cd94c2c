package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marquee/internal/catalog"
	"marquee/internal/genres"
	"marquee/internal/locale"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/metrics"
	"marquee/internal/rating"
	"marquee/internal/store"
)

type outcome string

const (
	outcomeFresh     outcome = "fresh"
	outcomeRefreshed outcome = "refreshed"
	outcomeInserted  outcome = "inserted"
	outcomeDuplicate outcome = "duplicate"
	outcomeSkipped   outcome = "skipped"
	outcomeFailed    outcome = "failed"
)

// EnrichReport counts what happened to each distinct id of a batch.
type EnrichReport struct {
	Fresh     int `json:"fresh"`
	Refreshed int `json:"refreshed"`
	Inserted  int `json:"inserted"`
	Duplicate int `json:"duplicate"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Total returns the number of ids processed.
func (r EnrichReport) Total() int {
	return r.Fresh + r.Refreshed + r.Inserted + r.Duplicate + r.Skipped + r.Failed
}

func (r *EnrichReport) add(o outcome) {
	switch o {
	case outcomeFresh:
		r.Fresh++
	case outcomeRefreshed:
		r.Refreshed++
	case outcomeInserted:
		r.Inserted++
	case outcomeDuplicate:
		r.Duplicate++
	case outcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Enrich makes sure every id has a cache row no older than FreshnessDays.
// Ids are processed by a bounded pool; each worker owns its own store handle.
// Per-id failures are logged and counted, never returned.
func (s *Service) Enrich(ctx context.Context, kind media.Kind, ids []int64) EnrichReport {
	ids = dedupe(ids)
	var (
		report EnrichReport
		mu     sync.Mutex
	)
	if len(ids) == 0 {
		return report
	}

	today := s.store.Today()
	started := time.Now()

	var g errgroup.Group
	g.SetLimit(s.settings.Workers)
	for _, id := range ids {
		g.Go(func() error {
			result, err := s.enrichOne(ctx, kind, id, today)
			if err != nil {
				logging.WarnWithContext(ctx, s.logger, "enrichment failed", "enrich_failed",
					logging.String(logging.FieldMediaKind, string(kind)),
					logging.Int64(logging.FieldTMDBID, id),
					logging.Error(err),
					logging.String(logging.FieldImpact, "title left out of results"),
				)
				result = outcomeFailed
			}
			mu.Lock()
			report.add(result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for o, n := range map[outcome]int{
		outcomeFresh:     report.Fresh,
		outcomeRefreshed: report.Refreshed,
		outcomeInserted:  report.Inserted,
		outcomeDuplicate: report.Duplicate,
		outcomeSkipped:   report.Skipped,
		outcomeFailed:    report.Failed,
	} {
		metrics.RecordEnrichment(string(kind), string(o), n)
	}
	s.logger.Info("enrichment complete",
		logging.String(logging.FieldMediaKind, string(kind)),
		logging.Int("ids", len(ids)),
		logging.Int("fresh", report.Fresh),
		logging.Int("refreshed", report.Refreshed),
		logging.Int("inserted", report.Inserted),
		logging.Int("duplicate", report.Duplicate),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report
}

func (s *Service) enrichOne(ctx context.Context, kind media.Kind, id int64, today time.Time) (outcome, error) {
	h, err := s.store.Acquire(ctx)
	if err != nil {
		return outcomeFailed, err
	}
	defer h.Close()

	cached, err := h.Get(ctx, kind, id)
	switch {
	case err == nil:
		return s.refresh(ctx, h, cached, today)
	case errors.Is(err, store.ErrNotFound):
		return s.insert(ctx, h, kind, id, today)
	default:
		return outcomeFailed, err
	}
}

// refresh updates only the rating of a stale row.
func (s *Service) refresh(ctx context.Context, h *store.Handle, cached *store.CachedMedia, today time.Time) (outcome, error) {
	if cached.Age(today) <= s.settings.FreshnessDays {
		return outcomeFresh, nil
	}
	// Without a rating source there is nothing to refresh with.
	if cached.IMDbID == "" || s.ratings == nil {
		return outcomeSkipped, nil
	}
	r, err := s.fetchRating(ctx, cached.IMDbID)
	if err != nil {
		return outcomeFailed, err
	}
	if err := h.UpdateRatingFields(ctx, cached.Kind, cached.TMDBID, r.Rating, r.Votes, today); err != nil {
		return outcomeFailed, err
	}
	return outcomeRefreshed, nil
}

// insert performs the full bilingual fetch for a title the cache has never seen.
func (s *Service) insert(ctx context.Context, h *store.Handle, kind media.Kind, id int64, today time.Time) (outcome, error) {
	en, err := s.fetchDetails(ctx, kind, id, locale.English)
	if err != nil {
		return outcomeFailed, fmt.Errorf("details en: %w", err)
	}
	fr, err := s.fetchDetails(ctx, kind, id, locale.French)
	if err != nil {
		return outcomeFailed, fmt.Errorf("details fr: %w", err)
	}

	imdbID := firstNonEmpty(en.IMDbID, fr.IMDbID)
	var r rating.Rating
	if imdbID != "" {
		if r, err = s.fetchRating(ctx, imdbID); err != nil {
			return outcomeFailed, fmt.Errorf("rating %s: %w", imdbID, err)
		}
	}

	trailerEN, err := s.fetchTrailer(ctx, kind, id, locale.English)
	if err != nil {
		return outcomeFailed, fmt.Errorf("trailer en: %w", err)
	}
	trailerFR, err := s.fetchTrailer(ctx, kind, id, locale.French)
	if err != nil {
		return outcomeFailed, fmt.Errorf("trailer fr: %w", err)
	}

	genreIDs := en.GenreIDs
	if len(genreIDs) == 0 {
		genreIDs = fr.GenreIDs
	}
	posterPath := firstNonEmpty(en.PosterPath, fr.PosterPath)
	posterURL := ""
	if posterPath != "" {
		posterURL = s.catalog.PosterURL(posterPath)
	}
	year := en.ReleaseYear()
	if year == 0 {
		year = fr.ReleaseYear()
	}

	row := store.CachedMedia{
		Kind:         kind,
		TMDBID:       id,
		IMDbID:       imdbID,
		IMDbRating:   r.Rating,
		IMDbVotes:    r.Votes,
		ReleaseYear:  year,
		PosterURL:    posterURL,
		TitleEN:      en.Title,
		TitleFR:      fr.Title,
		OverviewEN:   en.Overview,
		OverviewFR:   fr.Overview,
		GenreIDs:     genreIDs,
		GenreNamesEN: genres.Names(kind, locale.English, genreIDs),
		GenreNamesFR: genres.Names(kind, locale.French, genreIDs),
		TrailerURLEN: trailerEN,
		TrailerURLFR: trailerFR,
		RefreshedOn:  today,
	}
	inserted, err := h.InsertIfAbsent(ctx, row)
	if err != nil {
		return outcomeFailed, err
	}
	if !inserted {
		s.logger.Debug("cache insert lost race",
			logging.String(logging.FieldMediaKind, string(kind)),
			logging.Int64(logging.FieldTMDBID, id),
		)
		return outcomeDuplicate, nil
	}
	return outcomeInserted, nil
}

func (s *Service) fetchDetails(ctx context.Context, kind media.Kind, id int64, loc string) (*catalog.Details, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
	defer cancel()
	return s.catalog.Details(callCtx, kind, id, loc)
}

func (s *Service) fetchTrailer(ctx context.Context, kind media.Kind, id int64, loc string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
	defer cancel()
	return s.catalog.Trailer(callCtx, kind, id, loc)
}

// fetchRating treats an OMDb "not found" answer as an unrated title.
func (s *Service) fetchRating(ctx context.Context, imdbID string) (rating.Rating, error) {
	if s.ratings == nil {
		return rating.Rating{}, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
	defer cancel()
	r, err := s.ratings.Rating(callCtx, imdbID)
	if errors.Is(err, rating.ErrNotFound) {
		return rating.Rating{}, nil
	}
	return r, err
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
