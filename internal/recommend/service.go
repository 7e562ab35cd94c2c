package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/genres"
	"marquee/internal/llm"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/rating"
	"marquee/internal/store"
)

// Request validation errors.
var (
	ErrInvalidKind = errors.New("invalid media kind")
	ErrEmptyQuery  = errors.New("query required")
)

// Catalog is the subset of the TMDB client the pipeline consumes.
type Catalog interface {
	Discover(ctx context.Context, kind media.Kind, filters media.Filters, page int) ([]catalog.DiscoverResult, error)
	Details(ctx context.Context, kind media.Kind, id int64, locale string) (*catalog.Details, error)
	IDByTitleYear(ctx context.Context, kind media.Kind, title string, year int) (int64, bool, error)
	Trailer(ctx context.Context, kind media.Kind, id int64, locale string) (string, error)
	PosterURL(path string) string
}

var _ Catalog = (*catalog.Client)(nil)

// Settings sizes the pipeline.
type Settings struct {
	DiscoveryTarget   int
	DiscoveryMaxPages int
	Workers           int
	FreshnessDays     int
	ResultLimit       int
	RequestTimeout    time.Duration
}

// SettingsFromConfig extracts pipeline sizing from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}.withDefaults()
	}
	return Settings{
		DiscoveryTarget:   cfg.Pipeline.DiscoveryTarget,
		DiscoveryMaxPages: cfg.Pipeline.DiscoveryMaxPages,
		Workers:           cfg.Pipeline.Workers,
		FreshnessDays:     cfg.Pipeline.FreshnessDays,
		ResultLimit:       cfg.Pipeline.ResultLimit,
		RequestTimeout:    cfg.RequestTimeout(),
	}.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.DiscoveryTarget <= 0 {
		s.DiscoveryTarget = 50
	}
	if s.DiscoveryMaxPages <= 0 {
		s.DiscoveryMaxPages = 10
	}
	if s.Workers <= 0 {
		s.Workers = 30
	}
	if s.FreshnessDays <= 0 {
		s.FreshnessDays = 7
	}
	if s.ResultLimit <= 0 {
		s.ResultLimit = 30
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 10 * time.Second
	}
	return s
}

// Service exposes one entry point per recommendation flavour.
type Service struct {
	catalog   Catalog
	ratings   rating.Source
	completer llm.Completer
	store     *store.Store
	settings  Settings
	logger    *slog.Logger
}

// NewService wires the pipeline collaborators.
func NewService(st *store.Store, cat Catalog, ratings rating.Source, completer llm.Completer, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		catalog:   cat,
		ratings:   ratings,
		completer: completer,
		store:     st,
		settings:  settings.withDefaults(),
		logger:    logging.NewComponentLogger(logger, "recommend"),
	}
}

// ByFilters runs discovery, enrichment and rerank for a filter set.
func (s *Service) ByFilters(ctx context.Context, userID int64, kind media.Kind, filters media.Filters, locale string) ([]media.Card, error) {
	if !kind.Valid() {
		return nil, errInvalidKind(kind)
	}
	filters = s.resolveGenre(ctx, kind, filters)

	excluded, err := s.store.ExcludedIDs(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	ids := s.Discover(ctx, kind, filters, excluded)
	s.Enrich(ctx, kind, ids)

	rows, err := s.ReadOrdered(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	ranked := Rerank(rows, filters, s.settings.ResultLimit)
	s.logger.Info("filter recommendation complete",
		logging.String(logging.FieldMediaKind, string(kind)),
		logging.Int64(logging.FieldUserID, userID),
		logging.Int("candidates", len(ids)),
		logging.Int("cached", len(rows)),
		logging.Int("results", len(ranked)),
	)
	return ProjectAll(ranked, locale), nil
}

// Similar recommends titles similar to the one named in query.
func (s *Service) Similar(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error) {
	return s.fromSuggestions(ctx, userID, kind, query, ModeSimilar, locale)
}

// ByTitle looks up the title the user named. Exclusions do not apply.
func (s *Service) ByTitle(ctx context.Context, kind media.Kind, query, locale string) ([]media.Card, error) {
	return s.fromSuggestions(ctx, 0, kind, query, ModeExact, locale)
}

// FromDescription recommends titles matching a free-form mood description.
func (s *Service) FromDescription(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error) {
	return s.fromSuggestions(ctx, userID, kind, query, ModeDescription, locale)
}

// Cards projects cached rows for ids in the given order. Ids missing from the
// cache are enriched first.
func (s *Service) Cards(ctx context.Context, kind media.Kind, ids []int64, locale string) ([]media.Card, error) {
	if !kind.Valid() {
		return nil, errInvalidKind(kind)
	}
	if len(ids) == 0 {
		return []media.Card{}, nil
	}
	s.Enrich(ctx, kind, ids)
	rows, err := s.ReadOrdered(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	return ProjectAll(rows, locale), nil
}

func (s *Service) fromSuggestions(ctx context.Context, userID int64, kind media.Kind, query string, mode Mode, locale string) ([]media.Card, error) {
	if !kind.Valid() {
		return nil, errInvalidKind(kind)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	suggestions := s.SuggestTitles(ctx, kind, query, mode)
	ids := s.ResolveIDs(ctx, kind, suggestions)
	if mode != ModeExact {
		excluded, err := s.store.ExcludedIDs(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		ids = withoutExcluded(ids, excluded)
	}
	s.Enrich(ctx, kind, ids)

	rows, err := s.ReadOrdered(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) > s.settings.ResultLimit {
		rows = rows[:s.settings.ResultLimit]
	}
	s.logger.Info("title recommendation complete",
		logging.String(logging.FieldMediaKind, string(kind)),
		logging.String("mode", mode.String()),
		logging.Int("suggestions", len(suggestions)),
		logging.Int("resolved", len(ids)),
		logging.Int("results", len(rows)),
	)
	return ProjectAll(rows, locale), nil
}

// resolveGenre fills GenreID from GenreName. Unknown names drop the genre
// constraint entirely. A caller-supplied GenreID is never trusted.
func (s *Service) resolveGenre(ctx context.Context, kind media.Kind, filters media.Filters) media.Filters {
	filters.GenreID = 0
	name := strings.TrimSpace(filters.GenreName)
	if name == "" {
		return filters
	}
	id, ok := genres.ID(kind, name)
	if !ok {
		logging.WarnWithContext(ctx, s.logger, "unknown genre ignored", "unknown_genre",
			logging.String("genre_name", name),
			logging.String(logging.FieldMediaKind, string(kind)),
			logging.String(logging.FieldErrorHint, "known genres: "+strings.Join(genres.Known(kind), ", ")),
		)
		filters.GenreName = ""
		return filters
	}
	filters.GenreID = id
	return filters
}

func withoutExcluded(ids []int64, excluded map[int64]struct{}) []int64 {
	if len(excluded) == 0 {
		return ids
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, skip := excluded[id]; skip {
			continue
		}
		out = append(out, id)
	}
	return out
}

func errInvalidKind(kind media.Kind) error {
	return fmt.Errorf("%w %q", ErrInvalidKind, kind)
}
