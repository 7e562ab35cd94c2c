package recommend

import (
	"context"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/media"
)

// genrePositionWindow is how many leading genre ids of a result may carry the
// requested genre. TMDB lists the dominant genres first.
const genrePositionWindow = 2

// Discover pages through the catalog until DiscoveryTarget candidates are
// collected or DiscoveryMaxPages is reached. Pagination is sequential because
// each page decides whether another is needed. A failed page contributes no
// candidates and never aborts the walk.
func (s *Service) Discover(ctx context.Context, kind media.Kind, filters media.Filters, excluded map[int64]struct{}) []int64 {
	target := s.settings.DiscoveryTarget
	candidates := make([]int64, 0, target)
	seen := make(map[int64]struct{}, target)

	for page := 1; page <= s.settings.DiscoveryMaxPages && len(candidates) < target; page++ {
		if ctx.Err() != nil {
			break
		}
		results, err := s.discoverPage(ctx, kind, filters, page)
		if err != nil {
			logging.WarnWithContext(ctx, s.logger, "discover page failed", "discover_page_failed",
				logging.Int("page", page),
				logging.String(logging.FieldMediaKind, string(kind)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "page contributes no candidates"),
			)
			continue
		}
		for _, item := range results {
			if len(candidates) >= target {
				break
			}
			if !genreMatches(item.GenreIDs, filters.GenreID) {
				continue
			}
			if _, skip := excluded[item.ID]; skip {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			candidates = append(candidates, item.ID)
		}
	}

	s.logger.Debug("discovery complete",
		logging.String(logging.FieldMediaKind, string(kind)),
		logging.Int("candidates", len(candidates)),
	)
	return candidates
}

func (s *Service) discoverPage(ctx context.Context, kind media.Kind, filters media.Filters, page int) ([]catalog.DiscoverResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
	defer cancel()
	return s.catalog.Discover(callCtx, kind, filters, page)
}

// genreMatches accepts an item when no genre is requested or the requested id
// sits among the item's leading genre ids.
func genreMatches(itemGenres []int, want int) bool {
	if want == 0 {
		return true
	}
	limit := min(len(itemGenres), genrePositionWindow)
	for _, id := range itemGenres[:limit] {
		if id == want {
			return true
		}
	}
	return false
}
