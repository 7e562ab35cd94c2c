package recommend

import (
	"cmp"
	"slices"

	"marquee/internal/media"
	"marquee/internal/store"
)

// DefaultResultLimit caps the number of cards returned by one request.
const DefaultResultLimit = 30

// Rerank drops rows at or below the rating and vote minimums, applies the
// requested sort and truncates to limit. A nil minimum disables that
// threshold. Popularity keeps the incoming order.
func Rerank(rows []store.CachedMedia, filters media.Filters, limit int) []store.CachedMedia {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	kept := make([]store.CachedMedia, 0, len(rows))
	for _, row := range rows {
		if minRating := filters.MinIMDbRating; minRating != nil && row.IMDbRating <= *minRating {
			continue
		}
		if minVotes := filters.MinIMDbVotes; minVotes != nil && row.IMDbVotes <= *minVotes {
			continue
		}
		kept = append(kept, row)
	}

	switch filters.NormalizedSort() {
	case media.SortVoteAverage:
		slices.SortStableFunc(kept, func(a, b store.CachedMedia) int {
			return cmp.Compare(b.IMDbRating, a.IMDbRating)
		})
	case media.SortVoteCount:
		slices.SortStableFunc(kept, func(a, b store.CachedMedia) int {
			return cmp.Compare(b.IMDbVotes, a.IMDbVotes)
		})
	}

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
