package chat

import (
	"context"

	"marquee/internal/llm"
	"marquee/internal/locale"
	"marquee/internal/logging"
	"marquee/internal/media"
)

func (o *Orchestrator) handleExactTitle(ctx context.Context, t turn) (handlerResult, error) {
	cards, err := o.recommender.ByTitle(ctx, t.kind, t.req.Query, t.req.Locale)
	return handlerResult{cards: cards}, err
}

func (o *Orchestrator) handleSimilar(ctx context.Context, t turn) (handlerResult, error) {
	cards, err := o.recommender.Similar(ctx, t.req.UserID, t.kind, t.req.Query, t.req.Locale)
	return handlerResult{cards: cards}, err
}

func (o *Orchestrator) handleDescription(ctx context.Context, t turn) (handlerResult, error) {
	cards, err := o.recommender.FromDescription(ctx, t.req.UserID, t.kind, t.req.Query, t.req.Locale)
	return handlerResult{cards: cards}, err
}

func (o *Orchestrator) handleFilters(ctx context.Context, t turn) (handlerResult, error) {
	filters := o.extractFilters(ctx, t)
	cards, err := o.recommender.ByFilters(ctx, t.req.UserID, t.kind, filters, t.req.Locale)
	return handlerResult{cards: cards, filters: &filters}, err
}

// filterPayload tolerates the vote key spelling older prompts produced.
type filterPayload struct {
	media.Filters
	MinIMDbVotesCount *int64 `json:"min_imdb_votes_count"`
}

// extractFilters asks the generative client for a filter object. Any failure
// yields empty filters so discovery still runs.
func (o *Orchestrator) extractFilters(ctx context.Context, t turn) media.Filters {
	content, err := o.completer.Complete(ctx, t.window, filtersPrompt(t.kind), filtersTemperature)
	if err != nil {
		logging.WarnWithContext(ctx, o.logger, "filter extraction failed", "filters_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "searching without filters"),
		)
		return media.Filters{}
	}
	var payload filterPayload
	if err := llm.DecodeJSON(content, &payload); err != nil {
		logging.WarnWithContext(ctx, o.logger, "filter output malformed", "filters_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "searching without filters"),
		)
		return media.Filters{}
	}
	filters := payload.Filters
	if filters.MinIMDbVotes == nil {
		filters.MinIMDbVotes = payload.MinIMDbVotesCount
	}
	return sanitizeFilters(filters)
}

func sanitizeFilters(f media.Filters) media.Filters {
	f.GenreID = 0
	if r := f.MinIMDbRating; r != nil && (*r < 0 || *r > 10) {
		f.MinIMDbRating = nil
	}
	if v := f.MinIMDbVotes; v != nil && *v < 0 {
		f.MinIMDbVotes = nil
	}
	if f.MinReleaseYear > 0 && f.MaxReleaseYear > 0 && f.MinReleaseYear > f.MaxReleaseYear {
		f.MinReleaseYear, f.MaxReleaseYear = f.MaxReleaseYear, f.MinReleaseYear
	}
	f.OriginalLanguage = locale.ISO2(f.OriginalLanguage)
	if f.SortBy != "" {
		f.SortBy = f.NormalizedSort()
	}
	return f
}
