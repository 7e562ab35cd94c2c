package recommend

import (
	"errors"
	"slices"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/media"
)

func TestByFiltersRatingSortScenario(t *testing.T) {
	h := newHarness(t)
	h.catalog.pages[1] = []catalog.DiscoverResult{result(5, 18), result(6, 18), result(7, 18)}
	h.ratings.set(5, 6.9, 5000)
	h.ratings.set(6, 8.1, 5000)
	h.ratings.set(7, 7.5, 5000)

	filters := media.Filters{
		GenreName:     "drama",
		MinIMDbRating: media.Ptr(7.0),
		MinIMDbVotes:  media.Ptr[int64](1000),
		SortBy:        media.SortVoteAverage,
	}
	cards, err := h.svc.ByFilters(t.Context(), 1, media.KindMovie, filters, "en")
	if err != nil {
		t.Fatalf("ByFilters: %v", err)
	}
	// 5 falls below the rating floor; the rest are ordered by rating.
	if want := []int64{6, 7}; !slices.Equal(cardIDs(cards), want) {
		t.Fatalf("ByFilters = %v, want %v", cardIDs(cards), want)
	}
}

func TestByFiltersPreservesDiscoveryOrderForPopularity(t *testing.T) {
	h := newHarness(t)
	h.catalog.pages[1] = []catalog.DiscoverResult{result(9), result(3), result(8), result(1)}
	h.catalog.failIDs[8] = true

	cards, err := h.svc.ByFilters(t.Context(), 1, media.KindMovie, media.Filters{}, "fr")
	if err != nil {
		t.Fatalf("ByFilters: %v", err)
	}
	if want := []int64{9, 3, 1}; !slices.Equal(cardIDs(cards), want) {
		t.Fatalf("ByFilters = %v, want %v", cardIDs(cards), want)
	}
	if cards[0].Title != "Title 9 fr" {
		t.Fatalf("title = %q, want French", cards[0].Title)
	}
}

func TestByFiltersHonoursEveryExclusionStatus(t *testing.T) {
	h := newHarness(t)
	const user = 77
	ctx := t.Context()
	for id, status := range map[int64]media.Status{
		101: media.StatusSeen,
		102: media.StatusToWatchLater,
		103: media.StatusHidden,
	} {
		if err := h.store.SetStatus(ctx, user, media.KindMovie, id, status); err != nil {
			t.Fatalf("SetStatus(%d): %v", id, err)
		}
	}
	h.catalog.pages[1] = []catalog.DiscoverResult{result(100), result(101), result(102)}
	h.catalog.pages[2] = []catalog.DiscoverResult{result(103), result(104)}

	cards, err := h.svc.ByFilters(ctx, user, media.KindMovie, media.Filters{}, "en")
	if err != nil {
		t.Fatalf("ByFilters: %v", err)
	}
	if want := []int64{100, 104}; !slices.Equal(cardIDs(cards), want) {
		t.Fatalf("ByFilters = %v, want %v", cardIDs(cards), want)
	}

	other, err := h.svc.ByFilters(ctx, user+1, media.KindMovie, media.Filters{}, "en")
	if err != nil {
		t.Fatalf("ByFilters: %v", err)
	}
	if len(other) != 5 {
		t.Fatalf("other user got %v, want all five", cardIDs(other))
	}
}

func TestByFiltersUnknownGenreIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.catalog.pages[1] = []catalog.DiscoverResult{result(1, 35), result(2, 99)}

	cards, err := h.svc.ByFilters(t.Context(), 1, media.KindMovie, media.Filters{GenreName: "space opera noir"}, "en")
	if err != nil {
		t.Fatalf("ByFilters: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("ByFilters = %v, want both candidates", cardIDs(cards))
	}
}

func TestByFiltersRejectsInvalidKind(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ByFilters(t.Context(), 1, media.Kind("anime"), media.Filters{}, "en")
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
}

func TestSimilarResolvesSuggestedTitle(t *testing.T) {
	h := newHarness(t)
	h.completer.content = `[{"title":"Get Out","year":2017}]`
	h.catalog.titles[titleKey("Get Out", 2017)] = 42

	cards, err := h.svc.Similar(t.Context(), 1, media.KindMovie, "Get Out", "en")
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(cards) != 1 || cards[0].TMDBID != 42 {
		t.Fatalf("Similar = %v, want [42]", cardIDs(cards))
	}
	if h.completer.temps[0] != 0.7 {
		t.Fatalf("temperature = %v, want 0.7", h.completer.temps[0])
	}
}

func TestSimilarAppliesExclusionsAfterResolution(t *testing.T) {
	h := newHarness(t)
	h.completer.content = "```json\n[{\"title\":\"A\",\"year\":2001},{\"title\":\"B\",\"year\":\"2002\"},{\"title\":\"C\",\"year\":null}]\n```"
	h.catalog.titles[titleKey("A", 2001)] = 1
	h.catalog.titles[titleKey("B", 2002)] = 2
	h.catalog.titles[titleKey("C", 0)] = 3
	if err := h.store.SetStatus(t.Context(), 5, media.KindMovie, 2, media.StatusSeen); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	cards, err := h.svc.FromDescription(t.Context(), 5, media.KindMovie, "something eerie", "en")
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	if want := []int64{1, 3}; !slices.Equal(cardIDs(cards), want) {
		t.Fatalf("FromDescription = %v, want %v", cardIDs(cards), want)
	}
}

func TestByTitleDoesNotExclude(t *testing.T) {
	h := newHarness(t)
	h.completer.content = `{"title":"Heat","year":1995}`
	h.catalog.titles[titleKey("Heat", 1995)] = 949
	if err := h.store.SetStatus(t.Context(), 0, media.KindMovie, 949, media.StatusHidden); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	cards, err := h.svc.ByTitle(t.Context(), media.KindMovie, "heat pacino", "en")
	if err != nil {
		t.Fatalf("ByTitle: %v", err)
	}
	if len(cards) != 1 || cards[0].TMDBID != 949 {
		t.Fatalf("ByTitle = %v, want [949]", cardIDs(cards))
	}
	if h.completer.temps[0] != 0.2 {
		t.Fatalf("temperature = %v, want 0.2", h.completer.temps[0])
	}
}

func TestSuggestionFailuresYieldEmptyResults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"prose", "I am not sure what you mean.", nil},
		{"transport", "", errors.New("llm: 503")},
		{"empty", "   ", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.completer.content = tc.content
			h.completer.err = tc.err

			cards, err := h.svc.Similar(t.Context(), 1, media.KindMovie, "Get Out", "en")
			if err != nil {
				t.Fatalf("Similar: %v", err)
			}
			if len(cards) != 0 {
				t.Fatalf("Similar = %v, want empty", cardIDs(cards))
			}
		})
	}
}

func TestResolveIDsKeepsOrderAndDropsFailures(t *testing.T) {
	h := newHarness(t)
	h.catalog.titles[titleKey("One", 1)] = 11
	h.catalog.titles[titleKey("Two", 2)] = 22
	titles := []TitleYear{
		{Title: "Two", Year: 2},
		{Title: "boom"},
		{Title: "Unknown", Year: 3},
		{Title: "One", Year: 1},
		{Title: "Two", Year: 2},
	}
	got := h.svc.ResolveIDs(t.Context(), media.KindMovie, titles)
	if want := []int64{22, 11}; !slices.Equal(got, want) {
		t.Fatalf("ResolveIDs = %v, want %v", got, want)
	}
}

func TestEmptyQueryRejected(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Similar(t.Context(), 1, media.KindMovie, "  ", "en"); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestCardsEnrichesAndOrders(t *testing.T) {
	h := newHarness(t)
	cards, err := h.svc.Cards(t.Context(), media.KindTV, []int64{3, 1}, "en")
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if want := []int64{3, 1}; !slices.Equal(cardIDs(cards), want) {
		t.Fatalf("Cards = %v, want %v", cardIDs(cards), want)
	}
	if cards[0].Kind != media.KindTV {
		t.Fatalf("kind = %q", cards[0].Kind)
	}
}

func TestByFiltersIgnoresCallerGenreID(t *testing.T) {
	tests := []struct {
		name    string
		filters media.Filters
		want    []int64
	}{
		{"bogus id without name", media.Filters{GenreID: -3}, []int64{5, 6}},
		{"unknown id without name", media.Filters{GenreID: 9999}, []int64{5, 6}},
		{"name wins over id", media.Filters{GenreName: "comedy", GenreID: 18}, []int64{6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.catalog.pages[1] = []catalog.DiscoverResult{result(5, 18), result(6, 35)}

			cards, err := h.svc.ByFilters(t.Context(), 1, media.KindMovie, tc.filters, "en")
			if err != nil {
				t.Fatalf("ByFilters: %v", err)
			}
			if !slices.Equal(cardIDs(cards), tc.want) {
				t.Fatalf("cards = %v, want %v", cardIDs(cards), tc.want)
			}
		})
	}
}
