package recommend

import (
	"slices"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/media"
)

func TestGenreMatchesLeadingPositionsOnly(t *testing.T) {
	tests := []struct {
		name   string
		genres []int
		want   int
		match  bool
	}{
		{"no genre requested", []int{35}, 0, true},
		{"first position", []int{18, 35}, 18, true},
		{"second position", []int{35, 18}, 18, true},
		{"third position", []int{35, 28, 18}, 18, false},
		{"absent", []int{35}, 18, false},
		{"no genres", nil, 18, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := genreMatches(tc.genres, tc.want); got != tc.match {
				t.Fatalf("genreMatches(%v, %d) = %v, want %v", tc.genres, tc.want, got, tc.match)
			}
		})
	}
}

func TestDiscoverFiltersGenreAndExclusions(t *testing.T) {
	h := newHarness(t)
	h.catalog.pages[1] = []catalog.DiscoverResult{
		result(1, 18),
		result(2, 35, 28, 18),
		result(3, 35, 18),
		result(4, 18),
		result(1, 18),
	}
	excluded := map[int64]struct{}{4: {}}

	got := h.svc.Discover(t.Context(), media.KindMovie, media.Filters{GenreID: 18}, excluded)
	if want := []int64{1, 3}; !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverStopsAtTarget(t *testing.T) {
	h := newHarness(t)
	h.svc.settings.DiscoveryTarget = 3
	h.catalog.pages[1] = []catalog.DiscoverResult{result(1), result(2)}
	h.catalog.pages[2] = []catalog.DiscoverResult{result(3), result(4)}
	h.catalog.pages[3] = []catalog.DiscoverResult{result(5)}

	got := h.svc.Discover(t.Context(), media.KindMovie, media.Filters{}, nil)
	if want := []int64{1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
	if want := []int{1, 2}; !slices.Equal(h.catalog.discoverPages, want) {
		t.Fatalf("pages fetched = %v, want %v", h.catalog.discoverPages, want)
	}
}

func TestDiscoverRespectsPageCap(t *testing.T) {
	h := newHarness(t)
	h.svc.settings.DiscoveryMaxPages = 3
	for page := 1; page <= 5; page++ {
		h.catalog.pages[page] = []catalog.DiscoverResult{result(int64(page))}
	}

	got := h.svc.Discover(t.Context(), media.KindMovie, media.Filters{}, nil)
	if want := []int64{1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverFailedPageCountsAsEmpty(t *testing.T) {
	h := newHarness(t)
	h.svc.settings.DiscoveryMaxPages = 3
	h.catalog.pages[1] = []catalog.DiscoverResult{result(1)}
	h.catalog.failPages[2] = true
	h.catalog.pages[3] = []catalog.DiscoverResult{result(3)}

	got := h.svc.Discover(t.Context(), media.KindMovie, media.Filters{}, nil)
	if want := []int64{1, 3}; !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
	if want := []int{1, 2, 3}; !slices.Equal(h.catalog.discoverPages, want) {
		t.Fatalf("pages fetched = %v, want %v", h.catalog.discoverPages, want)
	}
}
