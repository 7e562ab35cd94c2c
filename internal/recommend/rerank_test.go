package recommend

import (
	"slices"
	"testing"

	"marquee/internal/media"
	"marquee/internal/store"
)

func rows(specs ...[3]float64) []store.CachedMedia {
	out := make([]store.CachedMedia, 0, len(specs))
	for _, s := range specs {
		out = append(out, cachedRow(int64(s[0]), s[1], int64(s[2]), testToday))
	}
	return out
}

func TestRerankThresholdsAreStrict(t *testing.T) {
	input := rows(
		[3]float64{1, 7.0, 5000},
		[3]float64{2, 7.1, 5000},
		[3]float64{3, 8.0, 1000},
		[3]float64{4, 8.0, 1001},
	)
	got := Rerank(input, media.Filters{MinIMDbRating: media.Ptr(7.0), MinIMDbVotes: media.Ptr[int64](1000)}, 30)
	if want := []int64{2, 4}; !slices.Equal(ids(got), want) {
		t.Fatalf("Rerank = %v, want %v", ids(got), want)
	}
}

func TestRerankUnsetMinimumsKeepEverything(t *testing.T) {
	input := rows([3]float64{1, 0, 0}, [3]float64{2, 5, 10})
	got := Rerank(input, media.Filters{}, 30)
	if want := []int64{1, 2}; !slices.Equal(ids(got), want) {
		t.Fatalf("Rerank = %v, want %v", ids(got), want)
	}
}

func TestRerankExplicitZeroMinimumsExcludeUnrated(t *testing.T) {
	input := rows([3]float64{1, 0, 0}, [3]float64{2, 5, 10}, [3]float64{3, 6, 0})
	tests := []struct {
		name    string
		filters media.Filters
		want    []int64
	}{
		{"rating", media.Filters{MinIMDbRating: media.Ptr(0.0)}, []int64{2, 3}},
		{"votes", media.Filters{MinIMDbVotes: media.Ptr[int64](0)}, []int64{2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Rerank(slices.Clone(input), tc.filters, 30)
			if !slices.Equal(ids(got), tc.want) {
				t.Fatalf("Rerank = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestRerankSortModes(t *testing.T) {
	input := rows(
		[3]float64{1, 6.5, 300},
		[3]float64{2, 8.2, 100},
		[3]float64{3, 7.0, 900},
		[3]float64{4, 8.2, 50},
	)
	tests := []struct {
		sort string
		want []int64
	}{
		{media.SortVoteAverage, []int64{2, 4, 3, 1}},
		{media.SortVoteCount, []int64{3, 1, 2, 4}},
		{media.SortPopularity, []int64{1, 2, 3, 4}},
		{"", []int64{1, 2, 3, 4}},
		{"release_date.desc", []int64{1, 2, 3, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.sort, func(t *testing.T) {
			got := Rerank(slices.Clone(input), media.Filters{SortBy: tc.sort}, 30)
			if !slices.Equal(ids(got), tc.want) {
				t.Fatalf("Rerank(%q) = %v, want %v", tc.sort, ids(got), tc.want)
			}
		})
	}
}

func TestRerankTruncates(t *testing.T) {
	var input []store.CachedMedia
	for i := 1; i <= 45; i++ {
		input = append(input, cachedRow(int64(i), 7, 100, testToday))
	}
	if got := Rerank(input, media.Filters{}, 0); len(got) != DefaultResultLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultResultLimit)
	}
	if got := Rerank(input, media.Filters{}, 5); len(got) != 5 || got[4].TMDBID != 5 {
		t.Fatalf("Rerank limit 5 = %v", ids(got))
	}
}
