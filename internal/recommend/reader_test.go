package recommend

import (
	"slices"
	"testing"

	"marquee/internal/media"
	"marquee/internal/testsupport"
)

func TestReadOrderedFollowsInputOrderAndDropsMissing(t *testing.T) {
	h := newHarness(t)
	for _, id := range []int64{3, 1, 2} {
		testsupport.MustInsert(t, h.store, cachedRow(id, 7, 100, testToday))
	}

	got, err := h.svc.ReadOrdered(t.Context(), media.KindMovie, []int64{2, 99, 3, 1})
	if err != nil {
		t.Fatalf("ReadOrdered: %v", err)
	}
	if want := []int64{2, 3, 1}; !slices.Equal(ids(got), want) {
		t.Fatalf("ReadOrdered = %v, want %v", ids(got), want)
	}
}

func TestReadOrderedIgnoresOtherKind(t *testing.T) {
	h := newHarness(t)
	testsupport.MustInsert(t, h.store, cachedRow(7, 7, 100, testToday))

	got, err := h.svc.ReadOrdered(t.Context(), media.KindTV, []int64{7})
	if err != nil {
		t.Fatalf("ReadOrdered: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ReadOrdered(tv) = %v, want empty", ids(got))
	}
}

func TestProjectPicksLocaleWithFallback(t *testing.T) {
	row := cachedRow(1, 7.5, 900, testToday)
	row.OverviewEN = "An overview"
	row.OverviewFR = ""
	row.TrailerURLFR = "https://www.youtube.com/watch?v=fr"
	row.TrailerURLEN = "https://www.youtube.com/watch?v=en"

	fr := Project(row, "fr-FR")
	if fr.Title != "Title 1 fr" || fr.Overview != "An overview" {
		t.Fatalf("fr card = %+v", fr)
	}
	if fr.TrailerURL != row.TrailerURLFR || fr.GenreNames[0] != "Drame" {
		t.Fatalf("fr card = %+v", fr)
	}

	en := Project(row, "")
	if en.Title != "Title 1 en" || en.GenreNames[0] != "Drama" || en.TrailerURL != row.TrailerURLEN {
		t.Fatalf("en card = %+v", en)
	}
	if en.IMDbRating != 7.5 || en.IMDbVotes != 900 || en.Kind != media.KindMovie {
		t.Fatalf("en card = %+v", en)
	}

	row.GenreNamesFR = nil
	if got := Project(row, "fr"); len(got.GenreNames) != 1 || got.GenreNames[0] != "Drama" {
		t.Fatalf("fr genre fallback = %v", got.GenreNames)
	}
}
