package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/media"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := catalog.New("", "https://example.com"); err == nil {
		t.Fatal("expected error when api key missing")
	}
	if _, err := catalog.New("key", " "); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestDiscoverBuildsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/tv" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		checks := map[string]string{
			"api_key":                "key",
			"page":                   "3",
			"with_genres":            "18",
			"first_air_date.gte":     "2010-01-01",
			"first_air_date.lte":     "2015-12-31",
			"with_original_language": "fr",
			"sort_by":                "popularity.desc",
		}
		for key, want := range checks {
			if got := q.Get(key); got != want {
				t.Errorf("param %s = %q, want %q", key, got, want)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":3,"results":[{"id":11,"genre_ids":[18,35]},{"id":12,"genre_ids":[]}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := catalog.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	filters := media.Filters{GenreID: 18, MinReleaseYear: 2010, MaxReleaseYear: 2015, OriginalLanguage: "fr", SortBy: "bogus"}
	results, err := client.Discover(context.Background(), media.KindTV, filters, 3)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(results) != 2 || results[0].ID != 11 || results[0].GenreIDs[1] != 35 {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestDetailsTVUsesExternalIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "external_ids" {
			t.Errorf("expected external_ids append, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("language") != "fr" {
			t.Errorf("expected fr language, got %q", r.URL.Query().Get("language"))
		}
		_, _ = w.Write([]byte(`{"id":1399,"name":"Le Trône de fer","overview":"...","first_air_date":"2011-04-17","poster_path":"/p.jpg","genres":[{"id":10765},{"id":18}],"external_ids":{"imdb_id":"tt0944947"}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := catalog.New("key", server.URL)
	details, err := client.Details(context.Background(), media.KindTV, 1399, "fr")
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if details.Title != "Le Trône de fer" || details.IMDbID != "tt0944947" {
		t.Fatalf("unexpected details: %#v", details)
	}
	if details.ReleaseYear() != 2011 {
		t.Fatalf("unexpected year %d", details.ReleaseYear())
	}
	if len(details.GenreIDs) != 2 || details.GenreIDs[0] != 10765 {
		t.Fatalf("unexpected genres %v", details.GenreIDs)
	}
	if got := client.PosterURL(details.PosterPath); got != "https://image.tmdb.org/t/p/original/p.jpg" {
		t.Fatalf("unexpected poster url %q", got)
	}
}

func TestDetailsMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, _ := catalog.New("key", server.URL)
	if _, err := client.Details(context.Background(), media.KindMovie, 5, "en"); err == nil {
		t.Fatal("expected error when TMDB returns non-200")
	}
}

func TestIDByTitleYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") == "Get Out" && q.Get("primary_release_year") == "2017" {
			_, _ = w.Write([]byte(`{"results":[{"id":42},{"id":99}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := catalog.New("key", server.URL)
	id, ok, err := client.IDByTitleYear(context.Background(), media.KindMovie, "Get Out", 2017)
	if err != nil || !ok || id != 42 {
		t.Fatalf("got %d %v %v, want 42", id, ok, err)
	}
	_, ok, err = client.IDByTitleYear(context.Background(), media.KindMovie, "Nothing", 1900)
	if err != nil || ok {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
	if _, _, err := client.IDByTitleYear(context.Background(), media.KindMovie, "  ", 0); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestTrailerPicksYouTubeTrailer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"key":"a","site":"Vimeo","type":"Trailer"},{"key":"b","site":"YouTube","type":"Teaser"},{"key":"c","site":"YouTube","type":"Trailer"}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := catalog.New("key", server.URL, catalog.WithRateLimit(100))
	url, err := client.Trailer(context.Background(), media.KindMovie, 603, "en")
	if err != nil {
		t.Fatalf("Trailer returned error: %v", err)
	}
	if url != "https://www.youtube.com/watch?v=c" {
		t.Fatalf("unexpected trailer %q", url)
	}
}

func TestPosterURLEmpty(t *testing.T) {
	client, _ := catalog.New("key", "https://example.com", catalog.WithPosterBase("https://img.example/w500/"))
	if client.PosterURL("") != "" {
		t.Fatal("expected empty poster url")
	}
	if got := client.PosterURL("x.jpg"); got != "https://img.example/w500/x.jpg" {
		t.Fatalf("unexpected %q", got)
	}
}
