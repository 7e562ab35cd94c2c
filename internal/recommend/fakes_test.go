package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/llm"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/rating"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

type fakeCatalog struct {
	mu sync.Mutex

	pages     map[int][]catalog.DiscoverResult
	failPages map[int]bool
	noIMDb    map[int64]bool
	failIDs   map[int64]bool
	titles    map[string]int64

	discoverPages []int
	detailCalls   map[int64]int
	trailerCalls  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages:       map[int][]catalog.DiscoverResult{},
		failPages:   map[int]bool{},
		noIMDb:      map[int64]bool{},
		failIDs:     map[int64]bool{},
		titles:      map[string]int64{},
		detailCalls: map[int64]int{},
	}
}

func titleKey(title string, year int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(title), year)
}

func (f *fakeCatalog) Discover(_ context.Context, _ media.Kind, _ media.Filters, page int) ([]catalog.DiscoverResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverPages = append(f.discoverPages, page)
	if f.failPages[page] {
		return nil, errors.New("tmdb: 503")
	}
	return f.pages[page], nil
}

func (f *fakeCatalog) Details(_ context.Context, _ media.Kind, id int64, locale string) (*catalog.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[id]++
	if f.failIDs[id] {
		return nil, errors.New("tmdb: 500")
	}
	d := &catalog.Details{
		ID:          id,
		Title:       fmt.Sprintf("Title %d %s", id, locale),
		Overview:    fmt.Sprintf("Overview %d %s", id, locale),
		GenreIDs:    []int{18, 53},
		ReleaseDate: "2017-02-24",
		PosterPath:  fmt.Sprintf("/poster%d.jpg", id),
	}
	if !f.noIMDb[id] {
		d.IMDbID = fmt.Sprintf("tt%07d", id)
	}
	return d, nil
}

func (f *fakeCatalog) IDByTitleYear(_ context.Context, _ media.Kind, title string, year int) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if title == "boom" {
		return 0, false, errors.New("tmdb: timeout")
	}
	id, ok := f.titles[titleKey(title, year)]
	return id, ok, nil
}

func (f *fakeCatalog) Trailer(_ context.Context, _ media.Kind, id int64, locale string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trailerCalls++
	if locale == "fr" {
		return "", nil
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%d", id), nil
}

func (f *fakeCatalog) PosterURL(path string) string {
	return "https://image.test" + path
}

func (f *fakeCatalog) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.detailCalls {
		total += n
	}
	return total
}

type fakeRatings struct {
	mu      sync.Mutex
	ratings map[string]rating.Rating
	calls   int
	err     error
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{ratings: map[string]rating.Rating{}}
}

func (f *fakeRatings) set(id int64, score float64, votes int64) {
	f.ratings[fmt.Sprintf("tt%07d", id)] = rating.Rating{Rating: score, Votes: votes}
}

func (f *fakeRatings) Rating(_ context.Context, imdbID string) (rating.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return rating.Rating{}, f.err
	}
	r, ok := f.ratings[imdbID]
	if !ok {
		return rating.Rating{}, rating.ErrNotFound
	}
	return r, nil
}

func (f *fakeRatings) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []string
	temps   []float64
}

func (f *fakeCompleter) Complete(_ context.Context, _ []llm.Message, taskPrompt string, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, taskPrompt)
	f.temps = append(f.temps, temperature)
	return f.content, f.err
}

var testToday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

type harness struct {
	svc       *Service
	store     *store.Store
	catalog   *fakeCatalog
	ratings   *fakeRatings
	completer *fakeCompleter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(4))
	st := testsupport.MustOpenStore(t, cfg, testsupport.FixedClock(2025, time.March, 10))
	h := &harness{
		store:     st,
		catalog:   newFakeCatalog(),
		ratings:   newFakeRatings(),
		completer: &fakeCompleter{},
	}
	settings := SettingsFromConfig(cfg)
	settings.RequestTimeout = time.Second
	h.svc = NewService(st, h.catalog, h.ratings, h.completer, settings, logging.NewNop())
	return h
}

func cachedRow(id int64, score float64, votes int64, refreshed time.Time) store.CachedMedia {
	return store.CachedMedia{
		Kind:         media.KindMovie,
		TMDBID:       id,
		IMDbID:       fmt.Sprintf("tt%07d", id),
		IMDbRating:   score,
		IMDbVotes:    votes,
		ReleaseYear:  2020,
		TitleEN:      fmt.Sprintf("Title %d en", id),
		TitleFR:      fmt.Sprintf("Title %d fr", id),
		GenreIDs:     []int{18},
		GenreNamesEN: []string{"Drama"},
		GenreNamesFR: []string{"Drame"},
		RefreshedOn:  refreshed,
	}
}

func ids(rows []store.CachedMedia) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.TMDBID
	}
	return out
}

func cardIDs(cards []media.Card) []int64 {
	out := make([]int64, len(cards))
	for i, c := range cards {
		out[i] = c.TMDBID
	}
	return out
}

func result(id int64, genreIDs ...int) catalog.DiscoverResult {
	return catalog.DiscoverResult{ID: id, GenreIDs: genreIDs}
}
