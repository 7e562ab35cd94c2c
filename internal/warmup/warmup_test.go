package warmup

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/logging"
	"marquee/internal/media"
)

type recorder struct {
	mu     sync.Mutex
	calls  []Combination
	users  []int64
	failOn int
}

func (r *recorder) ByFilters(_ context.Context, userID int64, kind media.Kind, filters media.Filters, _ string) ([]media.Card, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Combination{Kind: kind, Filters: filters})
	r.users = append(r.users, userID)
	n := len(r.calls)
	r.mu.Unlock()
	if r.failOn > 0 && n == r.failOn {
		return nil, errors.New("database is locked")
	}
	return []media.Card{{TMDBID: int64(n)}}, nil
}

var fixedNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestPlanExpandsCombinations(t *testing.T) {
	plan := Plan(Options{
		Kinds:     []media.Kind{media.KindMovie},
		Genres:    []string{"drama", "horror"},
		FromYear:  2023,
		ToYear:    2024,
		Languages: []string{"en", "fr"},
		Sorts:     []string{media.SortPopularity},
	}, fixedNow)
	if len(plan) != 2*2*2 {
		t.Fatalf("len(plan) = %d, want 8", len(plan))
	}
	first := plan[0].Filters
	if first.GenreName != "drama" || first.MinReleaseYear != 2024 || first.MaxReleaseYear != 2024 || first.OriginalLanguage != "en" {
		t.Fatalf("first combination = %+v", first)
	}
	if first.MinIMDbRating == nil || first.MinIMDbVotes == nil ||
		*first.MinIMDbRating != MinRating || *first.MinIMDbVotes != MinVotes {
		t.Fatalf("thresholds = %v/%v", first.MinIMDbRating, first.MinIMDbVotes)
	}
}

func TestPlanDefaultsUseGenreTable(t *testing.T) {
	plan := Plan(Options{Kinds: []media.Kind{media.KindTV}, FromYear: 2025}, fixedNow)
	// 16 TV genres, one year, two languages, three sorts.
	if len(plan) != 16*1*2*3 {
		t.Fatalf("len(plan) = %d", len(plan))
	}
}

func TestRunUsesSystemUserAndCountsFailures(t *testing.T) {
	rec := &recorder{failOn: 2}
	runner := NewRunner(rec, filepath.Join(t.TempDir(), "warmup.lock"), logging.NewNop())
	runner.now = func() time.Time { return fixedNow }
	var progress []int
	runner.OnProgress(func(done, _ int, _ Combination) { progress = append(progress, done) })

	report, err := runner.Run(t.Context(), Options{
		Kinds:     []media.Kind{media.KindMovie},
		Genres:    []string{"drama"},
		FromYear:  2024,
		Languages: []string{"en"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := Report{Combinations: 6, Completed: 5, Failed: 1, Results: 5}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}
	for _, u := range rec.users {
		if u != SystemUserID {
			t.Fatalf("user = %d, want %d", u, SystemUserID)
		}
	}
	if len(progress) != 6 || progress[5] != 6 {
		t.Fatalf("progress = %v", progress)
	}
}

func TestRunRefusesWhenLocked(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "warmup.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer held.Unlock()

	runner := NewRunner(&recorder{}, lockPath, logging.NewNop())
	if _, err := runner.Run(t.Context(), Options{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	rec := &recorder{}
	runner := NewRunner(rec, filepath.Join(t.TempDir(), "warmup.lock"), logging.NewNop())
	runner.now = func() time.Time { return fixedNow }
	ctx, cancel := context.WithCancel(t.Context())
	runner.OnProgress(func(done, _ int, _ Combination) {
		if done == 1 {
			cancel()
		}
	})

	report, err := runner.Run(ctx, Options{
		Kinds:     []media.Kind{media.KindMovie},
		Genres:    []string{"drama"},
		FromYear:  2024,
		Languages: []string{"en"},
		Pause:     time.Hour,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Cancelled || report.Completed != 1 {
		t.Fatalf("report = %+v", report)
	}
}
