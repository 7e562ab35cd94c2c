// Package warmup pre-populates the cache by running filter recommendations
// across genre, year, language and sort combinations.
package warmup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/genres"
	"marquee/internal/logging"
	"marquee/internal/media"
)

// SystemUserID owns warm-up requests. It never has exclusion rows.
const SystemUserID int64 = -1

// Filter thresholds applied to every warm-up combination.
const (
	MinRating = 6.0
	MinVotes  = 5000
)

// ErrAlreadyRunning reports that another warm-up holds the lock.
var ErrAlreadyRunning = errors.New("warmup: another run holds the lock")

// Recommender is the single pipeline entry point warm-up drives.
type Recommender interface {
	ByFilters(ctx context.Context, userID int64, kind media.Kind, filters media.Filters, locale string) ([]media.Card, error)
}

// Options selects the combinations to run. Zero values use defaults.
type Options struct {
	Kinds     []media.Kind
	Genres    []string
	FromYear  int
	ToYear    int
	Languages []string
	Sorts     []string
	Pause     time.Duration
}

func (o Options) withDefaults(now time.Time) Options {
	if len(o.Kinds) == 0 {
		o.Kinds = []media.Kind{media.KindMovie, media.KindTV}
	}
	if o.ToYear == 0 {
		o.ToYear = now.Year()
	}
	if o.FromYear == 0 {
		o.FromYear = 1980
	}
	if o.FromYear > o.ToYear {
		o.FromYear, o.ToYear = o.ToYear, o.FromYear
	}
	if len(o.Languages) == 0 {
		o.Languages = []string{"en", "fr"}
	}
	if len(o.Sorts) == 0 {
		o.Sorts = []string{media.SortPopularity, media.SortVoteAverage, media.SortVoteCount}
	}
	if o.Pause < 0 {
		o.Pause = 0
	}
	return o
}

// Combination is one filter set issued during warm-up.
type Combination struct {
	Kind    media.Kind
	Filters media.Filters
}

// Plan expands options into the ordered list of combinations. Years run from
// newest to oldest.
func Plan(opts Options, now time.Time) []Combination {
	opts = opts.withDefaults(now)
	var plan []Combination
	for _, kind := range opts.Kinds {
		names := opts.Genres
		if len(names) == 0 {
			names = genres.Known(kind)
		}
		for _, genre := range names {
			for year := opts.ToYear; year >= opts.FromYear; year-- {
				for _, lang := range opts.Languages {
					for _, sort := range opts.Sorts {
						plan = append(plan, Combination{
							Kind: kind,
							Filters: media.Filters{
								GenreName:        genre,
								MinIMDbRating:    media.Ptr(MinRating),
								MinIMDbVotes:     media.Ptr[int64](MinVotes),
								MinReleaseYear:   year,
								MaxReleaseYear:   year,
								OriginalLanguage: lang,
								SortBy:           sort,
							},
						})
					}
				}
			}
		}
	}
	return plan
}

// Report summarizes a warm-up run.
type Report struct {
	Combinations int  `json:"combinations"`
	Completed    int  `json:"completed"`
	Failed       int  `json:"failed"`
	Results      int  `json:"results"`
	Cancelled    bool `json:"cancelled"`
}

// Progress is called after each combination.
type Progress func(done, total int, combo Combination)

// Runner executes warm-up plans under a file lock.
type Runner struct {
	recommender Recommender
	lockPath    string
	logger      *slog.Logger
	now         func() time.Time
	progress    Progress
}

// NewRunner creates a Runner that guards runs with a lock file at lockPath.
func NewRunner(recommender Recommender, lockPath string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		recommender: recommender,
		lockPath:    lockPath,
		logger:      logging.NewComponentLogger(logger, "warmup"),
		now:         time.Now,
	}
}

// OnProgress registers a progress callback.
func (r *Runner) OnProgress(fn Progress) {
	r.progress = fn
}

// Run executes every combination, pausing between them. Cancelling ctx stops
// the run after the in-flight combination and returns the partial report.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire warmup lock: %w", err)
	}
	if !ok {
		return Report{}, ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release warmup lock", logging.Error(err))
		}
	}()

	opts = opts.withDefaults(r.now())
	plan := Plan(opts, r.now())
	report := Report{Combinations: len(plan)}
	r.logger.Info("warmup started",
		logging.Int("combinations", len(plan)),
		logging.String("lock", r.lockPath),
	)

	for i, combo := range plan {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		cards, err := r.recommender.ByFilters(ctx, SystemUserID, combo.Kind, combo.Filters, combo.Filters.OriginalLanguage)
		if err != nil {
			report.Failed++
			logging.WarnWithContext(ctx, r.logger, "warmup combination failed", "warmup_failed",
				logging.String(logging.FieldMediaKind, string(combo.Kind)),
				logging.String("genre", combo.Filters.GenreName),
				logging.Int("year", combo.Filters.MinReleaseYear),
				logging.Error(err),
			)
		} else {
			report.Completed++
			report.Results += len(cards)
		}
		if r.progress != nil {
			r.progress(i+1, len(plan), combo)
		}
		if i < len(plan)-1 && !sleepCtx(ctx, opts.Pause) {
			report.Cancelled = true
			break
		}
	}

	r.logger.Info("warmup finished",
		logging.Int("completed", report.Completed),
		logging.Int("failed", report.Failed),
		logging.Int("results", report.Results),
		logging.Bool("cancelled", report.Cancelled),
	)
	return report, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
