package rating

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"marquee/internal/logging"
	"marquee/internal/metrics"
)

const breakerName = "omdb"

// BreakerClient wraps a Source with a circuit breaker so a failing OMDb is
// short-circuited instead of tying up every enrichment worker until timeout.
// Not-found answers count as successes.
type BreakerClient struct {
	source Source
	cb     *gobreaker.CircuitBreaker[Rating]
	logger *slog.Logger
}

var _ Source = (*BreakerClient)(nil)

// BreakerSettings tunes the breaker; zero values use the defaults below.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// NewBreakerClient wraps source.
//
// Defaults: 3 probe requests in half-open state, counts reset every minute,
// 30 seconds open before probing, trip at 60% failures over at least 10 requests.
func NewBreakerClient(source Source, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	if settings.MinRequests == 0 {
		settings.MinRequests = 10
	}
	if settings.FailureRatio <= 0 {
		settings.FailureRatio = 0.6
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	logger = logging.NewComponentLogger(logger, "rating-breaker")
	metrics.SetBreakerState(breakerName, 0)

	cb := gobreaker.NewCircuitBreaker[Rating](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state transition",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	})

	return &BreakerClient{source: source, cb: cb, logger: logger}
}

// Rating fetches through the breaker. Rejections surface gobreaker.ErrOpenState
// or gobreaker.ErrTooManyRequests.
func (b *BreakerClient) Rating(ctx context.Context, imdbID string) (Rating, error) {
	result, err := b.cb.Execute(func() (Rating, error) {
		return b.source.Rating(ctx, imdbID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordRejected(breakerName)
			b.logger.Debug("rating request rejected", logging.Error(err))
		}
		return Rating{}, err
	}
	return result, nil
}

// State reports the breaker state name.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
