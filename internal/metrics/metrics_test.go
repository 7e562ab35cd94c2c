package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb_test", "error"))
	RecordUpstream("tmdb_test", 5*time.Millisecond, errors.New("boom"))
	RecordUpstream("tmdb_test", 5*time.Millisecond, nil)
	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb_test", "error"))
	if after-before != 1 {
		t.Fatalf("expected one error recorded, got %v", after-before)
	}
	if got := testutil.ToFloat64(UpstreamRequests.WithLabelValues("tmdb_test", "success")); got < 1 {
		t.Fatalf("expected success recorded, got %v", got)
	}
}

func TestRecordEnrichmentIgnoresZero(t *testing.T) {
	RecordEnrichment("movie", "noop_test", 0)
	if got := testutil.ToFloat64(EnrichmentTotal.WithLabelValues("movie", "noop_test")); got != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
	RecordEnrichment("movie", "noop_test", 3)
	if got := testutil.ToFloat64(EnrichmentTotal.WithLabelValues("movie", "noop_test")); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState("omdb_test", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("omdb_test")); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}
