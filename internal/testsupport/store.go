package testsupport

import (
	"testing"
	"time"

	"marquee/internal/config"
	"marquee/internal/store"
)

// MustOpenStore opens a store.Store at the config's database path and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...store.Option) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.DatabasePath(), opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// FixedClock returns a clock option pinned to the given date.
func FixedClock(year int, month time.Month, day int) store.Option {
	fixed := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return store.WithClock(func() time.Time { return fixed })
}

// MustInsert inserts m into the cache or fails the test.
func MustInsert(t testing.TB, st *store.Store, m store.CachedMedia) {
	t.Helper()

	h, err := st.Acquire(t.Context())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Close()
	inserted, err := h.InsertIfAbsent(t.Context(), m)
	if err != nil {
		t.Fatalf("InsertIfAbsent(%d): %v", m.TMDBID, err)
	}
	if !inserted {
		t.Fatalf("InsertIfAbsent(%d): row already present", m.TMDBID)
	}
}
