package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestIsDuplicateKeyOnlyMatchesKeyViolations(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "marquee.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := t.Context()

	insert := "INSERT INTO cached_media (media_kind, tmdb_id, imdb_rating, refreshed_on) VALUES (?, ?, ?, '2025-01-01')"
	if _, err := s.db.ExecContext(ctx, insert, "movie", 1, 7.0); err != nil {
		t.Fatalf("seed row: %v", err)
	}

	tests := []struct {
		name  string
		query string
		args  []any
		want  bool
	}{
		{"primary key", insert, []any{"movie", 1, 7.0}, true},
		{"check", insert, []any{"movie", 2, -1.0}, false},
		{"check kind", insert, []any{"book", 3, 1.0}, false},
		{"not null", "INSERT INTO cached_media (media_kind, tmdb_id, refreshed_on) VALUES ('movie', 4, NULL)", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.db.ExecContext(ctx, tc.query, tc.args...)
			if err == nil {
				t.Fatal("expected constraint error")
			}
			if got := isDuplicateKey(err); got != tc.want {
				t.Fatalf("isDuplicateKey(%v) = %v, want %v", err, got, tc.want)
			}
		})
	}

	if isDuplicateKey(nil) || isDuplicateKey(errors.New("disk I/O error")) {
		t.Fatal("non-constraint errors must not count as duplicates")
	}
}
