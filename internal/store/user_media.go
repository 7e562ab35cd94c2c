package store

import (
	"context"
	"fmt"

	"marquee/internal/media"
)

// ExcludedIDs returns every id of kind the user marked seen, towatchlater, or hidden.
func (s *Store) ExcludedIDs(ctx context.Context, userID int64, kind media.Kind) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tmdb_id FROM user_media WHERE user_id = ? AND media_kind = ?
		 AND status IN ('seen', 'towatchlater', 'hidden')`,
		userID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query excluded ids: %w", err)
	}
	defer rows.Close()

	excluded := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan excluded id: %w", err)
		}
		excluded[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate excluded ids: %w", err)
	}
	return excluded, nil
}

// SetStatus records the user's status for a title. StatusNone removes it.
func (s *Store) SetStatus(ctx context.Context, userID int64, kind media.Kind, id int64, status media.Status) error {
	if !kind.Valid() {
		return fmt.Errorf("set status: invalid kind %q", kind)
	}
	if status == media.StatusNone {
		if _, err := execWithRetry(ctx, s.db,
			"DELETE FROM user_media WHERE user_id = ? AND tmdb_id = ? AND media_kind = ?",
			userID, id, string(kind),
		); err != nil {
			return fmt.Errorf("clear status: %w", err)
		}
		return nil
	}
	if _, err := media.ParseStatus(string(status)); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	_, err := execWithRetry(ctx, s.db,
		`INSERT INTO user_media (user_id, media_kind, tmdb_id, status, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, tmdb_id, media_kind) DO UPDATE SET
		   status = excluded.status, updated_at = excluded.updated_at`,
		userID, string(kind), id, string(status), s.now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// ListByStatus returns ids with the given status, most recently updated first.
func (s *Store) ListByStatus(ctx context.Context, userID int64, kind media.Kind, status media.Status) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tmdb_id FROM user_media WHERE user_id = ? AND media_kind = ? AND status = ?
		 ORDER BY updated_at DESC, rowid DESC`,
		userID, string(kind), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list by status: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
