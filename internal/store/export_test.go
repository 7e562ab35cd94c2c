package store

import "context"

// BumpSchemaVersionForTest rewrites the recorded version to simulate an old database.
func (s *Store) BumpSchemaVersionForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = version + 1")
	return err
}
