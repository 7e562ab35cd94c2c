// Package store persists the media cache, per-user exclusion statuses, and
// chat transcripts in SQLite.
//
// Concurrent pipeline workers each Acquire their own Handle, which pins a
// dedicated connection from the pool for the duration of that unit of work.
// Cache rows are never deleted; rating fields are refreshed in place and the
// refresh date only moves forward. Insert races resolve through the primary
// key: the loser observes InsertIfAbsent returning false.
package store
