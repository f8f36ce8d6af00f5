// Package store persists crops, stage templates, return snapshots, and
// inspection stage instances in SQLite.
//
// Every connection opens with WAL journaling, foreign keys, a busy timeout,
// and immediate-mode transactions so the first statement of a write
// transaction takes the database write lock. Update retries a whole
// transaction when SQLite reports the database as busy. The schema is
// embedded and versioned; a version mismatch refuses to open rather than
// migrating in place.
package store
