// Package sqlite provides a unified SQLite-based implementation of the
// driven store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements several store interfaces over one
// connection:
//
//   - RecordStore: one table per entity type, fields as JSON
//   - MatchStore: the match_associations graph
//   - SessionStore: sync session history
//   - SchedulerStore: periodic sync state and results
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.archisync/data/archisync.db
//
// # Concurrency
//
// The database runs in WAL mode so the matcher can read while a pipeline
// writes. Writes that fail with SQLITE_BUSY are retried.
package sqlite
