// Package sqlite provides the embedded, on-disk implementation of the
// driven VectorStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Vectors are stored as
// little-endian float32 blobs and ranked exactly by cosine similarity in Go,
// which is fast enough for a single standard's worth of chunks.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <storage.path>/isoguide.db, by default
// data/vector_db/isoguide.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
