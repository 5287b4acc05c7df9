// Package storage provides the event.Store backends.
//
// The SQLite backend is the durable log used in production. It runs in WAL
// mode so concurrent readers never block the single logical writer, assigns
// identifiers through AUTOINCREMENT (strictly increasing, never reused),
// and commits each insert atomically before AddEvent returns. Two drivers
// are supported and selected by configuration:
//
//   - "sqlite3": github.com/mattn/go-sqlite3 (cgo, default)
//   - "sqlite":  modernc.org/sqlite (pure Go, for cgo-free builds)
//
// The memory backend exists for test isolation only and does not survive
// process restart.
package storage
