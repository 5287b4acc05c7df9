package storage

// SchemaVersion is the current database schema version. It is written to
// the schema_version table on initialization and verified on open.
const SchemaVersion = 1

// Schema creates the events table and its supporting indexes.
//
// The id column is AUTOINCREMENT so identifiers are strictly increasing
// and never reused, even across deletes. received_at is stored as a
// fixed-width UTC string (event.TimeLayout), which makes lexicographic
// range scans equivalent to chronological ones.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at TEXT NOT NULL,
	method TEXT NOT NULL,
	path TEXT NOT NULL,
	query TEXT NOT NULL,
	client_ip TEXT NOT NULL,
	x_forwarded_for TEXT NOT NULL,
	x_real_ip TEXT NOT NULL,
	origin TEXT NOT NULL,
	referer TEXT NOT NULL,
	user_agent TEXT NOT NULL,
	content_type TEXT NOT NULL,
	headers_json TEXT NOT NULL,
	body_text TEXT,
	body_b64 TEXT,
	body_truncated INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_received_at ON events(received_at);
CREATE INDEX IF NOT EXISTS idx_events_method ON events(method);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads back the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`
