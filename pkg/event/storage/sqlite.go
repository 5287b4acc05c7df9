package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"hooktrap-hq/hooktrap/pkg/event"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the SQL driver: "sqlite3" (cgo, mattn) or
	// "sqlite" (pure Go, modernc). Default: "sqlite3".
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/hooktrap.db",
		Driver:       "sqlite3",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements event.Store using SQLite. Identifier assignment
// rides on the AUTOINCREMENT rowid, so ids are strictly increasing and
// never reused; each insert commits atomically before AddEvent returns.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at the configured path,
// enables WAL mode if configured, and initializes the schema. Failure here
// is fatal to the caller: a collector without a durable store must not
// start.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "event.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, event.NewStorageError(config.Driver, "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return event.NewStorageError(s.config.Driver, "enable_wal", err)
		}
		if _, err := s.db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
			return event.NewStorageError(s.config.Driver, "set_synchronous", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return event.NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return event.NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return event.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return event.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return event.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// AddEvent persists an event and returns its assigned identifier.
func (s *SQLiteStore) AddEvent(ctx context.Context, e *event.Event) (int64, error) {
	headersJSON, err := json.Marshal(e.Headers)
	if err != nil {
		return 0, event.NewStorageError(s.config.Driver, "marshal_headers", err)
	}

	// Empty body columns stay NULL so "no body" is distinguishable from
	// an empty text body.
	var bodyText, bodyB64 interface{}
	if e.BodyText != "" {
		bodyText = e.BodyText
	}
	if e.BodyB64 != "" {
		bodyB64 = e.BodyB64
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			received_at, method, path, query,
			client_ip, x_forwarded_for, x_real_ip,
			origin, referer, user_agent, content_type,
			headers_json, body_text, body_b64, body_truncated
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		e.ReceivedAt, e.Method, e.Path, e.Query,
		e.ClientIP, e.XForwardedFor, e.XRealIP,
		e.Origin, e.Referer, e.UserAgent, e.ContentType,
		string(headersJSON), bodyText, bodyB64, boolToInt(e.BodyTruncated),
	)
	if err != nil {
		return 0, event.NewStorageError(s.config.Driver, "add", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, event.NewStorageError(s.config.Driver, "add", err)
	}

	return id, nil
}

// GetEvents returns events with id > q.AfterID in ascending id order.
// The limit is clamped into [event.MinLimit, event.MaxLimit] regardless of
// what the caller asks for.
func (s *SQLiteStore) GetEvents(ctx context.Context, q event.Query) ([]*event.Event, int64, error) {
	limit := q.Limit
	if limit < event.MinLimit {
		limit = event.DefaultLimit
	}
	if limit > event.MaxLimit {
		limit = event.MaxLimit
	}
	afterID := q.AfterID
	if afterID < 0 {
		afterID = 0
	}

	conditions := []string{"id > ?"}
	args := []interface{}{afterID}

	if q.Method != "" {
		conditions = append(conditions, "UPPER(method) = ?")
		args = append(args, strings.ToUpper(q.Method))
	}
	if q.PathContains != "" {
		// instr() is a case-sensitive substring match.
		conditions = append(conditions, "instr(path, ?) > 0")
		args = append(args, q.PathContains)
	}

	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, received_at, method, path, query,
			client_ip, x_forwarded_for, x_real_ip,
			origin, referer, user_agent, content_type,
			headers_json, body_text, body_b64, body_truncated
		FROM events
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY id ASC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, afterID, event.NewQueryError(q, err)
	}
	defer rows.Close()

	events := []*event.Event{}
	lastID := afterID
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, afterID, event.NewQueryError(q, err)
		}
		events = append(events, e)
		lastID = e.ID
	}
	if err := rows.Err(); err != nil {
		return nil, afterID, event.NewQueryError(q, err)
	}

	return events, lastID, nil
}

// Stats computes aggregate statistics over the full log. Everything is
// computed freshly per call; the store keeps no cached aggregates.
func (s *SQLiteStore) Stats(ctx context.Context) (*event.Stats, error) {
	stats := &event.Stats{
		CountsByMethod: map[string]int64{},
	}

	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT client_ip), MIN(received_at), MAX(received_at)
		FROM events
	`).Scan(&stats.TotalCount, &stats.UniqueClientIPCount, &first, &last)
	if err != nil {
		return nil, event.NewStorageError(s.config.Driver, "stats", err)
	}
	stats.FirstEventTimestamp = first.String
	stats.LastEventTimestamp = last.String

	cutoff := event.FormatTime(time.Now().Add(-24 * time.Hour))
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE received_at >= ?`, cutoff,
	).Scan(&stats.Last24hCount)
	if err != nil {
		return nil, event.NewStorageError(s.config.Driver, "stats", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT method, COUNT(*) FROM events GROUP BY method`)
	if err != nil {
		return nil, event.NewStorageError(s.config.Driver, "stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var count int64
		if err := rows.Scan(&method, &count); err != nil {
			return nil, event.NewStorageError(s.config.Driver, "stats", err)
		}
		stats.CountsByMethod[method] = count
	}
	if err := rows.Err(); err != nil {
		return nil, event.NewStorageError(s.config.Driver, "stats", err)
	}

	return stats, nil
}

// CleanupOlderThan deletes events received more than days ago and returns
// the count removed.
func (s *SQLiteStore) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, event.NewRetentionError(days, fmt.Errorf("days must be positive, got %d", days))
	}

	cutoff := event.FormatTime(time.Now().AddDate(0, 0, -days))
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE received_at < ?`, cutoff)
	if err != nil {
		return 0, event.NewStorageError(s.config.Driver, "cleanup", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, event.NewStorageError(s.config.Driver, "cleanup", err)
	}

	if deleted > 0 {
		s.logger.Info("retention cleanup removed events",
			"deleted_count", deleted,
			"days", days,
		)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return event.NewStorageError(s.config.Driver, "close", err)
	}
	s.logger.Info("sqlite store closed")
	return nil
}

// scanEvent scans a database row into an Event.
func scanEvent(rows *sql.Rows) (*event.Event, error) {
	var e event.Event
	var headersJSON string
	var bodyText, bodyB64 sql.NullString
	var truncated int

	err := rows.Scan(
		&e.ID, &e.ReceivedAt, &e.Method, &e.Path, &e.Query,
		&e.ClientIP, &e.XForwardedFor, &e.XRealIP,
		&e.Origin, &e.Referer, &e.UserAgent, &e.ContentType,
		&headersJSON, &bodyText, &bodyB64, &truncated,
	)
	if err != nil {
		return nil, err
	}

	e.Headers = map[string]string{}
	if headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &e.Headers); err != nil {
			// A corrupt headers blob should not make the whole page
			// unreadable; the event survives without its header map.
			e.Headers = map[string]string{}
		}
	}
	e.BodyText = bodyText.String
	e.BodyB64 = bodyB64.String
	e.BodyTruncated = truncated != 0

	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
