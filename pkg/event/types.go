package event

import (
	"context"
	"time"
)

// TimeLayout is the serialization format for event timestamps. It is a
// fixed-width UTC RFC 3339 layout (microsecond precision) so that
// lexicographic comparison of stored strings matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Pagination bounds for the poll/read path. Callers requesting more than
// MaxLimit silently receive MaxLimit events.
const (
	DefaultLimit = 50
	MinLimit     = 1
	MaxLimit     = 200
)

// FormatTime renders t in the canonical stored timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Now returns the current time in the canonical stored timestamp format.
func Now() string {
	return FormatTime(time.Now())
}

// Event is one recorded inbound HTTP request. Events are created once by
// the ingestion handler and are immutable after storage; the only mutation
// the store supports is bulk age-based deletion.
type Event struct {
	// ID is assigned by the store at insertion time. It is strictly
	// increasing, never reused, and serves as the pagination cursor.
	ID int64 `json:"id"`

	// ReceivedAt is the UTC acceptance timestamp in TimeLayout format.
	ReceivedAt string `json:"received_at"`

	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query"`

	// ClientIP is the best-guess client address derived from the proxy
	// header chain; XForwardedFor and XRealIP hold the raw header values
	// for forensics.
	ClientIP      string `json:"client_ip"`
	XForwardedFor string `json:"x_forwarded_for"`
	XRealIP       string `json:"x_real_ip"`

	Origin      string `json:"origin"`
	Referer     string `json:"referer"`
	UserAgent   string `json:"user_agent"`
	ContentType string `json:"content_type"`

	// Headers contains only allow-listed, size-clamped header values,
	// keyed by lower-cased header name.
	Headers map[string]string `json:"headers"`

	// BodyText and BodyB64 are mutually exclusive: BodyText holds the body
	// when it decodes as valid UTF-8, BodyB64 holds the base64 form
	// otherwise. Both are empty when no body was stored.
	BodyText string `json:"body_text,omitempty"`
	BodyB64  string `json:"body_b64,omitempty"`

	// BodyTruncated is true when the original body exceeded the configured
	// maximum and was cut before storage.
	BodyTruncated bool `json:"body_truncated"`
}

// Query defines the filter parameters for reading events back out of the
// store. The zero value reads from the beginning with the default limit.
type Query struct {
	// AfterID is the pagination cursor: only events with ID > AfterID are
	// returned.
	AfterID int64

	// Limit caps the number of events returned. The store clamps it into
	// [MinLimit, MaxLimit].
	Limit int

	// Method is an optional exact-match method filter, compared
	// case-insensitively.
	Method string

	// PathContains is an optional case-sensitive substring filter on the
	// event path.
	PathContains string
}

// Stats is an aggregate snapshot over the stored event log, computed
// freshly per call.
type Stats struct {
	TotalCount          int64            `json:"total_count"`
	Last24hCount        int64            `json:"last_24h_count"`
	UniqueClientIPCount int64            `json:"unique_client_ip_count"`
	CountsByMethod      map[string]int64 `json:"counts_by_method"`
	FirstEventTimestamp string           `json:"first_event_timestamp"`
	LastEventTimestamp  string           `json:"last_event_timestamp"`
}

// Store is the durable, ordered event log. Implementations must be safe
// for concurrent use and must assign identifiers in commit order.
type Store interface {
	// AddEvent persists an event and returns its assigned identifier.
	// The event is visible to subsequent reads once the call returns.
	AddEvent(ctx context.Context, e *Event) (int64, error)

	// GetEvents returns events with ID > q.AfterID in ascending ID order,
	// capped at the clamped limit, plus the cursor for the next page: the
	// greatest ID returned, or q.AfterID unchanged when nothing matched.
	GetEvents(ctx context.Context, q Query) ([]*Event, int64, error)

	// Stats computes aggregate statistics over the full log.
	Stats(ctx context.Context) (*Stats, error)

	// CleanupOlderThan irreversibly deletes events received more than the
	// given number of days ago and returns the count removed.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)

	// Close releases resources held by the storage backend.
	Close() error
}
