package config

import (
	"time"

	"hooktrap-hq/hooktrap/pkg/event/retention"
	"hooktrap-hq/hooktrap/pkg/limits/ratelimit"
	"hooktrap-hq/hooktrap/pkg/telemetry/logging"
	"hooktrap-hq/hooktrap/pkg/telemetry/metrics"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Collector CollectorConfig  `yaml:"collector"`
	Storage   StorageConfig    `yaml:"storage"`
	Retention retention.Config `yaml:"retention"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`
	CORS      CORSConfig       `yaml:"cors"`
	Stream    StreamConfig     `yaml:"stream"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	ListenAddress string `yaml:"listen_address"`

	// PublicBaseURL is the externally reachable base URL, used when
	// printing collector URLs. Defaults to http://<listen_address>.
	PublicBaseURL string `yaml:"public_base_url"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CollectorConfig contains ingestion settings.
type CollectorConfig struct {
	// Tokens is the set of accepted capture tokens.
	Tokens []string `yaml:"tokens"`

	// MaxBodyBytes caps how much of a request body is stored.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MaxHeaderBytes caps the total serialized size of stored headers.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// StoreBody toggles body capture.
	StoreBody bool `yaml:"store_body"`

	// TrustProxyHeaders controls whether client attribution honors
	// X-Forwarded-For and related headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	// HeaderAllowlist lists the header names stored per event.
	HeaderAllowlist []string `yaml:"header_allowlist"`

	// RedactPatterns are regular expressions whose matches are replaced
	// in stored query strings and text bodies.
	RedactPatterns []string `yaml:"redact_patterns"`

	// RedactPatternsFile points at a file with one pattern per line,
	// reloaded on change.
	RedactPatternsFile string `yaml:"redact_patterns_file"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Backend selects the storage backend ("sqlite", "memory").
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// Driver selects the SQLite driver ("sqlite3" for cgo,
	// "sqlite" for the pure-Go build).
	Driver string `yaml:"driver"`

	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	WALMode      bool          `yaml:"wal_mode"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// CORSConfig contains cross-origin settings for the read surface.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StreamConfig contains live event stream settings.
type StreamConfig struct {
	// BufferSize is the per-subscriber delivery buffer.
	BufferSize int `yaml:"buffer_size"`

	// KeepaliveInterval is how often an idle stream emits a keepalive
	// comment.
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
}

// TelemetryConfig groups logging and metrics settings.
type TelemetryConfig struct {
	Logging logging.Config `yaml:"logging"`
	Metrics metrics.Config `yaml:"metrics"`
}
