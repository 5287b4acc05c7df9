package config

import (
	"time"

	"hooktrap-hq/hooktrap/pkg/limits/ratelimit"
)

// Default ingestion caps.
const (
	DefaultMaxBodyBytes   = 256 * 1024
	DefaultMaxHeaderBytes = 8 * 1024
)

// DefaultHeaderAllowlist is the set of headers stored per event when the
// configuration does not name its own.
var DefaultHeaderAllowlist = []string{
	"origin",
	"referer",
	"user-agent",
	"x-forwarded-for",
	"x-real-ip",
	"cf-connecting-ip",
	"true-client-ip",
}

// NewDefault returns a fully defaulted configuration. Loading
// unmarshals YAML on top of it so true-by-default booleans survive
// absent keys.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Collector.StoreBody = true
	cfg.Collector.TrustProxyHeaders = true
	cfg.Storage.WALMode = true
	cfg.RateLimit.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// The event stream holds its response open indefinitely, so the
		// server-wide write timeout stays disabled.
		cfg.Server.WriteTimeout = 0
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Collector.MaxBodyBytes == 0 {
		cfg.Collector.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Collector.MaxHeaderBytes == 0 {
		cfg.Collector.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.Collector.HeaderAllowlist) == 0 {
		cfg.Collector.HeaderAllowlist = append([]string(nil), DefaultHeaderAllowlist...)
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/hooktrap.db"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite3"
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = 10
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = 5
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = 5 * time.Second
	}

	if cfg.Retention.RetentionDays == 0 {
		cfg.Retention.RetentionDays = 7
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = "0 3 * * *"
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = "data/archives/"
	}

	rlDef := ratelimit.DefaultConfig()
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit.RequestsPerWindow = rlDef.RequestsPerWindow
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = rlDef.Window
	}

	if cfg.Stream.BufferSize == 0 {
		cfg.Stream.BufferSize = 200
	}
	if cfg.Stream.KeepaliveInterval == 0 {
		cfg.Stream.KeepaliveInterval = 15 * time.Second
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "hooktrap"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}
