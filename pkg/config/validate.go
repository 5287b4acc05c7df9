package config

import (
	"fmt"
	"regexp"

	"github.com/robfig/cron/v3"

	"hooktrap-hq/hooktrap/pkg/telemetry/logging"
)

// Validate checks the configuration for invalid values. It returns the
// first error found, wrapped with the section it belongs to.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validateCollector(&cfg.Collector); err != nil {
		return fmt.Errorf("collector: %w", err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := validateRetention(cfg); err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	if err := validateRateLimit(cfg); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address must not be empty")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}

func validateCollector(cfg *CollectorConfig) error {
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return fmt.Errorf("max_header_bytes must be positive")
	}
	for _, pattern := range cfg.RedactPatterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("invalid redact pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateStorage(cfg *StorageConfig) error {
	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported backend %q (want \"sqlite\" or \"memory\")", cfg.Backend)
	}
	if cfg.Backend == "sqlite" {
		if cfg.Path == "" {
			return fmt.Errorf("path must not be empty for the sqlite backend")
		}
		switch cfg.Driver {
		case "sqlite3", "sqlite":
		default:
			return fmt.Errorf("unsupported driver %q (want \"sqlite3\" or \"sqlite\")", cfg.Driver)
		}
	}
	return nil
}

func validateRetention(cfg *Config) error {
	if cfg.Retention.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			return fmt.Errorf("invalid prune_schedule %q: %w", cfg.Retention.PruneSchedule, err)
		}
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		return fmt.Errorf("archive_path must be set when archive_before_delete is enabled")
	}
	return nil
}

func validateRateLimit(cfg *Config) error {
	if cfg.RateLimit.RequestsPerWindow < 0 {
		return fmt.Errorf("requests_per_window must not be negative")
	}
	if cfg.RateLimit.Window < 0 {
		return fmt.Errorf("window must not be negative")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Logging.Format)
	}
	return nil
}
