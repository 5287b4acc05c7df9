package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. Missing keys fall back to defaults, and the result is
// validated. An empty path yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefault()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
		ApplyDefaults(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention HOOKTRAP_SECTION_FIELD (e.g. HOOKTRAP_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies HOOKTRAP_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("HOOKTRAP_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("HOOKTRAP_SERVER_PUBLIC_BASE_URL"); val != "" {
		cfg.Server.PublicBaseURL = val
	}
	if val := os.Getenv("HOOKTRAP_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("HOOKTRAP_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Collector overrides
	if val := os.Getenv("HOOKTRAP_COLLECTOR_TOKENS"); val != "" {
		cfg.Collector.Tokens = splitAndTrim(val)
	}
	if val := os.Getenv("HOOKTRAP_COLLECTOR_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Collector.MaxBodyBytes = i
		}
	}
	if val := os.Getenv("HOOKTRAP_COLLECTOR_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Collector.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("HOOKTRAP_COLLECTOR_STORE_BODY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Collector.StoreBody = b
		}
	}
	if val := os.Getenv("HOOKTRAP_COLLECTOR_TRUST_PROXY_HEADERS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Collector.TrustProxyHeaders = b
		}
	}
	if val := os.Getenv("HOOKTRAP_COLLECTOR_REDACT_PATTERNS_FILE"); val != "" {
		cfg.Collector.RedactPatternsFile = val
	}

	// Storage overrides
	if val := os.Getenv("HOOKTRAP_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("HOOKTRAP_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("HOOKTRAP_STORAGE_DRIVER"); val != "" {
		cfg.Storage.Driver = val
	}

	// Retention overrides
	if val := os.Getenv("HOOKTRAP_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.RetentionDays = i
		}
	}
	if val := os.Getenv("HOOKTRAP_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Retention.PruneSchedule = val
	}
	if val := os.Getenv("HOOKTRAP_RETENTION_ARCHIVE_PATH"); val != "" {
		cfg.Retention.ArchivePath = val
	}

	// Rate limit overrides
	if val := os.Getenv("HOOKTRAP_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
	if val := os.Getenv("HOOKTRAP_RATE_LIMIT_REQUESTS_PER_WINDOW"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.RequestsPerWindow = i
		}
	}

	// CORS overrides
	if val := os.Getenv("HOOKTRAP_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.CORS.Enabled = b
		}
	}
	if val := os.Getenv("HOOKTRAP_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = splitAndTrim(val)
	}

	// Telemetry overrides
	if val := os.Getenv("HOOKTRAP_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HOOKTRAP_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("HOOKTRAP_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
