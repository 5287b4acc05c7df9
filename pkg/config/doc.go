// Package config defines the service configuration and its loading
// rules.
//
// Configuration is read from a YAML file, with defaults filled in for
// absent keys and HOOKTRAP_* environment variables applied on top.
// Environment variables always win. The loaded configuration is
// validated before use so a bad listen address, storage backend, or
// cron schedule fails at startup rather than at first use.
package config
