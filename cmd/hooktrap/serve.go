package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/config"
	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/broadcast"
	"hooktrap-hq/hooktrap/pkg/event/retention"
	"hooktrap-hq/hooktrap/pkg/event/storage"
	"hooktrap-hq/hooktrap/pkg/server"
	"hooktrap-hq/hooktrap/pkg/target"
	"hooktrap-hq/hooktrap/pkg/telemetry/logging"
	"hooktrap-hq/hooktrap/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	token         string
	dbPath        string
	logLevel      string
	setTarget     bool
	publicURL     string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the callback collector server",
	Long: `Start the callback collector server.

Examples:
  # Start with a fresh token
  hooktrap serve --token $(hooktrap gen-token)

  # Start with a config file
  hooktrap serve --config /etc/hooktrap/config.yaml

  # Bind publicly and save the external URL as the target
  hooktrap serve --token <token> --listen 0.0.0.0:8080 \
    --public-url https://hooks.example.com

  # Validate config without starting
  hooktrap serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.token, "token", "", "capture token used in the URL path: /{token}/c")
	serveCmd.Flags().StringVar(&serveFlags.dbPath, "db", "", "override SQLite database file path")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.setTarget, "set-target", true, "save this server as the active target")
	serveCmd.Flags().StringVar(&serveFlags.publicURL, "public-url", "", "override base URL saved to state (useful when binding 0.0.0.0)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.dbPath != "" {
		cfg.Storage.Path = serveFlags.dbPath
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if serveFlags.token != "" {
		token := normalizeToken(serveFlags.token)
		if token == "" {
			return fmt.Errorf("token is empty")
		}
		warnIfNonHex(token)
		cfg.Collector.Tokens = append(cfg.Collector.Tokens, token)
	}
	if len(cfg.Collector.Tokens) == 0 {
		return fmt.Errorf("no capture tokens configured; pass --token or set collector.tokens")
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return err
	}

	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage opens fail-fast: a collector that cannot record is useless.
	var store event.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err = storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:         cfg.Storage.Path,
			Driver:       cfg.Storage.Driver,
			MaxOpenConns: cfg.Storage.MaxOpenConns,
			MaxIdleConns: cfg.Storage.MaxIdleConns,
			WALMode:      cfg.Storage.WALMode,
			BusyTimeout:  cfg.Storage.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open event storage: %w", err)
		}
	case "memory":
		store = storage.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
	defer store.Close()

	var m *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		m = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	broadcaster := broadcast.New(cfg.Stream.BufferSize)
	if m != nil {
		broadcaster.OnDrop(m.RecordDroppedDelivery)
	}

	redactor := collector.NewRedactor(cfg.Collector.RedactPatterns, cfg.Collector.RedactPatternsFile)
	if cfg.Collector.RedactPatternsFile != "" {
		watchPatterns(ctx, redactor)
	}

	handler := collector.NewHandler(
		collector.Config{
			MaxBodyBytes:      cfg.Collector.MaxBodyBytes,
			MaxHeaderBytes:    cfg.Collector.MaxHeaderBytes,
			HeaderAllowlist:   collector.NormalizeAllowlist(cfg.Collector.HeaderAllowlist),
			StoreBody:         cfg.Collector.StoreBody,
			TrustProxyHeaders: cfg.Collector.TrustProxyHeaders,
		},
		collector.NewAuthorizer(cfg.Collector.Tokens),
		redactor,
		store,
		broadcaster,
		m,
	)

	var onPrune func(int64)
	if m != nil {
		onPrune = m.RecordCleanup
	}
	pruner := retention.NewPruner(store, &cfg.Retention, onPrune)
	if err := pruner.Start(ctx); err != nil {
		slog.Warn("retention scheduler unavailable", "error", err)
	}
	defer pruner.Stop()

	baseURL := resolveBaseURL(cfg)
	printServeBanner(cfg, baseURL)

	if serveFlags.setTarget {
		if err := saveServeTarget(cfg, baseURL); err != nil {
			slog.Warn("failed to save target state", "error", err)
		}
	}

	srv := server.NewServer(cfg, handler, store, broadcaster, m, Version)
	return srv.Start(ctx)
}

// resolveBaseURL picks the externally reachable base URL: the explicit
// flag, then the configured public URL, then the listen address with
// wildcard hosts rewritten to loopback.
func resolveBaseURL(cfg *config.Config) string {
	if serveFlags.publicURL != "" {
		return strings.TrimRight(serveFlags.publicURL, "/")
	}
	if cfg.Server.PublicBaseURL != "" {
		return strings.TrimRight(cfg.Server.PublicBaseURL, "/")
	}

	host, port, err := net.SplitHostPort(cfg.Server.ListenAddress)
	if err != nil {
		return "http://" + cfg.Server.ListenAddress
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
}

func printServeBanner(cfg *config.Config, baseURL string) {
	fmt.Printf("Starting server on %s\n", cfg.Server.ListenAddress)
	for _, token := range cfg.Collector.Tokens {
		fmt.Printf("Collector: %s/%s/c\n", baseURL, token)
		fmt.Printf("Logs:      %s/%s/logs\n", baseURL, token)
		fmt.Printf("Events:    %s/%s/events\n", baseURL, token)
	}
}

func saveServeTarget(cfg *config.Config, baseURL string) error {
	statePath, err := target.DefaultPath()
	if err != nil {
		return err
	}
	st := &target.State{
		BaseURL:  baseURL,
		Token:    cfg.Collector.Tokens[0],
		Provider: "local",
	}
	if err := target.Save(st, statePath); err != nil {
		return err
	}
	fmt.Printf("saved target -> %s (state: %s)\n", baseURL, statePath)
	return nil
}

// watchPatterns runs the redactor's pattern file watcher in the
// background. Watch blocks until the context is cancelled, so it must
// not run on the startup path.
func watchPatterns(ctx context.Context, redactor *collector.Redactor) {
	go func() {
		if err := redactor.Watch(ctx); err != nil {
			slog.Warn("pattern file watch unavailable", "error", err)
		}
	}()
}
