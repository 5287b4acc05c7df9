package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain events.
	// 0 means keep events forever (no pruning).
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM).
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete enables archiving events before deletion.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory to store archived events.
	ArchivePath string `yaml:"archive_path"`
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       7,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// Pruner enforces the retention policy on stored events.
type Pruner struct {
	store     event.Store
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	onPrune   func(deleted int64)
}

// NewPruner creates a retention pruner. onPrune, if non-nil, is invoked
// after each pass with the number of deleted events (used for metrics).
func NewPruner(store event.Store, config *Config, onPrune func(deleted int64)) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:   store,
		config:  config,
		logger:  slog.Default().With("component", "retention"),
		onPrune: onPrune,
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes events older than the retention period, optionally
// archiving them first. Returns the number of events deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx); err != nil {
			return 0, event.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.store.CleanupOlderThan(ctx, p.config.RetentionDays)
	if err != nil {
		return 0, err
	}

	if p.onPrune != nil && deleted > 0 {
		p.onPrune(deleted)
	}

	if deleted > 0 {
		p.logger.Info("retention pruning completed",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Debug("no events pruned",
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// archive writes the events about to be deleted to a gzipped NDJSON
// file under ArchivePath. The walk covers the full log rather than
// stopping at the first in-window event, because a clock step-back can
// leave an expired timestamp behind a fresher one in ID order.
func (p *Pruner) archive(ctx context.Context) error {
	cutoff := event.FormatTime(time.Now().AddDate(0, 0, -p.config.RetentionDays))

	var expired []*event.Event
	var afterID int64
	for {
		events, lastID, err := p.store.GetEvents(ctx, event.Query{
			AfterID: afterID,
			Limit:   event.MaxLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to query events for archiving: %w", err)
		}
		if len(events) == 0 {
			break
		}

		for _, ev := range events {
			if ev.ReceivedAt < cutoff {
				expired = append(expired, ev)
			}
		}
		afterID = lastID
	}

	if len(expired) == 0 {
		p.logger.Debug("no events to archive")
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("events-%s.ndjson.gz", time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.Gzipped(export.NewNDJSONExporter())
	if err := exporter.Export(ctx, expired, f); err != nil {
		return fmt.Errorf("failed to export events to archive: %w", err)
	}

	p.logger.Info("events archived before deletion",
		"archive_file", archiveFile,
		"event_count", len(expired),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
