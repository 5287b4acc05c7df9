package collector

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Redactor holds the active redaction pattern set. Patterns come from two
// sources: the static list in configuration and an optional pattern file
// (one expression per line, # comments) that is hot-reloaded on change so
// an operator can tighten redaction mid-engagement without a restart.
type Redactor struct {
	mu       sync.RWMutex
	static   []*regexp.Regexp
	fromFile []*regexp.Regexp

	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewRedactor creates a Redactor from the configured static patterns. If
// patternsFile is non-empty the file is loaded immediately; call Watch to
// keep it live.
func NewRedactor(patterns []string, patternsFile string) *Redactor {
	r := &Redactor{
		static:   CompilePatterns(patterns),
		path:     patternsFile,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default().With("component", "collector.redactor"),
	}
	if patternsFile != "" {
		if err := r.reload(); err != nil {
			r.logger.Warn("failed to load redaction pattern file",
				"path", patternsFile,
				"error", err,
			)
		}
	}
	return r
}

// Redact applies the active pattern set to text.
func (r *Redactor) Redact(text string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text = ApplyRedactions(text, r.static)
	return ApplyRedactions(text, r.fromFile)
}

// PatternCount returns the number of active compiled patterns.
func (r *Redactor) PatternCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.static) + len(r.fromFile)
}

// reload re-reads the pattern file and swaps in the compiled set.
func (r *Redactor) reload() error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	compiled := CompilePatterns(patterns)

	r.mu.Lock()
	r.fromFile = compiled
	r.mu.Unlock()

	r.logger.Info("redaction pattern file loaded",
		"path", r.path,
		"pattern_count", len(compiled),
	)
	return nil
}

// Watch blocks watching the pattern file for changes, reloading on each
// write with a short debounce. It returns when the context is cancelled
// or the watcher fails. Calling Watch without a configured pattern file
// is a no-op.
func (r *Redactor) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", r.path, err)
	}

	r.logger.Info("watching redaction pattern file", "path", r.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// Editors often produce bursts of writes; collapse them.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(r.debounce, func() {
				if err := r.reload(); err != nil {
					r.logger.Error("redaction pattern reload failed",
						"path", r.path,
						"error", err,
					)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			r.logger.Error("fsnotify error", "error", err)
		}
	}
}
