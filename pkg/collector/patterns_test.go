package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePatternFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing pattern file: %v", err)
	}
}

func TestRedactor_StaticPatterns(t *testing.T) {
	r := NewRedactor([]string{`password=\S+`}, "")

	got := r.Redact("a=1&password=hunter2")
	if strings.Contains(got, "hunter2") {
		t.Errorf("Redact() = %q, secret survived", got)
	}
	if r.PatternCount() != 1 {
		t.Errorf("PatternCount() = %d, want 1", r.PatternCount())
	}
}

func TestRedactor_LoadsFileOnConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.txt")
	writePatternFile(t, path, "# internal tokens\nsecret-\\S+\n\ntok_[a-z0-9]+\n")

	r := NewRedactor(nil, path)

	if r.PatternCount() != 2 {
		t.Fatalf("PatternCount() = %d, want 2 (comments and blanks skipped)", r.PatternCount())
	}
	got := r.Redact("found secret-abc and tok_xyz here")
	if strings.Contains(got, "secret-abc") || strings.Contains(got, "tok_xyz") {
		t.Errorf("Redact() = %q", got)
	}
}

func TestRedactor_MissingFileDegradesToStatic(t *testing.T) {
	r := NewRedactor([]string{`key=\S+`}, filepath.Join(t.TempDir(), "absent.txt"))

	if r.PatternCount() != 1 {
		t.Errorf("PatternCount() = %d, want 1", r.PatternCount())
	}
	if got := r.Redact("key=v"); got != RedactionMarker {
		t.Errorf("Redact() = %q, want %q", got, RedactionMarker)
	}
}

func TestRedactor_WatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.txt")
	writePatternFile(t, path, "first-\\S+\n")

	r := NewRedactor(nil, path)
	r.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writePatternFile(t, path, "first-\\S+\nsecond-\\S+\n")

	deadline := time.After(3 * time.Second)
	for r.PatternCount() != 2 {
		select {
		case <-deadline:
			t.Fatalf("PatternCount() = %d, want 2 after reload", r.PatternCount())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
}

func TestRedactor_WatchWithoutFileIsNoop(t *testing.T) {
	r := NewRedactor(nil, "")
	if err := r.Watch(context.Background()); err != nil {
		t.Errorf("Watch without a file: %v", err)
	}
}
