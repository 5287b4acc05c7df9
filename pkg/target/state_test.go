package target

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	in := &State{
		BaseURL:  "http://127.0.0.1:8080",
		Token:    "abc123",
		Provider: "local",
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned nil for an existing state file")
	}
	if out.BaseURL != in.BaseURL || out.Token != in.Token || out.Provider != in.Provider {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.Resources == nil {
		t.Error("Resources should be initialized on load")
	}
}

func TestSave_CreatesDirectoryAndRestrictsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	if err := Save(&State{Token: "t"}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// The token is a capability; the file must not be group readable.
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file mode = %o, want 0600", perm)
	}
}

func TestSave_DefaultsProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := Save(&State{Token: "t"}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Provider != "local" {
		t.Errorf("provider = %q, want local", out.Provider)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	state, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load on a missing file should not error, got %v", err)
	}
	if state != nil {
		t.Errorf("Load on a missing file = %+v, want nil", state)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a corrupt state file")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Save(&State{Token: "t"}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := Clear(path); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("state file still exists after Clear")
	}

	// Clearing again is a no-op.
	if err := Clear(path); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestEndpointURLs(t *testing.T) {
	s := &State{BaseURL: "http://example.com:8080/", Token: "abc123"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"collector", s.CollectorURL(), "http://example.com:8080/abc123/c"},
		{"logs", s.LogsURL(), "http://example.com:8080/abc123/logs"},
		{"events", s.EventsURL(), "http://example.com:8080/abc123/events"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s URL = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
