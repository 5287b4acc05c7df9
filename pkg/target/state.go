package target

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// State describes the collector deployment the CLI talks to: where it
// runs, which token it accepts, and who provisioned it.
type State struct {
	BaseURL   string         `json:"base_url"`
	Token     string         `json:"token"`
	Provider  string         `json:"provider"`
	Resources map[string]any `json:"resources"`
}

// DefaultPath returns the default state file location,
// ~/.hooktrap/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".hooktrap", "state.json"), nil
}

// Load reads the state file. A missing file returns (nil, nil) so
// callers can distinguish "not configured" from a real error.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read target state %q: %w", path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse target state %q: %w", path, err)
	}
	if state.Provider == "" {
		state.Provider = "local"
	}
	if state.Resources == nil {
		state.Resources = map[string]any{}
	}

	return &state, nil
}

// Save writes the state file atomically: the payload goes to a temp
// file in the same directory and is renamed into place.
func Save(state *State, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	payload := *state
	if payload.Provider == "" {
		payload.Provider = "local"
	}
	if payload.Resources == nil {
		payload.Resources = map[string]any{}
	}

	data, err := json.MarshalIndent(&payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode target state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write target state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace target state: %w", err)
	}

	return nil
}

// Clear removes the state file. A missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove target state %q: %w", path, err)
	}
	return nil
}

// CollectorURL returns the ingest URL for this target.
func (s *State) CollectorURL() string {
	return fmt.Sprintf("%s/%s/c", strings.TrimRight(s.BaseURL, "/"), s.Token)
}

// LogsURL returns the polling read URL for this target.
func (s *State) LogsURL() string {
	return fmt.Sprintf("%s/%s/logs", strings.TrimRight(s.BaseURL, "/"), s.Token)
}

// EventsURL returns the live stream URL for this target.
func (s *State) EventsURL() string {
	return fmt.Sprintf("%s/%s/events", strings.TrimRight(s.BaseURL, "/"), s.Token)
}
