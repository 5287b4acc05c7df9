package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
)

// Streamer consumes the live Server-Sent Events surface and hands each
// event to a callback. Comment lines (the initial ":ok" and periodic
// ":keepalive") are skipped.
type Streamer struct {
	// EventsURL is the full token-scoped events URL.
	EventsURL string

	// HTTPClient defaults to a client with no timeout; the stream stays
	// open until the context is cancelled or the server closes it.
	HTTPClient *http.Client
}

// Run streams until ctx is cancelled or the connection closes,
// invoking handle for each decoded event. Frames that fail to decode
// are skipped.
func (s *Streamer) Run(ctx context.Context, handle func(*event.Event)) error {
	httpClient := s.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.EventsURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.EventsURL)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(dataLines) > 0 {
				payload := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]

				var ev event.Event
				if err := json.Unmarshal([]byte(payload), &ev); err == nil {
					handle(&ev)
				}
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			dataLines = append(dataLines, strings.TrimPrefix(rest, " "))
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return scanner.Err()
}
