package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
)

// logsResponse mirrors the read surface's paginated payload.
type logsResponse struct {
	Events      []*event.Event `json:"events"`
	NextAfterID int64          `json:"next_after_id"`
	Count       int            `json:"count"`
}

// Poller repeatedly reads the paginated log surface and hands each new
// event to a callback. The cursor only moves forward, so events are
// seen exactly once per poller.
type Poller struct {
	// LogsURL is the full token-scoped logs URL.
	LogsURL string

	// Interval is the delay between polls. Defaults to 5 seconds.
	Interval time.Duration

	// StartAfterID is the initial cursor position.
	StartAfterID int64

	// Limit is the page size requested per poll.
	Limit int

	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client
}

// Run polls until ctx is cancelled, invoking handle for each event.
// Transient fetch errors are reported through onError (if non-nil) and
// polling continues.
func (p *Poller) Run(ctx context.Context, handle func(*event.Event), onError func(error)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	limit := p.Limit
	if limit <= 0 {
		limit = event.DefaultLimit
	}
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	afterID := p.StartAfterID
	if afterID < 0 {
		afterID = 0
	}

	for {
		page, err := p.fetch(ctx, httpClient, afterID, limit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if onError != nil {
				onError(err)
			}
		} else {
			for _, ev := range page.Events {
				handle(ev)
			}
			if page.NextAfterID > afterID {
				afterID = page.NextAfterID
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (p *Poller) fetch(ctx context.Context, httpClient *http.Client, afterID int64, limit int) (*logsResponse, error) {
	u, err := url.Parse(p.LogsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid logs URL %q: %w", p.LogsURL, err)
	}
	q := u.Query()
	q.Set("after_id", strconv.FormatInt(afterID, 10))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, p.LogsURL)
	}

	var page logsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode logs response: %w", err)
	}
	return &page, nil
}
