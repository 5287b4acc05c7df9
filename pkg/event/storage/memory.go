package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hooktrap-hq/hooktrap/pkg/event"
)

// MemoryStore implements event.Store using an in-memory slice. It exists
// for test isolation only: it honors the same ordering and clamping
// contracts as the SQLite backend but does not survive process restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*event.Event
	nextID int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// AddEvent persists an event in memory and returns its assigned identifier.
func (s *MemoryStore) AddEvent(ctx context.Context, e *event.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *e
	stored.ID = s.nextID
	s.nextID++
	stored.Headers = copyHeaders(e.Headers)
	s.events = append(s.events, &stored)

	return stored.ID, nil
}

// GetEvents returns events with id > q.AfterID in ascending id order,
// clamping the limit the same way the SQLite backend does.
func (s *MemoryStore) GetEvents(ctx context.Context, q event.Query) ([]*event.Event, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit < event.MinLimit {
		limit = event.DefaultLimit
	}
	if limit > event.MaxLimit {
		limit = event.MaxLimit
	}
	afterID := q.AfterID
	if afterID < 0 {
		afterID = 0
	}

	results := []*event.Event{}
	lastID := afterID
	for _, e := range s.events {
		if e.ID <= afterID {
			continue
		}
		if q.Method != "" && !strings.EqualFold(e.Method, q.Method) {
			continue
		}
		if q.PathContains != "" && !strings.Contains(e.Path, q.PathContains) {
			continue
		}
		cp := *e
		cp.Headers = copyHeaders(e.Headers)
		results = append(results, &cp)
		lastID = e.ID
		if len(results) >= limit {
			break
		}
	}

	return results, lastID, nil
}

// Stats computes aggregate statistics over the stored events.
func (s *MemoryStore) Stats(ctx context.Context) (*event.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &event.Stats{
		CountsByMethod: map[string]int64{},
	}
	ips := map[string]struct{}{}
	cutoff := event.FormatTime(time.Now().Add(-24 * time.Hour))

	for _, e := range s.events {
		stats.TotalCount++
		stats.CountsByMethod[e.Method]++
		ips[e.ClientIP] = struct{}{}
		if e.ReceivedAt >= cutoff {
			stats.Last24hCount++
		}
		if stats.FirstEventTimestamp == "" || e.ReceivedAt < stats.FirstEventTimestamp {
			stats.FirstEventTimestamp = e.ReceivedAt
		}
		if e.ReceivedAt > stats.LastEventTimestamp {
			stats.LastEventTimestamp = e.ReceivedAt
		}
	}
	stats.UniqueClientIPCount = int64(len(ips))

	return stats, nil
}

// CleanupOlderThan deletes events received more than days ago.
func (s *MemoryStore) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, event.NewRetentionError(days, fmt.Errorf("days must be positive, got %d", days))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := event.FormatTime(time.Now().AddDate(0, 0, -days))
	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.ReceivedAt < cutoff {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept

	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyHeaders(h map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = v
	}
	return out
}
