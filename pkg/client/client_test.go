package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
)

// fakeLogs serves the paginated read surface from a fixed event list.
func fakeLogs(t *testing.T, events []*event.Event) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		afterID, _ := strconv.ParseInt(r.URL.Query().Get("after_id"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}

		var page []*event.Event
		nextAfterID := afterID
		for _, e := range events {
			if e.ID <= afterID {
				continue
			}
			page = append(page, e)
			nextAfterID = e.ID
			if len(page) >= limit {
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"events":        page,
			"next_after_id": nextAfterID,
			"count":         len(page),
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestPoller_WalksCursor(t *testing.T) {
	var fixture []*event.Event
	for i := int64(1); i <= 5; i++ {
		fixture = append(fixture, &event.Event{ID: i, Method: "GET"})
	}
	ts := fakeLogs(t, fixture)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []int64
	p := &Poller{
		LogsURL:  ts.URL + "/abc123/logs",
		Interval: 5 * time.Millisecond,
		Limit:    2,
	}

	go p.Run(ctx, func(e *event.Event) {
		mu.Lock()
		seen = append(seen, e.ID)
		if len(seen) == 5 {
			cancel()
		}
		mu.Unlock()
	}, nil)

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("saw %d events before timeout, want 5", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, id := range seen {
		if id != int64(i+1) {
			t.Fatalf("events out of order or repeated: %v", seen)
		}
	}
}

func TestPoller_StartAfterID(t *testing.T) {
	fixture := []*event.Event{{ID: 1}, {ID: 2}, {ID: 3}}
	ts := fakeLogs(t, fixture)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var mu sync.Mutex
	var seen []int64
	p := &Poller{
		LogsURL:      ts.URL + "/abc123/logs",
		Interval:     5 * time.Millisecond,
		StartAfterID: 2,
	}

	go p.Run(ctx, func(e *event.Event) {
		mu.Lock()
		seen = append(seen, e.ID)
		cancel()
		mu.Unlock()
	}, nil)

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != 3 {
		t.Errorf("seen = %v, want [3]", seen)
	}
}

func TestPoller_ReportsErrorsAndContinues(t *testing.T) {
	var calls int
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"events":[{"id":1}],"next_after_id":1,"count":1}`)
	}))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	errs := make(chan error, 1)
	got := make(chan int64, 1)

	p := &Poller{LogsURL: ts.URL, Interval: 5 * time.Millisecond}
	go p.Run(ctx, func(e *event.Event) {
		select {
		case got <- e.ID:
		default:
		}
	}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected a non-nil error")
		}
	case <-ctx.Done():
		t.Fatal("onError was never invoked")
	}

	select {
	case id := <-got:
		if id != 1 {
			t.Errorf("event ID = %d, want 1", id)
		}
	case <-ctx.Done():
		t.Fatal("polling did not recover after the error")
	}
}

func TestStreamer_ParsesFrames(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ":ok\n\n")
		fmt.Fprint(w, "data: {\"id\":1,\"method\":\"GET\"}\n\n")
		fmt.Fprint(w, ":keepalive\n\n")
		fmt.Fprint(w, "data: not valid json\n\n")
		fmt.Fprint(w, "data: {\"id\":2,\"method\":\"POST\"}\n\n")
	}))
	t.Cleanup(ts.Close)

	var seen []int64
	s := &Streamer{EventsURL: ts.URL}
	err := s.Run(context.Background(), func(e *event.Event) {
		seen = append(seen, e.ID)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("seen = %v, want [1 2]", seen)
	}
}

func TestStreamer_MultiLineData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":7,\n")
		fmt.Fprint(w, "data: \"method\":\"GET\"}\n\n")
	}))
	t.Cleanup(ts.Close)

	var seen []int64
	s := &Streamer{EventsURL: ts.URL}
	if err := s.Run(context.Background(), func(e *event.Event) {
		seen = append(seen, e.ID)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(seen) != 1 || seen[0] != 7 {
		t.Errorf("seen = %v, want [7]", seen)
	}
}

func TestStreamer_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	s := &Streamer{EventsURL: ts.URL}
	if err := s.Run(context.Background(), func(*event.Event) {}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
