package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/config"
	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/broadcast"
	"hooktrap-hq/hooktrap/pkg/event/storage"
)

func setupServer(t *testing.T, tokens ...string) *httptest.Server {
	t.Helper()

	if len(tokens) == 0 {
		tokens = []string{"abc123"}
	}

	cfg := config.NewDefault()
	cfg.Collector.Tokens = tokens
	cfg.RateLimit.Enabled = false
	cfg.Telemetry.Metrics.Enabled = false

	store := storage.NewMemoryStore()
	b := broadcast.New(10)

	h := collector.NewHandler(
		collector.Config{
			MaxBodyBytes:      cfg.Collector.MaxBodyBytes,
			MaxHeaderBytes:    cfg.Collector.MaxHeaderBytes,
			HeaderAllowlist:   collector.NormalizeAllowlist(cfg.Collector.HeaderAllowlist),
			StoreBody:         true,
			TrustProxyHeaders: true,
		},
		collector.NewAuthorizer(tokens),
		collector.NewRedactor(nil, ""),
		store,
		b,
		nil,
	)

	srv := NewServer(cfg, h, store, b, nil, "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decoding %q: %v", body, err)
		}
	}
	return resp
}

func TestServer_CollectAndReadBack(t *testing.T) {
	ts := setupServer(t, "abc123")

	var ack struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	resp := getJSON(t, ts.URL+"/abc123/c?x=1", &ack)
	if resp.StatusCode != 200 {
		t.Fatalf("collect status = %d, want 200", resp.StatusCode)
	}
	if !ack.OK || ack.ID != 1 {
		t.Fatalf("collect ack = %+v, want ok=true id=1", ack)
	}

	var logs struct {
		Events      []*event.Event `json:"events"`
		NextAfterID int64          `json:"next_after_id"`
		Count       int            `json:"count"`
	}
	getJSON(t, ts.URL+"/abc123/logs", &logs)
	if logs.Count != 1 || len(logs.Events) != 1 {
		t.Fatalf("logs count = %d, want 1", logs.Count)
	}
	e := logs.Events[0]
	if e.Method != "GET" || e.Path != "/abc123/c" || e.Query != "x=1" {
		t.Errorf("stored event = %+v", e)
	}
	if logs.NextAfterID != 1 {
		t.Errorf("next_after_id = %d, want 1", logs.NextAfterID)
	}
}

func TestServer_UniformNotFound(t *testing.T) {
	ts := setupServer(t, "abc123")

	// A wrong token and a nonexistent route must be indistinguishable.
	paths := []string{
		"/wrongtoken/c",
		"/wrongtoken/logs",
		"/wrongtoken/stats",
		"/nope",
		"/",
	}

	var bodies []string
	for _, p := range paths {
		resp, err := http.Get(ts.URL + p)
		if err != nil {
			t.Fatalf("GET %s: %v", p, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != 404 {
			t.Errorf("GET %s status = %d, want 404", p, resp.StatusCode)
		}
		bodies = append(bodies, strings.TrimSpace(string(body)))
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("404 body for %s differs: %q vs %q", paths[i], bodies[i], bodies[0])
		}
	}
}

func TestServer_MultipleTokens(t *testing.T) {
	ts := setupServer(t, "tok-one", "tok-two")

	for _, tok := range []string{"tok-one", "tok-two"} {
		resp, err := http.Get(ts.URL + "/" + tok + "/c")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("token %s status = %d, want 200", tok, resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.URL + "/tok-three/c")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("unconfigured token status = %d, want 404", resp.StatusCode)
	}

	// Events land in a shared store regardless of which token ingested
	// them.
	var logs struct {
		Count int `json:"count"`
	}
	getJSON(t, ts.URL+"/tok-one/logs", &logs)
	if logs.Count != 2 {
		t.Errorf("logs count = %d, want 2", logs.Count)
	}
}

func TestServer_LogsPagination(t *testing.T) {
	ts := setupServer(t)

	for i := 0; i < 5; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/abc123/c?n=%d", ts.URL, i))
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
	}

	var page struct {
		Events      []*event.Event `json:"events"`
		NextAfterID int64          `json:"next_after_id"`
	}
	getJSON(t, ts.URL+"/abc123/logs?limit=2", &page)
	if len(page.Events) != 2 || page.NextAfterID != 2 {
		t.Fatalf("first page: %d events, next_after_id=%d", len(page.Events), page.NextAfterID)
	}

	getJSON(t, fmt.Sprintf("%s/abc123/logs?limit=2&after_id=%d", ts.URL, page.NextAfterID), &page)
	if len(page.Events) != 2 || page.Events[0].ID != 3 {
		t.Fatalf("second page: %d events, first ID %d", len(page.Events), page.Events[0].ID)
	}

	// Exhausted cursor keeps returning the same after_id with no events.
	var empty struct {
		Events      []*event.Event `json:"events"`
		NextAfterID int64          `json:"next_after_id"`
	}
	getJSON(t, ts.URL+"/abc123/logs?after_id=5", &empty)
	if len(empty.Events) != 0 || empty.NextAfterID != 5 {
		t.Errorf("exhausted cursor: %d events, next_after_id=%d", len(empty.Events), empty.NextAfterID)
	}
}

func TestServer_LogsRejectsBadParams(t *testing.T) {
	ts := setupServer(t)

	for _, q := range []string{"after_id=-1", "after_id=abc", "limit=abc", "limit=0", "limit=-5"} {
		resp, err := http.Get(ts.URL + "/abc123/logs?" + q)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != 400 {
			t.Errorf("query %q status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestServer_Healthz(t *testing.T) {
	ts := setupServer(t)

	var health struct {
		OK          bool   `json:"ok"`
		Service     string `json:"service"`
		Version     string `json:"version"`
		Subscribers int    `json:"subscribers"`
	}
	resp := getJSON(t, ts.URL+"/healthz", &health)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !health.OK || health.Service != "hooktrap" || health.Version != "test" {
		t.Errorf("health = %+v", health)
	}
}

func TestServer_Stats(t *testing.T) {
	ts := setupServer(t)

	for _, m := range []string{"GET", "POST"} {
		req, _ := http.NewRequest(m, ts.URL+"/abc123/c", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		resp.Body.Close()
	}

	var stats event.Stats
	getJSON(t, ts.URL+"/abc123/stats", &stats)
	if stats.TotalCount != 2 {
		t.Errorf("total = %d, want 2", stats.TotalCount)
	}
}

func TestServer_CleanupClampsDays(t *testing.T) {
	ts := setupServer(t)

	tests := []struct {
		query    string
		wantDays int
	}{
		{"", 7},
		{"?days=30", 30},
		{"?days=0", 1},
		{"?days=9999", 365},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest("DELETE", ts.URL+"/abc123/cleanup"+tt.query, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		var out struct {
			OK   bool `json:"ok"`
			Days int  `json:"days"`
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decoding %q: %v", body, err)
		}
		if !out.OK || out.Days != tt.wantDays {
			t.Errorf("cleanup%s -> days=%d, want %d", tt.query, out.Days, tt.wantDays)
		}
	}

	req, _ := http.NewRequest("DELETE", ts.URL+"/abc123/cleanup?days=abc", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("non-integer days status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_ExportFormats(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/abc123/c")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	tests := []struct {
		format      string
		contentType string
	}{
		{"json", "application/json"},
		{"csv", "text/csv"},
		{"ndjson", "application/x-ndjson"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/abc123/export?format=" + tt.format)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != 200 {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			cd := resp.Header.Get("Content-Disposition")
			if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "."+tt.format) {
				t.Errorf("Content-Disposition = %q", cd)
			}
		})
	}

	resp, err = http.Get(ts.URL + "/abc123/export?format=xml")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("unsupported format status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_StreamSendsInitialFrame(t *testing.T) {
	ts := setupServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/abc123/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading first frame: %v", err)
	}
	if strings.TrimSpace(line) != ":ok" {
		t.Errorf("first frame = %q, want :ok", line)
	}
}

func TestServer_StreamDeliversEvents(t *testing.T) {
	ts := setupServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/abc123/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	if _, err := reader.ReadString('\n'); err != nil { // :ok
		t.Fatalf("reading initial frame: %v", err)
	}

	ingest, err := http.Get(ts.URL + "/abc123/c?live=1")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	ingest.Body.Close()

	var data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var e event.Event
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("decoding frame %q: %v", data, err)
	}
	if e.Query != "live=1" {
		t.Errorf("streamed event query = %q, want live=1", e.Query)
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing from response")
	}
}
