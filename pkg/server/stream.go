package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/collector"
)

// handleStream serves the live event stream over Server-Sent Events.
// The subscriber gets an initial ":ok" comment, one "data:" frame per
// event, and a ":keepalive" comment when idle. Events collected before
// the subscription are never replayed; the polling surface covers
// catch-up.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		collector.WriteServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ":ok\n\n")
	flusher.Flush()

	sub := s.broadcaster.Subscribe()
	defer func() {
		s.broadcaster.Unsubscribe(sub)
		if s.metrics != nil {
			s.metrics.SetSubscribers(s.broadcaster.SubscriberCount())
		}
	}()
	if s.metrics != nil {
		s.metrics.SetSubscribers(s.broadcaster.SubscriberCount())
	}

	keepalive := s.config.Stream.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = 15 * time.Second
	}
	timer := time.NewTimer(keepalive)
	defer timer.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(keepalive)

		case <-timer.C:
			if _, err := fmt.Fprint(w, ":keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
			timer.Reset(keepalive)
		}
	}
}
