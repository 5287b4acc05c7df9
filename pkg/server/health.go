package server

import (
	"net/http"

	"hooktrap-hq/hooktrap/pkg/collector"
)

// handleHealthz serves the liveness probe. It runs with no token check
// and is exempt from rate limiting so monitors keep working while a
// client is throttled.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	collector.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"service":        "hooktrap",
		"version":        s.version,
		"uptime_seconds": int64(s.Uptime().Seconds()),
		"subscribers":    s.broadcaster.SubscriberCount(),
	})
}
