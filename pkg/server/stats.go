package server

import (
	"net/http"

	"hooktrap-hq/hooktrap/pkg/collector"
)

// handleStats serves aggregate statistics over the stored events.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		collector.WriteServerError(w)
		return
	}
	collector.WriteJSON(w, http.StatusOK, stats)
}
