package server

import (
	"net/http"
	"strconv"

	"hooktrap-hq/hooktrap/pkg/collector"
)

const (
	defaultCleanupDays = 7
	minCleanupDays     = 1
	maxCleanupDays     = 365
)

// handleCleanup purges events older than the given number of days.
// days is clamped to [1,365] so a stray 0 can never empty the store.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	days := defaultCleanupDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"detail": "days must be an integer",
			})
			return
		}
		days = parsed
	}
	if days < minCleanupDays {
		days = minCleanupDays
	}
	if days > maxCleanupDays {
		days = maxCleanupDays
	}

	deleted, err := s.store.CleanupOlderThan(r.Context(), days)
	if err != nil {
		collector.WriteServerError(w)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordCleanup(deleted)
	}

	collector.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"deleted_count": deleted,
		"days":          days,
	})
}
