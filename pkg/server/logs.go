package server

import (
	"net/http"
	"strconv"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/event"
)

// handleLogs serves the paginated read surface. Clients pass the cursor
// from the previous response as after_id to walk forward without
// missing or repeating events.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	afterID, err := parseAfterID(q.Get("after_id"))
	if err != nil {
		collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"detail": "after_id must be a non-negative integer",
		})
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"detail": "limit must be a positive integer",
			})
			return
		}
	}

	events, lastID, err := s.store.GetEvents(r.Context(), event.Query{
		AfterID:      afterID,
		Limit:        limit,
		Method:       q.Get("method"),
		PathContains: q.Get("path_contains"),
	})
	if err != nil {
		collector.WriteServerError(w)
		return
	}

	nextAfterID := afterID
	if len(events) > 0 {
		nextAfterID = lastID
	}

	collector.WriteJSON(w, http.StatusOK, map[string]any{
		"events":        events,
		"next_after_id": nextAfterID,
		"count":         len(events),
	})
}

func parseAfterID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	afterID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || afterID < 0 {
		return 0, strconv.ErrSyntax
	}
	return afterID, nil
}
