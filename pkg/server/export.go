package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/export"
)

const (
	defaultExportLimit = 1000
	maxExportLimit     = 10000
)

// handleExport serves bulk downloads. The requested limit can exceed a
// single read page, so the handler walks the cursor internally and
// hands the accumulated events to the selected exporter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "json"
	}

	exporter, contentType, err := export.ForFormat(format)
	if err != nil {
		collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"detail": fmt.Sprintf("unsupported format %q (want json, csv, or ndjson)", format),
		})
		return
	}

	afterID, err := parseAfterID(q.Get("after_id"))
	if err != nil {
		collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"detail": "after_id must be a non-negative integer",
		})
		return
	}

	limit := defaultExportLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			collector.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"detail": "limit must be a positive integer",
			})
			return
		}
		if limit > maxExportLimit {
			limit = maxExportLimit
		}
	}

	events, err := s.collectForExport(r, afterID, limit)
	if err != nil {
		collector.WriteServerError(w)
		return
	}

	filename := fmt.Sprintf("hooktrap-export-%s.%s", time.Now().Format("20060102-150405"), format)
	if q.Get("gzip") == "true" {
		exporter = export.Gzipped(exporter)
		contentType = "application/gzip"
		filename += ".gz"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := exporter.Export(r.Context(), events, w); err != nil {
		// Headers are already sent, the most we can do is log and stop.
		return
	}

	if s.metrics != nil {
		s.metrics.RecordExport(format)
	}
}

// collectForExport pages through the store until it has limit events or
// runs out.
func (s *Server) collectForExport(r *http.Request, afterID int64, limit int) ([]*event.Event, error) {
	collected := make([]*event.Event, 0, min(limit, event.MaxLimit))
	cursor := afterID

	for len(collected) < limit {
		page := limit - len(collected)
		if page > event.MaxLimit {
			page = event.MaxLimit
		}

		events, lastID, err := s.store.GetEvents(r.Context(), event.Query{
			AfterID: cursor,
			Limit:   page,
		})
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			break
		}

		collected = append(collected, events...)
		cursor = lastID
	}

	return collected, nil
}
