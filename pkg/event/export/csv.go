package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"hooktrap-hq/hooktrap/pkg/event"
)

// CSVExporter exports events to CSV format. Bodies and stored headers
// are omitted; CSV is the summary view, the JSON formats carry the full
// record.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes events to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return event.NewExportError("csv", len(events), err)
		}
	}

	for _, ev := range events {
		if err := writer.Write(eventToRow(ev)); err != nil {
			return event.NewExportError("csv", len(events), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return event.NewExportError("csv", len(events), err)
	}
	return nil
}

// ExportStream writes events from a channel in CSV format, flushing
// periodically so long exports make visible progress.
func (e *CSVExporter) ExportStream(ctx context.Context, eventsCh <-chan *event.Event, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return event.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-eventsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return event.NewExportError("csv", count, err)
				}
				return nil
			}

			if err := writer.Write(eventToRow(ev)); err != nil {
				return event.NewExportError("csv", count, err)
			}

			count++
			if count%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return event.NewExportError("csv", count, err)
				}
			}
		}
	}
}

func headerRow() []string {
	return []string{
		"id", "received_at", "method", "path", "query",
		"client_ip", "x_forwarded_for", "x_real_ip",
		"origin", "referer", "user_agent", "content_type",
		"body_truncated",
	}
}

func eventToRow(ev *event.Event) []string {
	return []string{
		strconv.FormatInt(ev.ID, 10),
		ev.ReceivedAt,
		ev.Method,
		ev.Path,
		ev.Query,
		ev.ClientIP,
		ev.XForwardedFor,
		ev.XRealIP,
		ev.Origin,
		ev.Referer,
		ev.UserAgent,
		ev.ContentType,
		strconv.FormatBool(ev.BodyTruncated),
	}
}
