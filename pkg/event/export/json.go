package export

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
)

// JSONExporter exports events as a single JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes events to the provided writer as a JSON array.
func (e *JSONExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	if len(events) == 0 {
		if _, err := w.Write([]byte("[]")); err != nil {
			return event.NewExportError("json", 0, err)
		}
		return nil
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(events, "", "  ")
	} else {
		data, err = json.Marshal(events)
	}
	if err != nil {
		return event.NewExportError("json", len(events), err)
	}

	if _, err := w.Write(data); err != nil {
		return event.NewExportError("json", len(events), err)
	}
	return nil
}

// ExportStream writes events from a channel as a JSON array, one record
// at a time, suitable for large exports.
func (e *JSONExporter) ExportStream(ctx context.Context, eventsCh <-chan *event.Event, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return event.NewExportError("json", 0, err)
	}

	first := true
	count := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-eventsCh:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return event.NewExportError("json", count, err)
				}
				return nil
			}

			if !first {
				if _, err := w.Write([]byte(",")); err != nil {
					return event.NewExportError("json", count, err)
				}
			}
			first = false

			data, err := json.Marshal(ev)
			if err != nil {
				return event.NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return event.NewExportError("json", count, err)
			}

			count++
		}
	}
}
