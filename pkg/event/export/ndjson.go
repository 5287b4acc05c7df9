package export

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
)

// NDJSONExporter exports events as newline-delimited JSON, one event
// per line. This is the format retention archives use as well, since
// each line stands alone and a reader can stop anywhere.
type NDJSONExporter struct{}

// NewNDJSONExporter creates a new NDJSON exporter.
func NewNDJSONExporter() *NDJSONExporter {
	return &NDJSONExporter{}
}

// Export writes events to the provided writer, one JSON object per line.
func (e *NDJSONExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return event.NewExportError("ndjson", i, err)
		}
	}
	return nil
}

// ExportStream writes events from a channel, one JSON object per line.
func (e *NDJSONExporter) ExportStream(ctx context.Context, eventsCh <-chan *event.Event, w io.Writer) error {
	enc := json.NewEncoder(w)
	count := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-eventsCh:
			if !ok {
				return nil
			}
			if err := enc.Encode(ev); err != nil {
				return event.NewExportError("ndjson", count, err)
			}
			count++
		}
	}
}
