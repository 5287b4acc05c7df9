package export

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"hooktrap-hq/hooktrap/pkg/event"
)

// Exporter writes a slice of events to a writer in some format.
type Exporter interface {
	Export(ctx context.Context, events []*event.Event, w io.Writer) error
}

// ForFormat returns the exporter for a format name ("json", "csv",
// "ndjson") along with its MIME content type.
func ForFormat(format string) (Exporter, string, error) {
	switch format {
	case "json":
		return NewJSONExporter(false), "application/json", nil
	case "csv":
		return NewCSVExporter(true), "text/csv", nil
	case "ndjson":
		return NewNDJSONExporter(), "application/x-ndjson", nil
	default:
		return nil, "", event.NewExportError(format, 0, fmt.Errorf("unsupported format: %q", format))
	}
}

// Gzipped wraps an exporter so its output is gzip-compressed.
func Gzipped(inner Exporter) Exporter {
	return &gzipExporter{inner: inner}
}

type gzipExporter struct {
	inner Exporter
}

func (e *gzipExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	gw := gzip.NewWriter(w)
	if err := e.inner.Export(ctx, events, gw); err != nil {
		gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return event.NewExportError("gzip", len(events), err)
	}
	return nil
}
