// Package export serializes collected events for download and archival.
//
// Three formats are supported: a JSON array, CSV (summary columns only,
// no bodies or stored headers), and newline-delimited JSON. Each
// exporter offers both a slice-based Export and a channel-based
// ExportStream for large result sets. Gzipped wraps any exporter with
// gzip compression.
package export
