// Package client consumes a running collector's read surface: a
// Poller that walks the paginated logs endpoint with a forward-only
// cursor, and a Streamer that follows the live Server-Sent Events
// stream. Both back the CLI's listen command.
package client
