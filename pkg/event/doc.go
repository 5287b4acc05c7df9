// Package event defines the event record captured for every accepted
// callback request, the Store interface over the durable event log, and
// the typed errors shared by the storage, export, and retention layers.
//
// # Event Records
//
// Each event captures:
//   - Request line data (method, path, redacted query string)
//   - Client attribution (best-guess IP plus raw proxy headers)
//   - Allow-listed, size-clamped request headers
//   - The request body as UTF-8 text or base64, size-limited and redacted
//   - Acceptance timestamp and a store-assigned monotonic identifier
//
// Events are immutable once stored. The identifier doubles as the
// pagination cursor for the poll interface: a reader passes the greatest
// identifier it has seen as after_id and receives only newer events.
//
// # Storage Backends
//
// The Store interface is implemented by the storage subpackage:
//   - SQLite (default): durable, WAL mode, survives process restart
//   - Memory: test isolation only, does not survive restart
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
//	    Path: "data/hooktrap.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	id, err := store.AddEvent(ctx, &event.Event{
//	    ReceivedAt: event.Now(),
//	    Method:     "GET",
//	    Path:       "/abc123/c",
//	})
//
//	events, next, err := store.GetEvents(ctx, event.Query{AfterID: 0, Limit: 50})
package event
