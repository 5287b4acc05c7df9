// Package collector implements the ingestion path for inbound callbacks.
//
// A single Handler authorizes the request token, normalizes client
// attribution from forwarding headers, applies the header allowlist and
// size clamp, reads and classifies the request body, redacts sensitive
// substrings, persists the resulting event, and publishes it to live
// subscribers. Unauthorized tokens receive the same 404 as unknown
// routes.
package collector
