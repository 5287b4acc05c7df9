// Package retention enforces the event retention policy.
//
// A Pruner deletes events older than the configured number of days,
// optionally archiving them to gzipped NDJSON files first. A Scheduler
// runs the pruner on a cron expression so old events age out without
// operator action; manual cleanup via the HTTP surface uses the same
// store primitive.
package retention
