// Package broadcast implements the best-effort live fan-out of newly
// stored events to streaming subscribers.
//
// The broadcaster holds a mutex-guarded set of subscribers, each owning a
// bounded channel. Publish is non-blocking: a full subscriber buffer means
// that subscriber misses the event (drop-newest), and the ingestion path
// is never back-pressured. Delivery order to a given subscriber matches
// publish order; replay is only available through the store's cursor-based
// poll interface.
package broadcast
