// Package metrics provides Prometheus metrics for the callback collector.
//
// A single Collector owns the registry and every metric the service
// records: collected event counts and body sizes, rate limiter
// rejections, live stream subscriber counts and dropped deliveries,
// retention deletions, and export downloads. All recording methods are
// no-ops when metrics are disabled.
//
// Metrics are exposed in standard Prometheus exposition format via
// Collector.Handler, typically mounted at /metrics:
//
//	# HELP hooktrap_events_total Total number of callback events collected
//	# TYPE hooktrap_events_total counter
//	hooktrap_events_total{method="POST"} 1234
package metrics
