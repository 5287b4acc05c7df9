package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric registration and naming.
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
	Path      string `yaml:"path"`
}

// Collector owns the Prometheus registry and every metric the service
// records. All Record* methods are no-ops when metrics are disabled so
// callers never need to branch.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	eventsTotal      *prometheus.CounterVec
	eventBodyBytes   prometheus.Histogram
	truncatedTotal   prometheus.Counter
	rateLimitedTotal prometheus.Counter
	subscribers      prometheus.Gauge
	droppedTotal     prometheus.Counter
	cleanedUpTotal   prometheus.Counter
	exportsTotal     *prometheus.CounterVec
}

// NewCollector creates a metrics collector and registers its metrics
// with the given registry. If registry is nil a fresh one is used.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "hooktrap"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_total",
				Help:      "Total number of callback events collected",
			},
			[]string{"method"},
		),

		eventBodyBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "event_body_bytes",
				Help:      "Size of stored request bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B to ~16MB
			},
		),

		truncatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "event_bodies_truncated_total",
				Help:      "Number of request bodies truncated at the size cap",
			},
		),

		rateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limited_total",
				Help:      "Number of requests rejected by the rate limiter",
			},
		),

		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_subscribers",
				Help:      "Current number of live event stream subscribers",
			},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_dropped_deliveries_total",
				Help:      "Events dropped because a subscriber buffer was full",
			},
		),

		cleanedUpTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_cleaned_up_total",
				Help:      "Events deleted by retention cleanup",
			},
		),

		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exports_total",
				Help:      "Export downloads served, by format",
			},
			[]string{"format"},
		),
	}

	registry.MustRegister(
		c.eventsTotal,
		c.eventBodyBytes,
		c.truncatedTotal,
		c.rateLimitedTotal,
		c.subscribers,
		c.droppedTotal,
		c.cleanedUpTotal,
		c.exportsTotal,
	)

	return c
}

// RecordEvent records one collected event.
func (c *Collector) RecordEvent(method string, bodyBytes int, truncated bool) {
	if !c.config.Enabled {
		return
	}
	c.eventsTotal.WithLabelValues(method).Inc()
	if bodyBytes > 0 {
		c.eventBodyBytes.Observe(float64(bodyBytes))
	}
	if truncated {
		c.truncatedTotal.Inc()
	}
}

// RecordRateLimited records a request rejected with 429.
func (c *Collector) RecordRateLimited() {
	if !c.config.Enabled {
		return
	}
	c.rateLimitedTotal.Inc()
}

// SetSubscribers updates the live subscriber gauge.
func (c *Collector) SetSubscribers(n int) {
	if !c.config.Enabled {
		return
	}
	c.subscribers.Set(float64(n))
}

// RecordDroppedDelivery records an event dropped on a full subscriber buffer.
func (c *Collector) RecordDroppedDelivery() {
	if !c.config.Enabled {
		return
	}
	c.droppedTotal.Inc()
}

// RecordCleanup records events deleted by a retention pass.
func (c *Collector) RecordCleanup(deleted int64) {
	if !c.config.Enabled {
		return
	}
	c.cleanedUpTotal.Add(float64(deleted))
}

// RecordExport records one export download.
func (c *Collector) RecordExport(format string) {
	if !c.config.Enabled {
		return
	}
	c.exportsTotal.WithLabelValues(format).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
