package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config controls the per-client rate limiter.
type Config struct {
	// Enabled toggles enforcement entirely.
	Enabled bool `yaml:"enabled"`

	// RequestsPerWindow is the maximum number of requests one client IP
	// may make inside the window.
	RequestsPerWindow int `yaml:"requests_per_window"`

	// Window is the rolling time window.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns the default rate limit settings: 120 requests
// per rolling minute per client IP.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RequestsPerWindow: 120,
		Window:            time.Minute,
	}
}

// Limiter enforces a sliding-window request limit per client IP.
// Windows for idle clients are evicted by a background sweep so the
// key map does not grow without bound.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string]*SlidingWindow
}

// NewLimiter creates a limiter from the configuration. Zero or negative
// values fall back to defaults.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerWindow <= 0 {
		cfg.RequestsPerWindow = def.RequestsPerWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*SlidingWindow),
	}
}

// Allow records one request for the client IP and reports whether it is
// within the limit. The request is counted even when rejected, so a
// client hammering past the limit keeps its window full.
func (l *Limiter) Allow(clientIP string) bool {
	if !l.cfg.Enabled {
		return true
	}

	l.mu.Lock()
	sw, ok := l.windows[clientIP]
	if !ok {
		sw = NewSlidingWindow(l.cfg.Window, time.Second)
		l.windows[clientIP] = sw
	}
	l.mu.Unlock()

	return sw.AddAndSum(1) <= int64(l.cfg.RequestsPerWindow)
}

// ClientCount returns the number of client IPs currently tracked.
func (l *Limiter) ClientCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Sweep starts a background loop that evicts idle client windows until
// ctx is cancelled.
func (l *Limiter) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.evictIdle()
			}
		}
	}()
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, sw := range l.windows {
		if sw.Idle() {
			delete(l.windows, ip)
		}
	}
}
