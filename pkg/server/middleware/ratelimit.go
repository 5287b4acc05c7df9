package middleware

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/limits/ratelimit"
	"hooktrap-hq/hooktrap/pkg/telemetry/metrics"
)

// RateLimitMiddleware rejects requests over the per-client-IP sliding
// window limit with 429. The client IP is derived the same way as for
// stored events, so a proxied client is limited by its real address.
// Paths in exempt are never limited so probes and scrapes keep working
// while a client is throttled.
func RateLimitMiddleware(limiter *ratelimit.Limiter, trustProxyHeaders bool, m *metrics.Collector, exempt []string) func(http.Handler) http.Handler {
	exemptPaths := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		exemptPaths[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			clientIP, _, _ := collector.ChooseClientIP(r, trustProxyHeaders)
			if !limiter.Allow(clientIP) {
				if m != nil {
					m.RecordRateLimited()
				}
				slog.Warn("rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"detail": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
