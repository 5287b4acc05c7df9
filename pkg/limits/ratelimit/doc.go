// Package ratelimit enforces a per-client-IP sliding window request
// limit.
//
// Each client IP gets its own SlidingWindow of one-second buckets; a
// request is allowed while the rolling window total stays at or under
// the configured limit. Idle windows are evicted by a background sweep.
package ratelimit
