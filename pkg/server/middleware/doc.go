// Package middleware provides the HTTP middleware chain: panic
// recovery, request IDs, structured request logging, CORS, and
// per-client-IP rate limiting. Middleware composes outside the router,
// recovery outermost.
package middleware
