// Package server wires the HTTP surface: the token-scoped ingest and
// read routes, the liveness probe, and the metrics endpoint, behind a
// middleware chain of panic recovery, request IDs, request logging,
// rate limiting, and CORS.
//
// Every token-scoped route answers an unknown token with the same 404
// the router uses for unknown paths, so probing cannot distinguish a
// bad token from a bad route. Start blocks until a shutdown signal or
// context cancellation and then drains in-flight requests.
package server
