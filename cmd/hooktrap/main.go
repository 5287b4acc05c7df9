// Hooktrap is an ephemeral HTTP callback collector for security
// testing and webhook debugging.
//
// It accepts arbitrary inbound HTTP requests at a token-scoped path,
// records each as a structured event, and republishes events through a
// paginated read surface and a live Server-Sent Events stream.
//
// Usage:
//
//	# Generate a capture token
//	hooktrap gen-token
//
//	# Start the collector
//	hooktrap serve --token <token>
//
//	# Point the CLI at a remote collector
//	hooktrap target set --url https://example.com --token <token>
//
//	# Watch incoming events
//	hooktrap listen
//	hooktrap listen --mode stream
package main

func main() {
	Execute()
}
