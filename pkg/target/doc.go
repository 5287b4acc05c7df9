// Package target persists which collector deployment the CLI talks to.
//
// The state lives in ~/.hooktrap/state.json and records the base URL,
// the capture token, the provisioning provider, and any provider
// resource metadata. Saves are atomic so a crash mid-write never leaves
// a torn file. The server never reads this file; it only prints the
// URLs the operator may save here.
package target
