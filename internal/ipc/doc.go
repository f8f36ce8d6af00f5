// Package ipc ships the client the CLI uses to reach a running daemon over
// its HTTP API.
//
// Requests carry the configured bearer token and a context timeout so CLI
// commands fail fast when the daemon is offline. Error responses are decoded
// back into the services sentinel errors, so callers classify failures with
// errors.Is exactly as they would against the engine in-process.
package ipc
