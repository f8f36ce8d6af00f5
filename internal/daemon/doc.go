// Package daemon coordinates the long-running fieldinspect process.
//
// It wires configuration, the inspection store, the workflow engine, the
// access policy, and the HTTP API into a single lifecycle with flock-based
// locking to prevent multiple instances. Startup runs preflight checks and
// refuses to serve when a blocking check fails.
//
// Keep orchestration logic here: inspection rules live in the workflow and
// inspection packages while the daemon focuses on startup, shutdown, and
// transport concerns such as authentication and error mapping.
package daemon
