// Package main hosts the fieldinspect CLI entrypoint and command graph.
//
// The Cobra-based command tree drives inspection checklists either in-process
// against the local database, acting as the --as subject, or through a running
// daemon's HTTP API with --remote and a bearer token. Crop templates and
// return snapshots are loaded locally, and the daemon itself can be started
// with "fieldinspect serve".
//
// Keep this package lean: inspection rules live in the internal packages and
// commands only translate flags into service calls and render the results.
package main
