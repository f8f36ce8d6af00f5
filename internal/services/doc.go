// Package services defines shared utilities consumed by the inspection engine,
// its transports, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp return IDs, stage names, acting subjects, and
//     correlation identifiers for logging and authorization.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (permission, not found, unprocessable, storage) intact
//     across wrapping so transports can map them consistently.
//
// Use these helpers when wiring new operations so operational behaviour (error
// handling, observability) stays uniform across the engine.
package services
