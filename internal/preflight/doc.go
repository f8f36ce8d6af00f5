// Package preflight provides readiness checks for the filesystem paths,
// database, and API surface that fieldinspect depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve when a
//     required check fails.
//   - The CLI "fieldinspect status" command prints every result, including
//     CheckDaemon against the configured bind address.
package preflight
