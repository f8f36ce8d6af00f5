// Package logging assembles structured slog loggers and formatting helpers used
// across fieldinspect.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with return IDs, stage names, subjects, and correlation IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
