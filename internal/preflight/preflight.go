package preflight

import (
	"context"

	"fieldinspect/internal/config"
	"fieldinspect/internal/store"
)

// Result reports the outcome of a single preflight check. Advisory results
// are shown but never block startup.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config. The
// database checks are skipped when st is nil.
func RunAll(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckAPIExposure(cfg),
	}
	if st != nil {
		results = append(results, CheckDatabase(ctx, st), CheckTemplates(ctx, st))
	}
	return results
}

// Blocking returns the failed, non-advisory results.
func Blocking(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			failed = append(failed, r)
		}
	}
	return failed
}
