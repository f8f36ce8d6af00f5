package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"fieldinspect/internal/access"
	"fieldinspect/internal/config"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/metrics"
	"fieldinspect/internal/store"
	"fieldinspect/internal/workflow"
)

// Build opens the store and wires the engine, policy, and metrics into a
// daemon. The daemon owns the store; Close releases it.
func Build(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open inspection store: %w", err)
	}
	policy := access.NewPolicy(cfg)
	m := metrics.New()
	engine := workflow.NewEngine(st, policy,
		workflow.WithLogger(logger),
		workflow.WithMetrics(m),
	)
	d, err := New(cfg, st, engine, policy, m, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return d, nil
}

// Run builds and starts a daemon, then blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	d, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	<-ctx.Done()
	d.logger.Info("fieldinspect daemon shutting down")
	return nil
}
