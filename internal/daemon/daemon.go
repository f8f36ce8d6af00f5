package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"fieldinspect/internal/access"
	"fieldinspect/internal/config"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/metrics"
	"fieldinspect/internal/preflight"
	"fieldinspect/internal/store"
	"fieldinspect/internal/workflow"
)

// Daemon owns the API server and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	engine  *workflow.Engine
	policy  *access.Policy
	metrics *metrics.Metrics

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	APIBind      string
	StartedAt    time.Time
	Stats        store.Stats
}

// New constructs a daemon with initialized dependencies. A nil metrics value
// disables instrumentation and the /metrics route.
func New(cfg *config.Config, st *store.Store, engine *workflow.Engine, policy *access.Policy, m *metrics.Metrics, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || engine == nil || policy == nil {
		return nil, errors.New("daemon requires config, store, engine, and access policy")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		engine:   engine,
		policy:   policy,
		metrics:  m,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(strings.TrimSpace(cfg.Paths.APIBind), d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks, and starts serving.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fieldinspect daemon instance is already running")
	}

	results := preflight.RunAll(ctx, d.cfg, d.store)
	for _, r := range results {
		level := slog.LevelInfo
		if !r.Passed {
			level = slog.LevelWarn
		}
		d.logger.Log(ctx, level, "preflight check",
			logging.String("check", r.Name),
			logging.Bool("passed", r.Passed),
			logging.String("detail", r.Detail),
		)
	}
	if failed := preflight.Blocking(results); len(failed) > 0 {
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("fieldinspect daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("fieldinspect daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Address returns the address the API listens on, or "" when stopped.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Handler returns the API handler, for serving the API without a listener.
func (d *Daemon) Handler() http.Handler {
	return d.api.server.Handler
}

// Status returns the current daemon status. Store statistics are omitted when
// the database cannot be read.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()

	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		APIBind:      d.cfg.Paths.APIBind,
	}
	if status.Running {
		status.StartedAt = startedAt
	}
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("store stats unavailable", logging.Error(err))
	} else {
		status.Stats = stats
	}
	return status
}
