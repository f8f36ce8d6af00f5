package daemon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"fieldinspect/internal/access"
	"fieldinspect/internal/api"
	"fieldinspect/internal/config"
	"fieldinspect/internal/daemon"
	"fieldinspect/internal/metrics"
	"fieldinspect/internal/testsupport"
	"fieldinspect/internal/workflow"
)

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMaize(t, st)
	policy := access.NewPolicy(cfg)
	engine := workflow.NewEngine(st, policy)
	d, err := daemon.New(cfg, st, engine, policy, metrics.New(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running || status.StartedAt.IsZero() {
		t.Fatalf("expected daemon to report running, got %+v", status)
	}
	if status.Stats.Templates != 3 {
		t.Fatalf("expected 3 templates in stats, got %d", status.Stats.Templates)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	req, err := http.NewRequest(http.MethodGet, "http://"+d.Address()+"/api/status", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testsupport.TokenViewer)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !payload.Running || payload.Stats.Crops != 1 || payload.StartedAt == "" {
		t.Fatalf("unexpected status payload: %+v", payload)
	}

	d.Stop()
	if status := d.Status(ctx); status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if d.Address() != "" {
		t.Fatal("expected listener to be released")
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	err := second.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestDaemonRefusesExposedBindWithoutToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSubjects(config.Subject{
		Name:         "local",
		Capabilities: []string{config.WildcardCapability},
	}))
	cfg.Paths.APIBind = "0.0.0.0:0"
	d := newDaemon(t, cfg)

	err := d.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if d.Status(context.Background()).Running {
		t.Fatal("daemon should not be running after preflight failure")
	}
}

func TestBuildWiresStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer d.Close()

	status := d.Status(context.Background())
	if status.Running || status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("unexpected status for built daemon: %+v", status)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

