package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fieldinspect/internal/config"
	"fieldinspect/internal/daemon"
	"fieldinspect/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("FIELDINSPECT_API_TOKEN", "")

	configPath := filepath.Join(base, "fieldinspect.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

// seedMaize imports the maize templates and return 100 through the CLI.
func (e *cliTestEnv) seedMaize(t *testing.T) {
	t.Helper()
	cropPath := filepath.Join(e.baseDir, "maize.toml")
	content := `[crop]
id = 1
name = "Maize"

[[stages]]
name = "Pre-planting"
order = 1
required = true
period_after_planting_days = 0

[[stages]]
name = "Mid-season"
order = 2
required = true
period_after_planting_days = 45

[[stages]]
name = "Pre-harvest"
order = 3
required = true
period_after_planting_days = 90
`
	if err := os.WriteFile(cropPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write crop file: %v", err)
	}
	if _, _, err := e.run(t, "templates", "import", cropPath); err != nil {
		t.Fatalf("templates import: %v", err)
	}
	if _, _, err := e.run(t, "returns", "add", "100", "--crop", "1", "--inspector", "55", "--sown", "2024-01-10"); err != nil {
		t.Fatalf("returns add: %v", err)
	}
}

// startDaemon serves the API over httptest using the env's database.
func (e *cliTestEnv) startDaemon(t *testing.T) string {
	t.Helper()
	d, err := daemon.Build(e.cfg, nil)
	if err != nil {
		t.Fatalf("daemon.Build: %v", err)
	}
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(func() {
		srv.Close()
		d.Close()
	})
	return srv.URL
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n\n", cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.APIBind)
	fmt.Fprintf(&b, "[access]\ndefault_subject = %q\n", cfg.Access.DefaultSubject)
	for _, subject := range cfg.Access.Subjects {
		quoted := make([]string, 0, len(subject.Capabilities))
		for _, capability := range subject.Capabilities {
			quoted = append(quoted, fmt.Sprintf("%q", capability))
		}
		fmt.Fprintf(&b, "\n[[access.subjects]]\nname = %q\ntoken = %q\ncapabilities = [%s]\n",
			subject.Name, subject.Token, strings.Join(quoted, ", "))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
