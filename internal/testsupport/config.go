package testsupport

import (
	"path/filepath"
	"testing"

	"fieldinspect/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// Subject names granted by NewConfig.
const (
	SubjectRegistrar = "registrar"
	SubjectInspector = "inspector"
	SubjectViewer    = "viewer"
	SubjectNobody    = "nobody"
)

// Bearer tokens owned by the default subjects.
const (
	TokenRegistrar = "registrar-token"
	TokenInspector = "inspector-token"
	TokenViewer    = "viewer-token"
	TokenNobody    = "nobody-token"
)

// NewConfig produces a config seeded with unique temp directories per test.
// It grants the registrar every capability, the inspector view and edit, the
// viewer view only, and nobody nothing.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Access.DefaultSubject = SubjectRegistrar
	cfgVal.Access.Subjects = []config.Subject{
		{Name: SubjectRegistrar, Token: TokenRegistrar, Capabilities: []string{config.WildcardCapability}},
		{Name: SubjectInspector, Token: TokenInspector, Capabilities: []string{"view field inspections", "edit field inspections"}},
		{Name: SubjectViewer, Token: TokenViewer, Capabilities: []string{"view field inspections"}},
		{Name: SubjectNobody, Token: TokenNobody},
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return builder.cfg
}

// WithAPIToken sets the shared API token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithSubjects replaces the configured access subjects.
func WithSubjects(subjects ...config.Subject) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Access.Subjects = subjects
		b.cfg.Access.DefaultSubject = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
