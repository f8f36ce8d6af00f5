package access_test

import (
	"context"
	"testing"

	"fieldinspect/internal/access"
	"fieldinspect/internal/config"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/testsupport"
)

var _ inspection.Authorizer = (*access.Policy)(nil)

func TestHasCapability(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	policy := access.NewPolicy(cfg)
	ctx := context.Background()

	tests := []struct {
		subject    string
		capability string
		want       bool
	}{
		{testsupport.SubjectRegistrar, inspection.CapabilityInitialise, true},
		{testsupport.SubjectRegistrar, inspection.CapabilityEdit, true},
		{testsupport.SubjectInspector, inspection.CapabilityEdit, true},
		{testsupport.SubjectInspector, inspection.CapabilityInitialise, false},
		{testsupport.SubjectViewer, inspection.CapabilityView, true},
		{testsupport.SubjectViewer, inspection.CapabilityEdit, false},
		{testsupport.SubjectNobody, inspection.CapabilityView, false},
		{"stranger", inspection.CapabilityView, false},
		{"", inspection.CapabilityView, false},
	}
	for _, tc := range tests {
		if got := policy.HasCapability(ctx, tc.subject, tc.capability); got != tc.want {
			t.Fatalf("HasCapability(%q, %q) = %v, want %v", tc.subject, tc.capability, got, tc.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("shared"))
	policy := access.NewPolicy(cfg)

	if subject, ok := policy.Authenticate(testsupport.TokenInspector); !ok || subject != testsupport.SubjectInspector {
		t.Fatalf("expected inspector, got %q %v", subject, ok)
	}
	if subject, ok := policy.Authenticate("shared"); !ok || subject != testsupport.SubjectRegistrar {
		t.Fatalf("expected shared token to map to default subject, got %q %v", subject, ok)
	}
	if _, ok := policy.Authenticate("wrong"); ok {
		t.Fatal("expected unknown token to fail")
	}
	if !policy.RequiresToken() {
		t.Fatal("expected tokens to be required")
	}
}

func TestEmptyPolicyDeniesEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSubjects(config.Subject{Name: "solo"}))
	policy := access.NewPolicy(cfg)
	if policy.RequiresToken() {
		t.Fatal("expected no token requirement without tokens")
	}
	if policy.HasCapability(context.Background(), "solo", inspection.CapabilityView) {
		t.Fatal("expected subject without grants to be denied")
	}
	if len(policy.Capabilities("solo")) != 0 {
		t.Fatal("expected no capabilities")
	}
}
