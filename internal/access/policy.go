// Package access maps configured subjects and bearer tokens to inspection
// capabilities.
package access

import (
	"context"
	"strings"

	"fieldinspect/internal/config"
)

// Policy is a static capability table loaded from configuration. It
// implements inspection.Authorizer.
type Policy struct {
	grants map[string]map[string]struct{}
	tokens map[string]string
	// sharedToken authenticates as defaultSubject when no per-subject token matches.
	sharedToken    string
	defaultSubject string
}

// NewPolicy builds a policy from the access section of cfg.
func NewPolicy(cfg *config.Config) *Policy {
	p := &Policy{
		grants: make(map[string]map[string]struct{}),
		tokens: make(map[string]string),
	}
	if cfg == nil {
		return p
	}
	p.sharedToken = cfg.Paths.APIToken
	p.defaultSubject = cfg.Access.DefaultSubject
	for _, subject := range cfg.Access.Subjects {
		caps := make(map[string]struct{}, len(subject.Capabilities))
		for _, capability := range subject.Capabilities {
			caps[capability] = struct{}{}
		}
		p.grants[subject.Name] = caps
		if subject.Token != "" {
			p.tokens[subject.Token] = subject.Name
		}
	}
	return p
}

// HasCapability reports whether subject holds capability.
func (p *Policy) HasCapability(_ context.Context, subject, capability string) bool {
	caps, ok := p.grants[strings.TrimSpace(subject)]
	if !ok {
		return false
	}
	if _, ok := caps[config.WildcardCapability]; ok {
		return true
	}
	_, ok = caps[strings.ToLower(strings.TrimSpace(capability))]
	return ok
}

// Capabilities returns the capabilities granted to subject.
func (p *Policy) Capabilities(subject string) []string {
	caps := p.grants[subject]
	out := make([]string, 0, len(caps))
	for capability := range caps {
		out = append(out, capability)
	}
	return out
}

// Authenticate resolves a bearer token to a subject name. It reports false
// when the token is unknown.
func (p *Policy) Authenticate(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if subject, ok := p.tokens[token]; ok {
		return subject, true
	}
	if p.sharedToken != "" && token == p.sharedToken && p.defaultSubject != "" {
		return p.defaultSubject, true
	}
	return "", false
}

// RequiresToken reports whether any token is configured. Without tokens the
// API serves every request as the default subject.
func (p *Policy) RequiresToken() bool {
	return len(p.tokens) > 0 || p.sharedToken != ""
}

// DefaultSubject returns the subject used when a caller does not name one.
func (p *Policy) DefaultSubject() string {
	return p.defaultSubject
}
