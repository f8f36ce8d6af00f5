package config

import (
	"errors"
	"fmt"
	"strings"
)

// WildcardCapability grants every capability to a subject.
const WildcardCapability = "*"

var knownCapabilities = map[string]struct{}{
	"initialise inspections": {},
	"view field inspections": {},
	"edit field inspections": {},
	WildcardCapability:       {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateAccess(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if !strings.Contains(c.Paths.APIBind, ":") {
		return fmt.Errorf("paths.api_bind %q must be host:port", c.Paths.APIBind)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.BusyTimeoutMS <= 0 {
		return errors.New("storage.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validateAccess() error {
	names := make(map[string]struct{}, len(c.Access.Subjects))
	tokens := make(map[string]string, len(c.Access.Subjects))
	for i, subject := range c.Access.Subjects {
		if subject.Name == "" {
			return fmt.Errorf("access.subjects[%d].name must be set", i)
		}
		if _, dup := names[subject.Name]; dup {
			return fmt.Errorf("access.subjects: duplicate subject %q", subject.Name)
		}
		names[subject.Name] = struct{}{}
		if subject.Token != "" {
			if owner, dup := tokens[subject.Token]; dup {
				return fmt.Errorf("access.subjects: subjects %q and %q share a token", owner, subject.Name)
			}
			tokens[subject.Token] = subject.Name
		}
		for _, capability := range subject.Capabilities {
			if _, ok := knownCapabilities[capability]; !ok {
				return fmt.Errorf("access.subjects[%s]: unknown capability %q", subject.Name, capability)
			}
		}
	}
	if c.Access.DefaultSubject != "" {
		if _, ok := names[c.Access.DefaultSubject]; !ok {
			return fmt.Errorf("access.default_subject %q is not a declared subject", c.Access.DefaultSubject)
		}
	}
	return nil
}
