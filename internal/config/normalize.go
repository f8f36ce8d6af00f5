package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeLogging()
	c.normalizeAccess()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("FIELDINSPECT_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.DatabaseFile = strings.TrimSpace(c.Storage.DatabaseFile)
	if c.Storage.DatabaseFile == "" {
		c.Storage.DatabaseFile = defaultDatabaseFile
	}
	if c.Storage.BusyTimeoutMS <= 0 {
		c.Storage.BusyTimeoutMS = defaultBusyTimeoutMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeAccess() {
	c.Access.DefaultSubject = strings.TrimSpace(c.Access.DefaultSubject)
	for i := range c.Access.Subjects {
		subject := &c.Access.Subjects[i]
		subject.Name = strings.TrimSpace(subject.Name)
		subject.Token = strings.TrimSpace(subject.Token)
		caps := make([]string, 0, len(subject.Capabilities))
		seen := make(map[string]struct{}, len(subject.Capabilities))
		for _, capability := range subject.Capabilities {
			normalized := strings.ToLower(strings.Join(strings.Fields(capability), " "))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			caps = append(caps, normalized)
		}
		subject.Capabilities = caps
	}
}
