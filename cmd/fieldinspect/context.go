package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"fieldinspect/internal/access"
	"fieldinspect/internal/api"
	"fieldinspect/internal/config"
	"fieldinspect/internal/ipc"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
	"fieldinspect/internal/workflow"
)

type rootFlags struct {
	config  string
	subject string
	remote  bool
	daemon  string
	token   string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) daemonAddress() string {
	if addr := strings.TrimSpace(c.flags.daemon); addr != "" {
		return addr
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Paths.APIBind
	}
	return ""
}

func (c *commandContext) token() string {
	if token := strings.TrimSpace(c.flags.token); token != "" {
		return token
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Paths.APIToken
	}
	return ""
}

// subject returns the acting subject for local mode.
func (c *commandContext) subject() string {
	if subject := strings.TrimSpace(c.flags.subject); subject != "" {
		return subject
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Access.DefaultSubject
	}
	return ""
}

// withStore opens the local database for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open inspection store: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

func (c *commandContext) withClient(cmdCtx context.Context, fn func(*ipc.Client) error) error {
	addr := c.daemonAddress()
	client, err := ipc.Dial(cmdCtx, addr, c.token())
	if err != nil {
		return wrapDialError(err, addr)
	}
	defer client.Close()
	return fn(client)
}

// withBackend runs fn against the daemon when --remote is set and against
// the local database otherwise.
func (c *commandContext) withBackend(cmd *cobra.Command, fn func(context.Context, inspectionBackend) error) error {
	if c.flags.remote {
		ctx := cmdContext(cmd)
		return c.withClient(ctx, func(client *ipc.Client) error {
			return fn(ctx, remoteBackend{client: client})
		})
	}
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		engine := workflow.NewEngine(st, access.NewPolicy(cfg))
		ctx := services.WithSubject(cmdContext(cmd), c.subject())
		return fn(ctx, localBackend{svc: api.NewInspectionService(engine)})
	})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func wrapDialError(err error, addr string) error {
	var opErr *net.OpError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `fieldinspect serve`", addr)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Errorf("connect to daemon at %s: %w", addr, err)
	case errors.Is(err, ipc.ErrUnauthorized):
		return fmt.Errorf("connect to daemon: token rejected; pass --token or set FIELDINSPECT_API_TOKEN")
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
