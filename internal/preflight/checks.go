package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"fieldinspect/internal/config"
	"fieldinspect/internal/store"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase pings the inspection database.
func CheckDatabase(ctx context.Context, st *store.Store) Result {
	const name = "Database"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := st.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", st.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema ok)", st.Path())}
}

// CheckTemplates reports whether any crop templates have been imported.
// Without them every initialization fails as unprocessable.
func CheckTemplates(ctx context.Context, st *store.Store) Result {
	const name = "Crop templates"

	stats, err := st.Stats(ctx)
	if err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("stats failed (%v)", err)}
	}
	if stats.Templates == 0 {
		return Result{Name: name, Advisory: true, Detail: "no crop templates imported"}
	}
	return Result{
		Name:     name,
		Passed:   true,
		Advisory: true,
		Detail:   fmt.Sprintf("%d templates across %d crops", stats.Templates, stats.Crops),
	}
}

// CheckAPIExposure fails when the API listens beyond loopback while no
// bearer token is configured.
func CheckAPIExposure(cfg *config.Config) Result {
	const name = "API access"

	bind := strings.TrimSpace(cfg.Paths.APIBind)
	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	if hasToken(cfg) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (token required)", bind)}
	}
	if isLoopback(host) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (loopback, no token)", bind)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: non-loopback bind without api token)", bind)}
}

// CheckDaemon verifies that a daemon answers on the API bind address.
func CheckDaemon(ctx context.Context, baseURL, token string) Result {
	const name = "Daemon"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/api/status", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%v)", err)}
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeDialError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Running"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%d)", resp.StatusCode)}
	}
}

func hasToken(cfg *config.Config) bool {
	if strings.TrimSpace(cfg.Paths.APIToken) != "" {
		return true
	}
	for _, subject := range cfg.Access.Subjects {
		if strings.TrimSpace(subject.Token) != "" {
			return true
		}
	}
	return false
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func summarizeDialError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "status check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "status check timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "Not running"
	}
	return err.Error()
}
