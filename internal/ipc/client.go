package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fieldinspect/internal/api"
)

const defaultTimeout = 10 * time.Second

// Client provides API access to the daemon.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Dial builds a client for the daemon listening on bind (host:port or a full
// URL) and verifies that it answers.
func Dial(ctx context.Context, bind, token string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(bind), "/")
	if base == "" {
		return nil, errors.New("daemon address is required")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	c := &Client{
		baseURL: base,
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	if _, err := c.Status(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// BaseURL returns the daemon URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var resp api.DaemonStatus
	if err := c.call(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Initialize materializes the checklist of a return.
func (c *Client) Initialize(ctx context.Context, returnID int64) (*api.InitializeResponse, error) {
	var resp api.InitializeResponse
	if err := c.call(ctx, http.MethodPost, returnPath(returnID, "inspection"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit records a stage decision.
func (c *Client) Submit(ctx context.Context, returnID int64, req api.SubmitStageRequest) (*api.SubmitStageResponse, error) {
	var resp api.SubmitStageResponse
	if err := c.call(ctx, http.MethodPost, returnPath(returnID, "inspection/stages"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Inspection returns the checklist view of a return.
func (c *Client) Inspection(ctx context.Context, returnID int64) (*api.InspectionView, error) {
	var resp api.InspectionView
	if err := c.call(ctx, http.MethodGet, returnPath(returnID, "inspection"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recommendation returns the latest recommendation signal of a return.
func (c *Client) Recommendation(ctx context.Context, returnID int64) (*api.RecommendationView, error) {
	var resp api.RecommendationView
	if err := c.call(ctx, http.MethodGet, returnPath(returnID, "recommendation"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func returnPath(returnID int64, suffix string) string {
	return fmt.Sprintf("/api/returns/%d/%s", returnID, suffix)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
