package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SnapshotFetcher fetches authoritative snapshots from the host.
type SnapshotFetcher interface {
	FetchPreferences(ctx context.Context) (Preferences, error)
	FetchSystemPreferences(ctx context.Context) (Preferences, error)
	FetchWorkspaces(ctx context.Context) (map[string]Workspace, error)
	FetchWorkspaceMetas(ctx context.Context) (map[string]WorkspaceMeta, error)
	FetchPauseNotificationsInfo(ctx context.Context) (*PauseNotificationsInfo, error)
}

// Commander delivers commands and reports whether the host acknowledged them.
type Commander interface {
	Send(ctx context.Context, cmd Command) error
}

// Ensure Client implements the host interfaces at compile time.
var (
	_ SnapshotFetcher = (*Client)(nil)
	_ Commander       = (*Client)(nil)
)

// Client talks to the host process HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7621"
	defaultUserAgent = "roost/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchPreferences retrieves the global preference set.
func (c *Client) FetchPreferences(ctx context.Context) (Preferences, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Preferences
	if err := c.do(ctx, http.MethodGet, "/api/preferences", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchSystemPreferences retrieves OS-level preferences.
func (c *Client) FetchSystemPreferences(ctx context.Context) (Preferences, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Preferences
	if err := c.do(ctx, http.MethodGet, "/api/system-preferences", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchWorkspaces retrieves all workspace records keyed by id.
func (c *Client) FetchWorkspaces(ctx context.Context) (map[string]Workspace, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload map[string]Workspace
	if err := c.do(ctx, http.MethodGet, "/api/workspaces", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchWorkspaceMetas retrieves per-workspace UI metadata keyed by id.
func (c *Client) FetchWorkspaceMetas(ctx context.Context) (map[string]WorkspaceMeta, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload map[string]WorkspaceMeta
	if err := c.do(ctx, http.MethodGet, "/api/workspace-metas", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchPauseNotificationsInfo retrieves the current pause state. A nil result
// means notifications are not paused.
func (c *Client) FetchPauseNotificationsInfo(ctx context.Context) (*PauseNotificationsInfo, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload *PauseNotificationsInfo
	if err := c.do(ctx, http.MethodGet, "/api/pause-notifications-info", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Send posts cmd to the host. A nil error means the host acknowledged it.
func (c *Client) Send(ctx context.Context, cmd Command) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return fmt.Errorf("command name required")
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command %s: %w", cmd.Name, err)
	}
	if err := c.do(ctx, http.MethodPost, "/api/commands", body, nil); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
