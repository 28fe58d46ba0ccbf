// Package bugzilla is a minimal client for the Bugzilla REST API.
package bugzilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/log"
)

// Client talks to one Bugzilla installation.
type Client struct {
	baseURL string
	// apiKey is intentionally unexported and never logged.
	apiKey string
	http   *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates requests with a Bugzilla API key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetryMax sets how often a failed request is retried.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// NewClient creates a client for the Bugzilla at baseURL, e.g. https://bugs.llvm.org.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid bugzilla url %q", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = constants.RetryMax
	rc.Logger = log.Leveled{}
	rc.HTTPClient.Timeout = constants.HTTPTimeout

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    rc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the tracker URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues GET {base}/rest/{path}?{params} and decodes the JSON answer into out.
// params may be nil or a struct with `url` tags.
func (c *Client) get(ctx context.Context, path string, params any, out any) error {
	endpoint := c.baseURL + "/rest/" + strings.TrimPrefix(path, "/")
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query for %s: %w", path, err)
		}
		if enc := v.Encode(); enc != "" {
			endpoint += "?" + enc
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-BUGZILLA-API-KEY", c.apiKey)
	}

	log.Debug("bugzilla request", "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bugzilla request %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bugzilla response: %w", err)
	}
	log.Trace("bugzilla response", "path", path, "status", resp.StatusCode, "bytes", len(body))

	if apiErr := parseError(resp.StatusCode, body); apiErr != nil {
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode bugzilla response for %s: %w", path, err)
	}
	return nil
}

// Version returns the server's Bugzilla version. It doubles as a connectivity check.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.get(ctx, "version", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}
