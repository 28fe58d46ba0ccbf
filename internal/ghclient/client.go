// Package ghclient implements the migration destination on GitHub.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/host"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client for a single repository.
type Client struct {
	client     *gh.Client
	owner      string
	repo       string
	lockReason string
	rateLimit  *RateLimitState
}

// Option configures a Client.
type Option func(*Client) error

// WithLockReason sets the reason GitHub records when an issue is locked.
func WithLockReason(reason string) Option {
	return func(c *Client) error {
		c.lockReason = reason
		return nil
	}
}

// WithEnterpriseURL points the client at a GitHub Enterprise Server instance.
func WithEnterpriseURL(baseURL string) Option {
	return func(c *Client) error {
		ec, err := c.client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub Enterprise URL %q: %w", baseURL, err)
		}
		c.client = ec
		return nil
	}
}

// NewClient creates a client for repo ("owner/name") using a personal access token.
func NewClient(ctx context.Context, token, repo string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	state := &RateLimitState{}
	tc.Transport = &rateLimitTransport{
		base:  tc.Transport,
		state: state,
	}

	c := &Client{
		client:     gh.NewClient(tc),
		owner:      owner,
		repo:       name,
		lockReason: constants.DefaultLockReason,
		rateLimit:  state,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.Trim(repo, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", repo)
	}
	return parts[0], parts[1], nil
}

// Name identifies the destination repository.
func (c *Client) Name() string {
	return fmt.Sprintf("%s:%s/%s", constants.HostGitHub, c.owner, c.repo)
}

// AuthenticatedUser returns the authenticated user's login
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// LastRateLimit returns the quota observed on the most recent response.
func (c *Client) LastRateLimit() (remaining, limit int, resetAt time.Time, limited bool) {
	return c.rateLimit.Status()
}

// statusCode returns the HTTP status carried by a go-github error, or 0.
func statusCode(err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

// hasErrorCode reports whether a validation error lists the given code,
// e.g. "already_exists".
func hasErrorCode(err error, code string) bool {
	var errResp *gh.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}
	for _, e := range errResp.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

var _ host.Host = (*Client)(nil)
