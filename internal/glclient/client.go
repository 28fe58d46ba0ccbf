// Package glclient implements the migration destination on GitLab.
//
// GitLab numbers issues per project (IID) in a pool separate from merge
// requests, so only issues can break the numeric alignment here.
package glclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/model"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Client wraps the GitLab API client for a single project.
type Client struct {
	gl      *gitlab.Client
	project string // full path, e.g. "group/subgroup/name"
}

// NewClient creates a client for project on the GitLab instance at baseURL.
// An empty baseURL means gitlab.com.
func NewClient(token, baseURL, project string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token not provided. Set the GITLAB_TOKEN environment variable")
	}
	project = strings.Trim(project, "/")
	if !strings.Contains(project, "/") {
		return nil, fmt.Errorf("invalid project %q: expected namespace/name", project)
	}
	if baseURL == "" {
		baseURL = constants.DefaultGitLabURL
	}

	gl, err := gitlab.NewClient(token, gitlab.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}
	return &Client{gl: gl, project: project}, nil
}

// Name identifies the destination project.
func (c *Client) Name() string {
	return constants.HostGitLab + ":" + c.project
}

// AuthenticatedUser returns the username the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.gl.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.Username, nil
}

// ListLabels returns every label of the project.
func (c *Client) ListLabels(ctx context.Context) ([]model.Label, error) {
	opts := &gitlab.ListLabelsOptions{
		ListOptions: gitlab.ListOptions{PerPage: constants.PageSize},
	}

	var labels []model.Label
	for {
		page, resp, err := c.gl.Labels.ListLabels(c.project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("gitlab list labels: %w", err)
		}

		for _, l := range page {
			labels = append(labels, model.Label{
				Name:        l.Name,
				Color:       strings.TrimPrefix(l.Color, "#"),
				Description: l.Description,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return labels, nil
}

// CreateLabel creates a project label. A duplicate name yields host.ErrLabelExists.
func (c *Client) CreateLabel(ctx context.Context, label model.Label) error {
	opts := &gitlab.CreateLabelOptions{
		Name:  gitlab.Ptr(label.Name),
		Color: gitlab.Ptr("#" + label.Color),
	}
	if label.Description != "" {
		opts.Description = gitlab.Ptr(label.Description)
	}

	_, resp, err := c.gl.Labels.CreateLabel(c.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		if statusCode(resp) == http.StatusConflict {
			return fmt.Errorf("label %q: %w", label.Name, host.ErrLabelExists)
		}
		return fmt.Errorf("gitlab create label %q: %w", label.Name, err)
	}

	log.Debug("created label", "name", label.Name, "color", label.Color)
	return nil
}

// DeleteLabel deletes the named project label.
func (c *Client) DeleteLabel(ctx context.Context, name string) error {
	resp, err := c.gl.Labels.DeleteLabel(c.project, name, nil, gitlab.WithContext(ctx))
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return fmt.Errorf("label %q: %w", name, host.ErrLabelNotFound)
		}
		return fmt.Errorf("gitlab delete label %q: %w", name, err)
	}

	log.Debug("deleted label", "name", name)
	return nil
}

// GetIssue returns the issue with project-scoped number (IID) number.
func (c *Client) GetIssue(ctx context.Context, number int) (model.Issue, error) {
	issue, resp, err := c.gl.Issues.GetIssue(c.project, number, gitlab.WithContext(ctx))
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return model.Issue{}, fmt.Errorf("issue #%d: %w", number, host.ErrIssueNotFound)
		}
		return model.Issue{}, fmt.Errorf("gitlab get issue #%d: %w", number, err)
	}
	return toIssue(issue), nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, input model.IssueInput) (model.Issue, error) {
	labels := gitlab.LabelOptions(input.Labels)
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(input.Title),
		Description: gitlab.Ptr(input.Body),
		Labels:      &labels,
	}

	issue, _, err := c.gl.Issues.CreateIssue(c.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return model.Issue{}, fmt.Errorf("gitlab create issue %q: %w", input.Title, err)
	}

	log.Debug("created issue", "number", issue.IID, "url", issue.WebURL)
	return toIssue(issue), nil
}

// LockIssue locks the discussion on an issue.
func (c *Client) LockIssue(ctx context.Context, number int) error {
	opts := &gitlab.UpdateIssueOptions{
		DiscussionLocked: gitlab.Ptr(true),
	}
	if _, _, err := c.gl.Issues.UpdateIssue(c.project, number, opts, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("gitlab lock issue #%d: %w", number, err)
	}
	return nil
}

func toIssue(issue *gitlab.Issue) model.Issue {
	return model.Issue{
		Number: int(issue.IID),
		Title:  issue.Title,
		Body:   issue.Description,
		Labels: []string(issue.Labels),
		Locked: issue.DiscussionLocked,
		URL:    issue.WebURL,
	}
}

func statusCode(resp *gitlab.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

var _ host.Host = (*Client)(nil)
