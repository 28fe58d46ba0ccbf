package ghclient

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// GetIssue returns issue or pull request number. Issues and pull requests
// share one numbering pool, so either one means the number is taken.
func (c *Client) GetIssue(ctx context.Context, number int) (model.Issue, error) {
	issue, _, err := c.client.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		switch statusCode(err) {
		case http.StatusNotFound:
			return model.Issue{}, fmt.Errorf("issue #%d: %w", number, host.ErrIssueNotFound)
		case http.StatusGone:
			// Deleted issues keep their number.
			return model.Issue{Number: number, Deleted: true}, nil
		}
		return model.Issue{}, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}

	return toIssue(issue), nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, input model.IssueInput) (model.Issue, error) {
	labels := input.Labels
	req := &gh.IssueRequest{
		Title:  gh.String(input.Title),
		Body:   gh.String(input.Body),
		Labels: &labels,
	}

	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return model.Issue{}, fmt.Errorf("failed to create issue %q: %w", input.Title, err)
	}

	log.Debug("created issue", "number", issue.GetNumber(), "url", issue.GetHTMLURL())
	return toIssue(issue), nil
}

// LockIssue locks the conversation on an issue with the configured lock reason.
func (c *Client) LockIssue(ctx context.Context, number int) error {
	opts := &gh.LockIssueOptions{LockReason: c.lockReason}
	if _, err := c.client.Issues.Lock(ctx, c.owner, c.repo, number, opts); err != nil {
		return fmt.Errorf("failed to lock issue #%d: %w", number, err)
	}
	return nil
}

func toIssue(issue *gh.Issue) model.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return model.Issue{
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		Labels:        labels,
		Locked:        issue.GetLocked(),
		IsPullRequest: issue.IsPullRequest(),
		URL:           issue.GetHTMLURL(),
	}
}
