package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// ListLabels returns every label defined in the repository.
func (c *Client) ListLabels(ctx context.Context) ([]model.Label, error) {
	opts := &gh.ListOptions{PerPage: constants.PageSize}

	var labels []model.Label
	for {
		page, resp, err := c.client.Issues.ListLabels(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}

		for _, l := range page {
			labels = append(labels, model.Label{
				Name:        l.GetName(),
				Color:       l.GetColor(),
				Description: l.GetDescription(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return labels, nil
}

// CreateLabel creates a label. A duplicate name yields host.ErrLabelExists.
func (c *Client) CreateLabel(ctx context.Context, label model.Label) error {
	req := &gh.Label{
		Name:  gh.String(label.Name),
		Color: gh.String(label.Color),
	}
	if label.Description != "" {
		req.Description = gh.String(label.Description)
	}

	_, _, err := c.client.Issues.CreateLabel(ctx, c.owner, c.repo, req)
	if err != nil {
		if statusCode(err) == http.StatusUnprocessableEntity && hasErrorCode(err, "already_exists") {
			return fmt.Errorf("label %q: %w", label.Name, host.ErrLabelExists)
		}
		return fmt.Errorf("failed to create label %q: %w", label.Name, err)
	}

	log.Debug("created label", "name", label.Name, "color", label.Color)
	return nil
}

// DeleteLabel deletes the named label. go-github puts the name into the
// path as is, so it is escaped here for names like "tools/opt".
func (c *Client) DeleteLabel(ctx context.Context, name string) error {
	_, err := c.client.Issues.DeleteLabel(ctx, c.owner, c.repo, url.PathEscape(name))
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return fmt.Errorf("label %q: %w", name, host.ErrLabelNotFound)
		}
		return fmt.Errorf("failed to delete label %q: %w", name, err)
	}

	log.Debug("deleted label", "name", name)
	return nil
}
