package bugzilla

import (
	"context"
	"fmt"

	"github.com/spiffcs/bzmigrate/internal/model"
)

// bugFields are the only fields the migration reads from a bug.
var bugFields = []string{"id", "summary", "product", "component"}

type bugQuery struct {
	IncludeFields []string `url:"include_fields,comma,omitempty"`
	Order         string   `url:"order,omitempty"`
	Limit         int      `url:"limit,omitempty"`
}

type bug struct {
	ID        int    `json:"id"`
	Summary   string `json:"summary"`
	Product   string `json:"product"`
	Component string `json:"component"`
}

type bugsResponse struct {
	Bugs []bug `json:"bugs"`
}

// Bug fetches bug id. Missing and private bugs yield errors for which
// IsUnavailable returns true.
func (c *Client) Bug(ctx context.Context, id int) (model.Record, error) {
	var out bugsResponse
	if err := c.get(ctx, fmt.Sprintf("bug/%d", id), bugQuery{IncludeFields: bugFields}, &out); err != nil {
		return model.Record{}, fmt.Errorf("failed to get bug %d: %w", id, err)
	}
	if len(out.Bugs) == 0 {
		return model.Record{}, fmt.Errorf("failed to get bug %d: %w", id, ErrNotFound)
	}

	b := out.Bugs[0]
	return model.Record{
		ID:        b.ID,
		Summary:   b.Summary,
		Product:   b.Product,
		Component: b.Component,
		URL:       model.ShowBugURL(c.baseURL, b.ID),
	}, nil
}

// MaxID returns the highest bug id visible to the caller, or 0 when the
// tracker has no bugs.
func (c *Client) MaxID(ctx context.Context) (int, error) {
	var out bugsResponse
	q := bugQuery{
		IncludeFields: []string{"id"},
		Order:         "bug_id DESC",
		Limit:         1,
	}
	if err := c.get(ctx, "bug", q, &out); err != nil {
		return 0, fmt.Errorf("failed to find highest bug id: %w", err)
	}
	if len(out.Bugs) == 0 {
		return 0, nil
	}
	return out.Bugs[0].ID, nil
}
