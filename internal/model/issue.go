package model

// Issue is an issue (or pull request) on the destination host.
type Issue struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	Body          string   `json:"body,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	Locked        bool     `json:"locked"`
	IsPullRequest bool     `json:"isPullRequest,omitempty"`
	Deleted       bool     `json:"deleted,omitempty"` // number taken by a deleted issue
	URL           string   `json:"url,omitempty"`
}

// IssueInput describes an issue to create.
type IssueInput struct {
	Title  string
	Body   string
	Labels []string
}

// HasLabel reports whether the issue carries the named label.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Label is a destination repository label.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"` // 6 hex digits, no leading '#'
	Description string `json:"description,omitempty"`
}
