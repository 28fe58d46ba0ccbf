// Package host defines the destination issue host the migration writes to.
package host

import (
	"context"
	"errors"

	"github.com/spiffcs/bzmigrate/internal/model"
)

var (
	// ErrLabelExists is returned by CreateLabel when a label with the same
	// name is already defined.
	ErrLabelExists = errors.New("label already exists")

	// ErrLabelNotFound is returned by DeleteLabel for unknown labels.
	ErrLabelNotFound = errors.New("label not found")

	// ErrIssueNotFound is returned by GetIssue when no issue or pull request
	// has the requested number.
	ErrIssueNotFound = errors.New("issue not found")
)

// Host is an issue-tracking host holding one destination repository.
// Implementations: ghclient.Client (GitHub) and glclient.Client (GitLab).
type Host interface {
	// Name identifies the host and repository, e.g. "github:llvm/llvm-project".
	Name() string

	ListLabels(ctx context.Context) ([]model.Label, error)
	CreateLabel(ctx context.Context, label model.Label) error
	DeleteLabel(ctx context.Context, name string) error

	// GetIssue returns the issue or pull request numbered number.
	GetIssue(ctx context.Context, number int) (model.Issue, error)
	CreateIssue(ctx context.Context, input model.IssueInput) (model.Issue, error)
	// LockIssue prevents further edits and comments on the issue.
	LockIssue(ctx context.Context, number int) error
}
