package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/spiffcs/bzmigrate/internal/bugzilla"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/model"
)

const testBaseURL = "https://bugs.example.org"

// fakeSource is an in-memory Source.
type fakeSource struct {
	records map[int]model.Record
	errs    map[int]error // returned by Bug instead of the record
	maxID   int
	calls   int

	maxIDCalls int
}

func newFakeSource(ids ...int) *fakeSource {
	s := &fakeSource{records: make(map[int]model.Record), errs: make(map[int]error)}
	for _, id := range ids {
		s.records[id] = model.Record{
			ID:        id,
			Summary:   fmt.Sprintf("Bug number %d", id),
			Product:   "tools",
			Component: fmt.Sprintf("comp%d", id%3),
			URL:       model.ShowBugURL(testBaseURL, id),
		}
		if id > s.maxID {
			s.maxID = id
		}
	}
	return s
}

func (s *fakeSource) Bug(_ context.Context, id int) (model.Record, error) {
	s.calls++
	if err, ok := s.errs[id]; ok {
		return model.Record{}, err
	}
	rec, ok := s.records[id]
	if !ok {
		return model.Record{}, fmt.Errorf("bug %d: %w", id, bugzilla.ErrNotFound)
	}
	return rec, nil
}

func (s *fakeSource) MaxID(context.Context) (int, error) {
	s.maxIDCalls++
	return s.maxID, nil
}

func (s *fakeSource) BaseURL() string { return testBaseURL }

// fakeHost is an in-memory host.Host that numbers issues sequentially,
// like GitHub does for issues and pull requests together.
type fakeHost struct {
	issues map[int]model.Issue
	labels map[string]model.Label
	next   int

	// failCreateAt makes CreateIssue fail while the next number equals the key.
	failCreateAt map[int]error
	failLock     map[int]error
	failDelete   map[string]error
	failLabel    map[string]error

	createCalls int
	lockCalls   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		issues:       make(map[int]model.Issue),
		labels:       make(map[string]model.Label),
		next:         1,
		failCreateAt: make(map[int]error),
		failLock:     make(map[int]error),
		failDelete:   make(map[string]error),
		failLabel:    make(map[string]error),
	}
}

// addPullRequest consumes the next number with a pull request.
func (h *fakeHost) addPullRequest(title string) int {
	n := h.next
	h.issues[n] = model.Issue{Number: n, Title: title, IsPullRequest: true}
	h.next++
	return n
}

func (h *fakeHost) Name() string { return "fake:owner/repo" }

func (h *fakeHost) ListLabels(context.Context) ([]model.Label, error) {
	labels := make([]model.Label, 0, len(h.labels))
	for _, l := range h.labels {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels, nil
}

func (h *fakeHost) CreateLabel(_ context.Context, l model.Label) error {
	if err, ok := h.failLabel[l.Name]; ok {
		return err
	}
	if _, ok := h.labels[l.Name]; ok {
		return fmt.Errorf("label %q: %w", l.Name, host.ErrLabelExists)
	}
	h.labels[l.Name] = l
	return nil
}

func (h *fakeHost) DeleteLabel(_ context.Context, name string) error {
	if err, ok := h.failDelete[name]; ok {
		return err
	}
	if _, ok := h.labels[name]; !ok {
		return fmt.Errorf("label %q: %w", name, host.ErrLabelNotFound)
	}
	delete(h.labels, name)
	return nil
}

func (h *fakeHost) GetIssue(_ context.Context, number int) (model.Issue, error) {
	issue, ok := h.issues[number]
	if !ok {
		return model.Issue{}, fmt.Errorf("issue #%d: %w", number, host.ErrIssueNotFound)
	}
	return issue, nil
}

func (h *fakeHost) CreateIssue(_ context.Context, in model.IssueInput) (model.Issue, error) {
	h.createCalls++
	if err, ok := h.failCreateAt[h.next]; ok {
		return model.Issue{}, err
	}
	issue := model.Issue{
		Number: h.next,
		Title:  in.Title,
		Body:   in.Body,
		Labels: append([]string(nil), in.Labels...),
	}
	h.issues[issue.Number] = issue
	h.next++
	return issue, nil
}

func (h *fakeHost) LockIssue(_ context.Context, number int) error {
	h.lockCalls++
	if err, ok := h.failLock[number]; ok {
		return err
	}
	issue, ok := h.issues[number]
	if !ok {
		return fmt.Errorf("issue #%d: %w", number, host.ErrIssueNotFound)
	}
	issue.Locked = true
	h.issues[number] = issue
	return nil
}

var _ host.Host = (*fakeHost)(nil)
var _ Source = (*fakeSource)(nil)
