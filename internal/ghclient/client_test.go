package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// newTestClient returns a Client whose API base URL points at a test server.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-token", "owner/repo")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	c.client.BaseURL = u
	return c
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "owner/repo"); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := NewClient(context.Background(), "tok", "just-a-name"); err == nil {
		t.Error("expected error for repo without owner")
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		input   string
		owner   string
		name    string
		wantErr bool
	}{
		{"llvm/llvm-project", "llvm", "llvm-project", false},
		{"/llvm/llvm-project/", "llvm", "llvm-project", false},
		{"llvm", "", "", true},
		{"a/b/c", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, name, err := SplitRepo(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitRepo(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if owner != tt.owner || name != tt.name {
				t.Errorf("SplitRepo(%q) = %q, %q", tt.input, owner, name)
			}
		})
	}
}

func TestName(t *testing.T) {
	c, err := NewClient(context.Background(), "tok", "llvm/llvm-project")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "github:llvm/llvm-project" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestListLabelsPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"name":"tools/opt","color":"ff0000"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/owner/repo/labels?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"name":"bug","color":"d73a4a","description":"Something is broken"}]`)
	})

	c := newTestClient(t, mux)
	labels, err := c.ListLabels(context.Background())
	if err != nil {
		t.Fatalf("ListLabels() error = %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Description != "Something is broken" || labels[1].Name != "tools/opt" {
		t.Errorf("unexpected labels %+v", labels)
	}
}

func TestCreateLabelAlreadyExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Validation Failed","errors":[{"resource":"Label","code":"already_exists","field":"name"}]}`)
	})

	c := newTestClient(t, mux)
	err := c.CreateLabel(context.Background(), model.Label{Name: "tools/opt", Color: "ff0000"})
	if !errors.Is(err, host.ErrLabelExists) {
		t.Errorf("expected ErrLabelExists, got %v", err)
	}
}

func TestCreateLabelSendsFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["name"] != "tools" || body["color"] != "abcdef" || body["description"] != "Command line tools" {
			t.Errorf("unexpected body %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"name":"tools"}`)
	})

	c := newTestClient(t, mux)
	err := c.CreateLabel(context.Background(), model.Label{Name: "tools", Color: "abcdef", Description: "Command line tools"})
	if err != nil {
		t.Errorf("CreateLabel() error = %v", err)
	}
}

func TestDeleteLabelNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels/foo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	c := newTestClient(t, mux)
	if err := c.DeleteLabel(context.Background(), "foo"); !errors.Is(err, host.ErrLabelNotFound) {
		t.Errorf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestDeleteLabelEscapesName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "bug", want: "/repos/owner/repo/labels/bug"},
		{name: "tools/opt", want: "/repos/owner/repo/labels/tools%2Fopt"},
		{name: "DSA/New Bugs", want: "/repos/owner/repo/labels/DSA%2FNew%20Bugs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/owner/repo/labels/", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				got = r.URL.EscapedPath()
				w.WriteHeader(http.StatusNoContent)
			})

			c := newTestClient(t, mux)
			if err := c.DeleteLabel(context.Background(), tt.name); err != nil {
				t.Fatalf("DeleteLabel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DELETE path = %q, want %q", got, tt.want)
			}
		})
	}
}

// labelServer is a GitHub label endpoint that addresses each label by a
// single path segment, as the real API does.
func labelServer(t *testing.T, names ...string) (*http.ServeMux, map[string]bool) {
	t.Helper()

	labels := make(map[string]bool)
	for _, n := range names {
		labels[n] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		list := make([]map[string]string, 0, len(labels))
		for n := range labels {
			list = append(list, map[string]string{"name": n, "color": "ededed"})
		}
		sort.Slice(list, func(i, j int) bool { return list[i]["name"] < list[j]["name"] })
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/repos/owner/repo/labels/", func(w http.ResponseWriter, r *http.Request) {
		segment := strings.TrimPrefix(r.URL.EscapedPath(), "/repos/owner/repo/labels/")
		name, err := url.PathUnescape(segment)
		if err != nil || strings.Contains(segment, "/") || !labels[name] {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		delete(labels, name)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux, labels
}

func TestResetLabelsRemovesNestedNames(t *testing.T) {
	mux, labels := labelServer(t, "bug", "tools/opt", "DSA/New Bugs")
	c := newTestClient(t, mux)

	report, err := migrate.ResetLabels(context.Background(), c, migrate.LabelOptions{})
	if err != nil {
		t.Fatalf("ResetLabels() error = %v", err)
	}
	if len(report.Deleted) != 3 || len(report.Missing) != 0 {
		t.Errorf("report = %+v, want 3 deleted", report)
	}
	if len(labels) != 0 {
		t.Errorf("labels left after reset: %v", labels)
	}

	left, err := c.ListLabels(context.Background())
	if err != nil {
		t.Fatalf("ListLabels() error = %v", err)
	}
	if len(left) != 0 {
		t.Errorf("ListLabels() after reset = %+v", left)
	}
}

func TestGetIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number":1,"title":"Crash","locked":true,"labels":[{"name":"dummy import from bugzilla"}]}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number":2,"title":"Add feature","pull_request":{"url":"https://api.github.com/repos/owner/repo/pulls/2"}}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		fmt.Fprint(w, `{"message":"This issue was deleted"}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/4", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	issue, err := c.GetIssue(ctx, 1)
	if err != nil {
		t.Fatalf("GetIssue(1) error = %v", err)
	}
	if !issue.Locked || !issue.HasLabel("dummy import from bugzilla") || issue.IsPullRequest {
		t.Errorf("unexpected issue %+v", issue)
	}

	pr, err := c.GetIssue(ctx, 2)
	if err != nil {
		t.Fatalf("GetIssue(2) error = %v", err)
	}
	if !pr.IsPullRequest {
		t.Error("expected #2 to be a pull request")
	}

	deleted, err := c.GetIssue(ctx, 3)
	if err != nil {
		t.Fatalf("GetIssue(3) error = %v", err)
	}
	if !deleted.Deleted || deleted.Number != 3 {
		t.Errorf("expected deleted issue #3, got %+v", deleted)
	}

	if _, err := c.GetIssue(ctx, 4); !errors.Is(err, host.ErrIssueNotFound) {
		t.Errorf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestCreateAndLockIssue(t *testing.T) {
	var lockReason string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title  string   `json:"title"`
			Body   string   `json:"body"`
			Labels []string `json:"labels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Title != "Crash in opt" || len(body.Labels) != 2 {
			t.Errorf("unexpected create body %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":7,"title":"Crash in opt","html_url":"https://github.com/owner/repo/issues/7"}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/7/lock", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		var body struct {
			LockReason string `json:"lock_reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		lockReason = body.LockReason
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	issue, err := c.CreateIssue(ctx, model.IssueInput{
		Title:  "Crash in opt",
		Body:   "This issue was imported from Bugzilla https://bugs.example.org/show_bug.cgi?id=7.",
		Labels: []string{"tools/opt", "dummy import from bugzilla"},
	})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if issue.Number != 7 {
		t.Errorf("expected issue #7, got #%d", issue.Number)
	}

	if err := c.LockIssue(ctx, 7); err != nil {
		t.Fatalf("LockIssue() error = %v", err)
	}
	if lockReason != "too heated" {
		t.Errorf("lock reason = %q, want %q", lockReason, "too heated")
	}
}

func TestRateLimitedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", "9999999999")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	})

	c := newTestClient(t, mux)
	_, err := c.GetIssue(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	_, _, _, limited := c.LastRateLimit()
	if !limited {
		t.Error("expected rate limit state to be limited")
	}
}
