package bugzilla

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned for bug ids that do not exist (never filed or deleted).
	ErrNotFound = errors.New("bug not found")

	// ErrAccessDenied is returned for bugs the caller may not see.
	ErrAccessDenied = errors.New("bug access denied")
)

// Bugzilla web service error codes.
const (
	codeInvalidBugID = 100
	codeBugNotFound  = 101
	codeAccessDenied = 102
)

// APIError is an error reported by the Bugzilla web service.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("bugzilla error %d (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bugzilla error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Is maps web service codes onto ErrNotFound and ErrAccessDenied.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == codeInvalidBugID || e.Code == codeBugNotFound ||
			(e.Code == 0 && e.StatusCode == http.StatusNotFound)
	case ErrAccessDenied:
		return e.Code == codeAccessDenied
	}
	return false
}

// IsUnavailable reports whether err means the bug cannot be read, either
// because it does not exist or because it is private.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied)
}

// parseError returns an *APIError when the response carries one, nil otherwise.
// Bugzilla marks failures with "error": true, usually alongside a 4xx/5xx status.
func parseError(status int, body []byte) error {
	var envelope struct {
		Error   bool   `json:"error"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &envelope)

	if envelope.Error {
		return &APIError{StatusCode: status, Code: envelope.Code, Message: envelope.Message}
	}
	if status >= http.StatusBadRequest {
		msg := http.StatusText(status)
		if envelope.Message != "" {
			msg = envelope.Message
		}
		return &APIError{StatusCode: status, Message: msg}
	}
	return nil
}
