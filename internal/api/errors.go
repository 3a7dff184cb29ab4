package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrLoginFailed is the single, cause-agnostic login error. The backend
// does not distinguish wrong usernames from wrong passwords and neither
// do we.
var ErrLoginFailed = errors.New("login failed: check username and password")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// Unauthorized reports whether the response means the session is no
// longer valid (expired or revoked token).
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsAuthError reports whether err is a 401/403 backend response, the
// kind that forces a logout no matter which call produced it.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
