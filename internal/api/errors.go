package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a rejection from the remote API. Message carries the
// server-provided detail when there is one; Error() falls back to a generic
// "failed to <op>" otherwise, so it is always suitable for direct display.
type Error struct {
	Status  int
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("failed to %s", e.Op)
}

// IsClientError reports whether err is a 4xx rejection, typically a
// validation failure the user can act on.
func IsClientError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500
	}

	return false
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}

	return false
}

// IsUnauthorized reports whether err is a 401, meaning the session token is
// missing or expired.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}

	return false
}
