package apperrors

import (
	"errors"
	"fmt"
)

var (
	// Session could not be kept alive: no refresh token stored, or the
	// refresh call itself was rejected. Stored tokens are cleared whenever
	// this error is returned.
	ErrAuthExpired = errors.New("authentication expired")

	// Server answered the auth call but did not grant tokens
	ErrAuthRejected = errors.New("authentication rejected")

	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrNotLoggedIn    = errors.New("not logged in")

	ErrProjectNotFound = errors.New("project not found")
)

// APIError is a non-2xx backend reply decoded from the common
// {code, message} envelope. Status is the HTTP status, Code the
// application code from the body (0 if the body had none).
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend replied %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend replied %d", e.Status)
}

// IsUnauthorized reports whether err carries an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
