package join

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned when a call is made before Login.
var ErrNotAuthenticated = errors.New("join: not authenticated")

// HTTPError is a non-2xx answer of the JoinRPG API. The token endpoint and
// the game API answer with an OAuth style `{"error", "error_description"}`
// document; anything else is kept in Body.
type HTTPError struct {
	StatusCode  int
	Code        string
	Description string
	Body        string
}

func (e *HTTPError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("join: HTTP %d %s: %s", e.StatusCode, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("join: HTTP %d %s", e.StatusCode, e.Code)
	case e.Body != "":
		return fmt.Sprintf("join: HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("join: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// IsStatus reports whether err wraps an HTTPError with the given status.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

// Retryable reports whether repeating the request may succeed. Client errors
// other than timeouts and throttling are final; transport failures are not.
func Retryable(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return true
	}
	switch httpErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return httpErr.StatusCode >= 500
}
