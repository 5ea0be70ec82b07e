package join

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPErrorMessage(t *testing.T) {
	cases := []struct {
		err  *HTTPError
		want string
	}{
		{&HTTPError{StatusCode: 400, Code: "invalid_grant", Description: "The user name or password is incorrect."},
			"join: HTTP 400 invalid_grant: The user name or password is incorrect."},
		{&HTTPError{StatusCode: 401, Code: "invalid_token"}, "join: HTTP 401 invalid_token"},
		{&HTTPError{StatusCode: 502, Body: "<html>bad gateway</html>\n"}, "join: HTTP 502: <html>bad gateway</html>"},
		{&HTTPError{StatusCode: 404}, "join: HTTP 404 Not Found"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&HTTPError{StatusCode: http.StatusServiceUnavailable}, true},
		{&HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{&HTTPError{StatusCode: http.StatusRequestTimeout}, true},
		{fmt.Errorf("join.Character x: %w", &HTTPError{StatusCode: http.StatusNotFound}), false},
		{&HTTPError{StatusCode: http.StatusUnauthorized}, false},
		{errors.New("connection reset"), true},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
