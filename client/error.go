package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication is matched by every [AuthenticationError].
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidAccessToken is returned when Authenticate is given an empty app key.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrMissingToken is returned when the auth endpoint answers 2xx without a token.
	ErrMissingToken = errors.New("token missing from auth response")
	// ErrNotAuthenticated is returned by Request on a protected path before Authenticate succeeded.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrTransport is matched by every [TransportError].
	ErrTransport = errors.New("transport failure")
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [APIError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
)

// APIError is returned when the server answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
	Err        error
}

func newAPIError(resp *Response) *APIError {
	err := ErrUnexpectedStatusCode
	if resp.statusCode == http.StatusUnauthorized || resp.statusCode == http.StatusForbidden {
		err = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	return &APIError{
		StatusCode: resp.statusCode,
		Body:       string(resp.body),
		RequestID:  resp.requestID,
		Err:        err,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, truncate(e.Body))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the exchange itself failed: connection
// refused, timeout, unreadable response.
type TransportError struct {
	Method    string
	URL       string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrTransport, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// AuthenticationError is returned by Authenticate. StatusCode and Body are
// set when the auth endpoint answered; Err holds the cause, which may be
// a [*TransportError]. RequestID is the X-Request-ID the auth call was
// sent with.
type AuthenticationError struct {
	StatusCode int
	Body       string
	RequestID  string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: %v: %d, body: %s", ErrAuthentication, e.Err, e.StatusCode, truncate(e.Body))
	}
	return fmt.Sprintf("%v: %v", ErrAuthentication, e.Err)
}

func (e *AuthenticationError) Unwrap() []error {
	return []error{ErrAuthentication, e.Err}
}

// truncate caps body text embedded in error strings.
func truncate(s string) string {
	if len(s) > maxErrBodySize {
		return s[:maxErrBodySize] + "..."
	}
	return s
}
