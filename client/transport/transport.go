// Package transport performs the HTTP exchanges behind an APIKit client.
//
// A [Transport] sends one fully-buffered request and returns the fully-read
// response. Status codes are not interpreted here; a 500 is a successful
// Send. Errors are reserved for failures to complete the exchange.
package transport

import (
	"context"
	"errors"
	"net/http"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 32 << 20 // 32MB

var (
	// ErrBodyTooLarge is returned when a response body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrNilRequest is returned when Send is called without a request.
	ErrNilRequest = errors.New("request must not be nil")
	// ErrNilResponse reports a Transport that returned neither a response nor an error.
	ErrNilResponse = errors.New("transport returned no response")
)

// Request is a single outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// RawResponse is the uninterpreted result of a call.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, req *Request) (*RawResponse, error)
}

// Func adapts a plain function to a [Transport]. Useful for tests.
type Func func(ctx context.Context, req *Request) (*RawResponse, error)

// Send calls f.
func (f Func) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	return f(ctx, req)
}
