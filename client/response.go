package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/codeartlibs/apikit-go/client/transport"
)

// Response is the result of a successful call. It is immutable: every
// accessor returns a copy.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte
	requestID  string
}

func newResponse(raw *transport.RawResponse, requestID string) *Response {
	header := raw.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	return &Response{
		statusCode: raw.StatusCode,
		header:     header,
		body:       bytes.Clone(raw.Body),
		requestID:  requestID,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.statusCode }

// Header returns a copy of the response headers.
func (r *Response) Header() http.Header { return r.header.Clone() }

// Body returns a copy of the raw response body.
func (r *Response) Body() []byte { return bytes.Clone(r.body) }

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.body) }

// RequestID returns the X-Request-ID the call was sent with.
func (r *Response) RequestID() string { return r.requestID }

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode <= 299
}

// Summary renders a one-line outcome: "200 success" or "404 fail: <body>".
func (r *Response) Summary() string {
	if r.IsSuccess() {
		return fmt.Sprintf("%d success", r.statusCode)
	}
	return fmt.Sprintf("%d fail: %s", r.statusCode, truncate(string(r.body)))
}

// JSON parses the body into generic JSON values. An empty body,
// common for 202 and 204, yields an empty object.
func (r *Response) JSON() (any, error) {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(r.body, &v); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	return v, nil
}

// DecodeOption is a functional option for [Response.Decode].
type DecodeOption func(*decodeOpts)

type decodeOpts struct {
	useJSONNum            bool
	disallowUnknownFields bool
}

// WithJSONNumber tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() DecodeOption {
	return func(o *decodeOpts) { o.useJSONNum = true }
}

// WithStrictFields rejects JSON fields that dst does not declare.
func WithStrictFields() DecodeOption {
	return func(o *decodeOpts) { o.disallowUnknownFields = true }
}

// Decode unmarshals the JSON body into dst, which must be a pointer.
func (r *Response) Decode(dst any, opts ...DecodeOption) error {
	var settings decodeOpts
	for _, opt := range opts {
		opt(&settings)
	}

	d := json.NewDecoder(bytes.NewReader(r.body))
	if settings.useJSONNum {
		d.UseNumber()
	}
	if settings.disallowUnknownFields {
		d.DisallowUnknownFields()
	}

	if err := d.Decode(dst); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

// DecodeMsgpack unmarshals a MessagePack body into dst.
func (r *Response) DecodeMsgpack(dst any) error {
	if err := msgpack.Unmarshal(r.body, dst); err != nil {
		return fmt.Errorf("decoding msgpack body: %w", err)
	}
	return nil
}
