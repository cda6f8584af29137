package client

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeartlibs/apikit-go/client/transport"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	transport     transport.Transport
	transportOpts []transport.Option
	logger        *slog.Logger
	newID         func() string
}

// WithTransport replaces the default net/http [transport.HTTP].
func WithTransport(t transport.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithTransportOptions configures the default [transport.HTTP]. Ignored
// when WithTransport is used.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) error {
		o.transportOpts = append(o.transportOpts, opts...)
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithRequestIDFunc replaces the uuid generator used for X-Request-ID.
func WithRequestIDFunc(fn func() string) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("request id func must not be nil")
		}
		o.newID = fn
		return nil
	}
}

// RequestOption is a functional option for [Client.Request].
type RequestOption func(*requestOpts) error

type requestOpts struct {
	method    string
	params    map[string]any
	headers   map[string]string
	msgpack   bool
	form      bool
	timeout   *time.Duration
	requestID string
}

// WithMethod sets the HTTP method. Default is POST.
func WithMethod(method string) RequestOption {
	return func(o *requestOpts) error {
		if method == "" {
			return errors.New("cannot use empty method")
		}
		o.method = strings.ToUpper(method)
		return nil
	}
}

// WithParams sets the call parameters. GET requests carry them as the
// query string; every other method sends them as the body.
func WithParams(params map[string]any) RequestOption {
	return func(o *requestOpts) error {
		o.params = params
		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOpts) error {
		o.headers = headers
		return nil
	}
}

// WithMsgpack encodes the body as MessagePack instead of JSON.
func WithMsgpack() RequestOption {
	return func(o *requestOpts) error {
		o.msgpack = true
		return nil
	}
}

// WithForm encodes the body as an HTML form instead of JSON.
func WithForm() RequestOption {
	return func(o *requestOpts) error {
		o.form = true
		return nil
	}
}

// WithTimeout bounds this call, overriding the configured timeout. Zero disables it.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOpts) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithRequestID sends id as X-Request-ID instead of a generated one.
func WithRequestID(id string) RequestOption {
	return func(o *requestOpts) error {
		if id == "" {
			return errors.New("cannot use empty request id")
		}
		o.requestID = id
		return nil
	}
}

func newRequestOpts(optFns []RequestOption) (requestOpts, error) {
	settings := requestOpts{method: http.MethodPost}
	for _, opt := range optFns {
		if err := opt(&settings); err != nil {
			return requestOpts{}, err
		}
	}

	if settings.msgpack && settings.form {
		return requestOpts{}, errors.New("msgpack and form encodings are mutually exclusive")
	}
	if settings.method == http.MethodGet && (settings.msgpack || settings.form) {
		return requestOpts{}, errors.New("msgpack and form encodings need a request body, GET sends params as a query")
	}

	return settings, nil
}
