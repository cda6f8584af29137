package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/codeartlibs/apikit-go/client/transport"

// HTTP is a [Transport] backed by net/http.
// It sets a default *http.Client, whose transport chain
// can be customized via optional funcs.
type HTTP struct {
	c           *http.Client
	tracer      trace.Tracer
	maxBodySize int64
	logger      *slog.Logger
}

// New builds an HTTP transport. The RoundTripper chain, innermost first, is:
// base transport, metrics, user agent, throttle.
func New(optFns ...Option) (*HTTP, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying transport option: %w", err)
		}
	}

	t := &HTTP{
		c:           &http.Client{},
		tracer:      otel.Tracer(tracerName),
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	if opts.client != nil {
		cpy := *opts.client
		t.c = &cpy
	}
	if opts.logger != nil {
		t.logger = opts.logger
	}
	if opts.tracer != nil {
		t.tracer = opts.tracer
	}
	if opts.maxBodySize > 0 {
		t.maxBodySize = opts.maxBodySize
	}
	if opts.timeout != nil {
		t.c.Timeout = *opts.timeout
	}
	if opts.noFollowRedirects {
		t.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		rt = opts.client.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.registerer != nil {
		instrumented, err := instrument(opts.registerer, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		rt = instrumented
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	if opts.throttle != nil {
		th, err := newThrottle(*opts.throttle, func() *slog.Logger { return t.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = th
	}
	t.c.Transport = rt

	return t, nil
}

// Send executes req and reads the whole response body.
func (t *HTTP) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	ctx, span := t.tracer.Start(ctx, "apikit "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		),
	)
	defer span.End()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "building request")
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	for k, v := range req.Header {
		for _, element := range v {
			hreq.Header.Add(k, element)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(hreq.Header))

	resp, err := t.c.Do(hreq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exec http do")
		return nil, fmt.Errorf("exec http do: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.logger.Error("failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	b, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize+1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading body")
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(b)) > t.maxBodySize {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			t.logger.Error("failed to discard unused body", "error", err)
		}
		span.SetStatus(codes.Error, ErrBodyTooLarge.Error())
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, t.maxBodySize)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       b,
	}, nil
}
