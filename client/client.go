package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/codeartlibs/apikit-go/client/transport"
	"github.com/codeartlibs/apikit-go/config"
)

// API is the blocking capability shared by every client variant.
// [Async] exposes the same calls as futures on top of any API.
type API interface {
	Authenticate(ctx context.Context, appKey string) error
	Request(ctx context.Context, path string, opts ...RequestOption) (*Response, error)
}

var _ API = (*Client)(nil)

// Client talks to one APIKit deployment. It is safe for concurrent use;
// the stored token is last-writer-wins.
type Client struct {
	cfg       config.Config
	transport transport.Transport
	logger    *slog.Logger
	newID     func() string

	mu    sync.RWMutex
	token string
}

// Build validates cfg and returns a Client. Unless WithTransport is
// given, requests go through a [transport.HTTP] carrying cfg.UserAgent.
func Build(cfg config.Config, optFns ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	if opts.logger != nil {
		c.logger = opts.logger
	}
	if opts.newID != nil {
		c.newID = opts.newID
	}

	if opts.transport != nil {
		c.transport = opts.transport
	} else {
		base := []transport.Option{transport.WithLogger(c.logger)}
		if cfg.UserAgent != "" {
			base = append(base, transport.WithUserAgent(cfg.UserAgent))
		}
		t, err := transport.New(append(base, opts.transportOpts...)...)
		if err != nil {
			return nil, fmt.Errorf("building transport: %w", err)
		}
		c.transport = t
	}

	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.Config {
	return c.cfg
}

// Authenticated reports whether a token is stored.
func (c *Client) Authenticated() bool {
	return c.Token() != ""
}

// Token returns the stored token, or "" before Authenticate succeeded.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticate exchanges appKey for a token at the configured auth
// endpoint and stores it. The stored token is left untouched on failure.
func (c *Client) Authenticate(ctx context.Context, appKey string) error {
	if appKey == "" {
		return &AuthenticationError{Err: ErrInvalidAccessToken}
	}

	body, err := json.Marshal(map[string]string{c.cfg.AuthKeyField: appKey})
	if err != nil {
		return &AuthenticationError{Err: fmt.Errorf("encoding auth payload: %w", err)}
	}

	settings := requestOpts{method: http.MethodPost}
	req, err := c.newRequest(c.cfg.AuthPath, settings)
	if err != nil {
		return &AuthenticationError{Err: err}
	}
	req.Header.Set(HeaderContentType, ContentTypeJSON)
	req.Body = body

	// The key itself is never logged.
	resp, err := c.exec(ctx, req, settings, map[string]any{c.cfg.AuthKeyField: "?"})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return &AuthenticationError{StatusCode: apiErr.StatusCode, Body: apiErr.Body, RequestID: apiErr.RequestID, Err: apiErr.Err}
		}
		return &AuthenticationError{RequestID: req.Header.Get(HeaderRequestID), Err: err}
	}

	token, err := extractToken(resp, c.cfg.TokenField)
	if err != nil {
		return &AuthenticationError{StatusCode: resp.statusCode, Body: resp.Text(), RequestID: resp.RequestID(), Err: err}
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Debug("authenticated", "auth_path", c.cfg.AuthPath, "request_id", resp.requestID)

	return nil
}

// Request calls path (relative to the base URL) and returns the response
// of a 2xx answer. The method defaults to POST.
func (c *Client) Request(ctx context.Context, path string, optFns ...RequestOption) (*Response, error) {
	settings, err := newRequestOpts(optFns)
	if err != nil {
		return nil, err
	}

	token := c.Token()
	if token == "" && !c.cfg.IsPublic(pathOnly(path)) {
		return nil, fmt.Errorf("%w: %s requires a token", ErrNotAuthenticated, pathOnly(path))
	}

	req, err := c.newRequest(path, settings)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set(c.cfg.TokenHeader, c.credential(token))
	}

	if err := encodeParams(req, settings); err != nil {
		return nil, err
	}

	return c.exec(ctx, req, settings, settings.params)
}

// newRequest resolves path against the base URL and sets the per-call
// headers shared by Authenticate and Request.
func (c *Client) newRequest(path string, settings requestOpts) (*transport.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parsing request url: %w", err)
	}

	requestID := settings.requestID
	if requestID == "" {
		requestID = c.newID()
	}

	header := make(http.Header, len(settings.headers)+2)
	for k, v := range settings.headers {
		header.Set(k, v)
	}
	header.Set(HeaderRequestID, requestID)

	return &transport.Request{
		Method: settings.method,
		URL:    u.String(),
		Header: header,
	}, nil
}

// exec sends req and turns the outcome into a Response or a typed error.
func (c *Client) exec(ctx context.Context, req *transport.Request, settings requestOpts, params map[string]any) (*Response, error) {
	timeout := c.cfg.Timeout
	if settings.timeout != nil {
		timeout = *settings.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	requestID := req.Header.Get(HeaderRequestID)

	raw, err := c.transport.Send(ctx, req)
	if err != nil {
		c.logger.Error("request failed", "request_id", requestID, "cmd", c.httpie(req, params, true), "error", err)
		return nil, &TransportError{Method: req.Method, URL: req.URL, RequestID: requestID, Err: err}
	}
	if raw == nil {
		c.logger.Error("request failed", "request_id", requestID, "cmd", c.httpie(req, params, true), "error", transport.ErrNilResponse)
		return nil, &TransportError{Method: req.Method, URL: req.URL, RequestID: requestID, Err: transport.ErrNilResponse}
	}

	resp := newResponse(raw, requestID)

	switch {
	case !resp.IsSuccess():
		c.logger.Warn("request completed", "request_id", requestID, "cmd", c.httpie(req, params, true), "status", resp.statusCode, "body", truncate(resp.Text()))
		return nil, newAPIError(resp)
	case c.cfg.Debug:
		c.logger.Info("request completed", "request_id", requestID, "cmd", c.httpie(req, params, false), "status", resp.statusCode, "body", truncate(resp.Text()))
	}

	return resp, nil
}

func (c *Client) credential(token string) string {
	if c.cfg.TokenScheme == "" {
		return token
	}
	return c.cfg.TokenScheme + " " + token
}

// encodeParams places params in the query string for GET, otherwise in
// the body using the selected encoding.
func encodeParams(req *transport.Request, settings requestOpts) error {
	if req.Method == http.MethodGet {
		if len(settings.params) == 0 {
			return nil
		}

		u, err := url.Parse(req.URL)
		if err != nil {
			return fmt.Errorf("parsing request url: %w", err)
		}
		q := u.Query()
		for k, v := range settings.params {
			q.Set(k, stringify(v))
		}
		u.RawQuery = q.Encode()
		req.URL = u.String()

		return nil
	}

	switch {
	case settings.msgpack:
		b, err := msgpack.Marshal(settings.params)
		if err != nil {
			return fmt.Errorf("encoding msgpack payload: %w", err)
		}
		req.Body = b
		req.Header.Set(HeaderContentType, ContentTypeMsgpack)

	case settings.form:
		form := url.Values{}
		for k, v := range settings.params {
			form.Set(k, stringify(v))
		}
		req.Body = []byte(form.Encode())
		req.Header.Set(HeaderContentType, ContentTypeForm)

	case settings.params != nil:
		b, err := json.Marshal(settings.params)
		if err != nil {
			return fmt.Errorf("encoding request payload: %w", err)
		}
		req.Body = b
		req.Header.Set(HeaderContentType, ContentTypeJSON)
	}

	return nil
}

// extractToken reads field from the auth response. Dots in field walk
// nested objects: "data.token".
func extractToken(resp *Response, field string) (string, error) {
	var doc map[string]any
	if err := resp.Decode(&doc); err != nil {
		return "", err
	}

	var cur any = doc
	for _, key := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", ErrMissingToken
		}
		cur = obj[key]
	}

	token, ok := cur.(string)
	if !ok || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func pathOnly(path string) string {
	p, _, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
