// Package apikittest provides an in-process APIKit server for tests.
//
// The server issues tokens from an auth endpoint, guards every other
// route with them, and records each request it receives:
//
//	srv := apikittest.NewServer(apikittest.WithAppKeys("secret"))
//	defer srv.Close()
//
//	c, _ := client.Build(config.New(srv.URL))
//	_ = c.Authenticate(ctx, "secret")
//	resp, _ := c.Request(ctx, "/echo")
package apikittest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler is a http.Handler that returns an error.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware defines a signature to chain Handler together.
type Middleware func(handler Handler) Handler

// RecordedRequest is a request as the server saw it.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
	At     time.Time
}

// Server is a fake APIKit deployment backed by [httptest.Server].
type Server struct {
	*httptest.Server

	mux         *http.ServeMux
	logger      *slog.Logger
	authPath    string
	tokenHeader string
	tokenScheme string
	appKeys     map[string]bool
	public      map[string]bool
	mw          []Middleware

	mu       sync.Mutex
	tokens   map[string]string
	requests []RecordedRequest
}

// NewServer starts a Server. With no WithAppKeys option every non-empty
// app key is accepted.
func NewServer(optFns ...Option) *Server {
	opts := options{
		authPath:    "/auth",
		tokenHeader: "Authorization",
		tokenScheme: "Bearer",
		publicPaths: []string{"/status/ping"},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range optFns {
		opt(&opts)
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      opts.logger,
		authPath:    opts.authPath,
		tokenHeader: opts.tokenHeader,
		tokenScheme: opts.tokenScheme,
		public:      make(map[string]bool),
		tokens:      make(map[string]string),
	}
	if len(opts.appKeys) > 0 {
		s.appKeys = make(map[string]bool, len(opts.appKeys))
		for _, k := range opts.appKeys {
			s.appKeys[k] = true
		}
	}
	for _, p := range opts.publicPaths {
		s.public[p] = true
	}

	s.mw = []Middleware{logger(s.logger), errorsMW(s.logger), panics, s.record}

	s.handle("POST "+s.authPath, s.authenticate, false)
	s.handle("GET /status/ping", s.ping, !s.public["/status/ping"])
	s.handle("/echo", s.echo, !s.public["/echo"])
	s.handle("/status/{code}", s.status, !s.public["/status/{code}"])

	s.Server = httptest.NewServer(s.mux)

	return s
}

// Handle registers h for pattern (a [http.ServeMux] pattern). The route
// requires a token unless its path was listed in WithPublicPaths.
func (s *Server) Handle(pattern string, h Handler) {
	_, path, found := strings.Cut(pattern, " ")
	if !found {
		path = pattern
	}
	s.handle(pattern, h, !s.public[path])
}

// Requests returns every request received so far, oldest first.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// LastRequest returns the most recent request, or false if none arrived yet.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Tokens returns the number of tokens issued.
func (s *Server) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// IssueToken creates a valid token for appKey without an auth call.
func (s *Server) IssueToken(appKey string) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = appKey
	s.mu.Unlock()

	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tokens)
}

func (s *Server) handle(pattern string, h Handler, protected bool) {
	if protected {
		h = s.requireToken(h)
	}
	h = wrap(s.mw, h)

	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := setValues(r.Context(), &values{
			RequestID: id,
			Now:       time.Now().UTC(),
		})

		if err := h(ctx, w, r); err != nil {
			s.logger.Error("handler error", "error", err)
		}
	})
}

// requireToken rejects requests without a token this server issued.
func (s *Server) requireToken(handler Handler) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		value := r.Header.Get(s.tokenHeader)
		if value == "" {
			return NewError(http.StatusUnauthorized, errors.New("missing token"))
		}

		token := value
		if s.tokenScheme != "" {
			var ok bool
			token, ok = strings.CutPrefix(value, s.tokenScheme+" ")
			if !ok {
				return NewError(http.StatusUnauthorized, fmt.Errorf("expected %s token", s.tokenScheme))
			}
		}

		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			return NewError(http.StatusUnauthorized, errors.New("invalid token"))
		}

		return handler(ctx, w, r)
	}
}

// wrap middleware around the handler and execute in order given.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			handler = mwFn(handler)
		}
	}

	return handler
}
