package apikittest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/codeartlibs/apikit-go/internal/validate"
)

// record stores a copy of the request before any handler reads the body.
func (s *Server) record(handler Handler) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return NewError(http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
			At:     getValues(ctx).Now,
		})
		s.mu.Unlock()

		return handler(ctx, w, r)
	}
}

func logger(log *slog.Logger) Middleware {
	return func(handler Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := getValues(ctx)

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = fmt.Sprintf("%s?%s", path, r.URL.RawQuery)
			}

			log.Info("request started", "request_id", v.RequestID, "method", r.Method, "path", path)

			err := handler(ctx, w, r)

			log.Info("request completed", "request_id", v.RequestID, "method", r.Method, "path", path, "statusCode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}
	}
}

// errorsMW turns handler errors into JSON error bodies.
func errorsMW(log *slog.Logger) Middleware {
	return func(handler Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			var fieldErrs validate.FieldErrors
			if errors.As(err, &fieldErrs) {
				return RespondJSON(w, r, http.StatusUnprocessableEntity, fieldErrs.Fields())
			}

			apiErr, ok := GetError(err)
			if !ok {
				apiErr = NewError(http.StatusInternalServerError, err)
				log.Error("unexpected handler error", "request_id", getValues(ctx).RequestID, "err", err)
			}

			return RespondJSON(w, r, apiErr.Code, apiErr)
		}
	}
}

// panics recovers from a panicking handler.
func panics(handler Handler) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
			}
		}()

		return handler(ctx, w, r)
	}
}
