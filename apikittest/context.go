package apikittest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const base ctxKey = iota + 1

// values are shared by the middleware handling one request.
type values struct {
	RequestID  string
	Now        time.Time
	StatusCode int
}

func setStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(base).(*values)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

func getValues(ctx context.Context) *values {
	v, ok := ctx.Value(base).(*values)
	if !ok {
		return &values{
			RequestID: uuid.Nil.String(),
			Now:       time.Now(),
		}
	}

	return v
}

func setValues(ctx context.Context, v *values) context.Context {
	return context.WithValue(ctx, base, v)
}
