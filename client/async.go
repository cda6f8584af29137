package client

import (
	"context"

	"github.com/codeartlibs/apikit-go/client/async"
)

// Async is the non-blocking variant of an [API]. Each call starts on its
// own goroutine and returns immediately with a future; the blocking API
// underneath does the work, so both variants behave identically.
type Async struct {
	api   API
	queue *async.Queue
}

// AsyncOption is a functional option for [NewAsync].
type AsyncOption func(*asyncOpts)

type asyncOpts struct {
	maxConcurrent int
}

// WithConcurrency bounds the number of calls in flight at once.
// n <= 0 means unlimited, the default.
func WithConcurrency(n int) AsyncOption {
	return func(o *asyncOpts) {
		o.maxConcurrent = n
	}
}

// NewAsync wraps api, usually a [*Client].
func NewAsync(api API, optFns ...AsyncOption) *Async {
	var opts asyncOpts
	for _, opt := range optFns {
		opt(&opts)
	}

	return &Async{
		api:   api,
		queue: async.NewQueue(opts.maxConcurrent),
	}
}

// Authenticate starts [API.Authenticate] and returns its future.
func (a *Async) Authenticate(ctx context.Context, appKey string) *async.Future[struct{}] {
	return async.Start(ctx, a.queue, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Authenticate(ctx, appKey)
	})
}

// Request starts [API.Request] and returns its future.
func (a *Async) Request(ctx context.Context, path string, opts ...RequestOption) *async.Future[*Response] {
	return async.Start(ctx, a.queue, func(ctx context.Context) (*Response, error) {
		return a.api.Request(ctx, path, opts...)
	})
}

// Wait blocks until every started call completes and returns, joined, the
// errors of calls that finished since the previous Wait.
func (a *Async) Wait() error {
	return a.queue.Wait()
}

// Shutdown makes calls started afterwards fail with [async.ErrQueueShutdown].
func (a *Async) Shutdown() {
	a.queue.Shutdown()
}

// API returns the wrapped blocking API.
func (a *Async) API() API {
	return a.api
}
