package async

import "context"

// Future is the pending or completed result of work started with [Start].
type Future[T any] struct {
	done   chan struct{}
	val    T
	err    error
	cancel context.CancelFunc
}

// Done returns a channel that is closed when the work completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the work completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// AwaitContext is Await bounded by ctx. The work keeps running if ctx ends first.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err blocks until the work completes and returns its error.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}

// Cancel cancels the context the work runs under.
func (f *Future[T]) Cancel() {
	f.cancel()
}
