// Package async runs calls on goroutines and hands back futures for
// their results.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrQueueShutdown is returned by futures started after [Queue.Shutdown].
var ErrQueueShutdown = errors.New("queue shut down")

// WorkFunc is the signature for async work.
type WorkFunc[T any] func(ctx context.Context) (T, error)

// Queue tracks in-flight work and optionally bounds its concurrency.
// It is safe to Start and Wait from different goroutines at once.
type Queue struct {
	mu       sync.Mutex
	idle     *sync.Cond
	inFlight int
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue with the given concurrency limit.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	q.idle = sync.NewCond(&q.mu)
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until no work is in flight and returns, joined, the errors
// of the work that finished since the previous Wait.
func (q *Queue) Wait() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.inFlight > 0 {
		q.idle.Wait()
	}

	errs := q.errs
	q.errs = nil

	return errors.Join(errs...)
}

// Shutdown prevents new work from executing in this queue.
// Work already running is not interrupted.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// Start launches fn in a new goroutine managed by q and returns a
// Future for its result. Work waiting on a concurrency slot gives up
// when ctx ends.
func Start[T any](ctx context.Context, q *Queue, fn WorkFunc[T]) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	if q.shutdown.Load() {
		cancel()
		f.err = ErrQueueShutdown
		close(f.done)
		return f
	}

	q.mu.Lock()
	q.inFlight++
	q.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			close(f.done)
			q.done()
		}()

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				f.err = ctx.Err()
				q.recordErr(f.err)
				return
			}
		}

		if q.shutdown.Load() {
			f.err = ErrQueueShutdown
			q.recordErr(f.err)
			return
		}

		f.val, f.err = fn(ctx)
		if f.err != nil {
			q.recordErr(f.err)
		}
	}()

	return f
}

// done marks one unit of work finished and wakes waiters once none is left.
func (q *Queue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight--
	if q.inFlight == 0 {
		q.idle.Broadcast()
	}
}

// recordErr appends err to the queue's error slice under the mutex.
func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}
