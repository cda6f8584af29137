package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrMustNotBeZero is returned by WithThrottle and WithMaxBodySize for
	// non-positive values.
	ErrMustNotBeZero = errors.New("must be greater than zero")
	// ErrWaitingFailed is returned when the limiter cannot admit a request,
	// either because the burst is too small or the wait was interrupted.
	ErrWaitingFailed = errors.New("limiter waiting failed")
	// ErrContextEnded is returned when the request context is done before
	// or while the throttle holds the request. It is joined with ctx.Err().
	ErrContextEnded = errors.New("throttle context ended")
)

// ThrottleConfig defines the throttler's
// Requests Per Second and Burst Rate.
type ThrottleConfig struct {
	RPS   int
	Burst int
}

func (c ThrottleConfig) validate() error {
	if c.RPS <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rps[%d] and burst[%d] %w", c.RPS, c.Burst, ErrMustNotBeZero)
	}
	return nil
}

// throttle is an http.RoundTripper that holds each request until the
// token bucket allows it through.
type throttle struct {
	cfg     ThrottleConfig
	limiter *rate.Limiter
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// newThrottle wraps next with a rate limiter. logFn is resolved per request;
// a nil logger disables the exhausted/complete log lines.
func newThrottle(cfg ThrottleConfig, logFn func() *slog.Logger, next http.RoundTripper) (*throttle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &throttle{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		next:    next,
		logFn:   logFn,
	}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	logger := t.logFn()
	reservation := t.limiter.Reserve()
	if !reservation.OK() {
		return nil, fmt.Errorf("%w: burst %d cannot satisfy request", ErrWaitingFailed, t.cfg.Burst)
	}

	delay := reservation.Delay()
	if delay > 0 {
		if logger != nil {
			logger.Info("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "path", r.URL.Path, "wait", delay.String())
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			reservation.Cancel()
			return nil, fmt.Errorf("%w: %w: %w", ErrWaitingFailed, ErrContextEnded, ctx.Err())
		}

		if logger != nil {
			logger.Info("throttle wait complete", "waited", delay.String(), "rate", t.cfg.RPS, "burst", t.cfg.Burst)
		}
	}

	return t.next.RoundTrip(r)
}
