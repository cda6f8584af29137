package apikittest

import "log/slog"

// Option configures a Server.
type Option func(*options)

type options struct {
	authPath    string
	tokenHeader string
	tokenScheme string
	appKeys     []string
	publicPaths []string
	logger      *slog.Logger
}

// WithAppKeys restricts the keys the auth endpoint accepts.
func WithAppKeys(keys ...string) Option {
	return func(o *options) {
		o.appKeys = append(o.appKeys, keys...)
	}
}

// WithAuthPath moves the auth endpoint. Default is "/auth".
func WithAuthPath(path string) Option {
	return func(o *options) {
		o.authPath = path
	}
}

// WithTokenHeader sets the header and scheme tokens are expected in.
// Default is "Authorization" with scheme "Bearer"; an empty scheme
// expects the bare token.
func WithTokenHeader(header, scheme string) Option {
	return func(o *options) {
		o.tokenHeader = header
		o.tokenScheme = scheme
	}
}

// WithPublicPaths replaces the paths served without a token, so
// "/status/ping" requires one unless listed again. Default is "/status/ping".
func WithPublicPaths(paths ...string) Option {
	return func(o *options) {
		o.publicPaths = paths
	}
}

// WithLogger sets the logger for request logs. Default discards.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}
