// File: passer/options.go
// Functional options for Passer construction, adapted from the
// teacher's server/options.go (ServerOption) idiom.
package passer

import "time"

// DefaultRetryInterval is the fallback §4.6 retry interval when Config
// does not set one: within spec's recommended 100-500ms band.
const DefaultRetryInterval = 200 * time.Millisecond

// Config is the public constructor contract, per spec §6.
type Config struct {
	// FDs holds zero, one, or two pre-established endpoint descriptors,
	// per spec §3 lifecycles. Ownership of every fd named here transfers
	// to the constructed Passer.
	FDs []uintptr

	// DontSetNonblocking, when true, skips the non-blocking transition;
	// caller asserts the endpoint(s) are already non-blocking. Per spec
	// §6, not recommended: spurious readiness from some loops can then
	// cause a blocking syscall.
	DontSetNonblocking bool

	// OnError is invoked exactly once, on Shutdown, with a nil reason
	// for orderly shutdown or the failure cause otherwise.
	OnError func(error)

	// Watcher supplies the host event loop capability set (spec §9). It
	// must be non-nil; the module does not assume a concrete loop. Use
	// reactor.NewWatcher for the default epoll/IOCP-backed implementation.
	Watcher Watcher

	// RetryInterval overrides DefaultRetryInterval for the §4.6 retry
	// timer. Zero means DefaultRetryInterval.
	RetryInterval time.Duration
}

// Option mutates a Config after its literal fields are set, following
// the functional-options idiom.
type Option func(*Config)

// WithOnError sets Config.OnError.
func WithOnError(fn func(error)) Option {
	return func(c *Config) { c.OnError = fn }
}

// WithWatcher sets Config.Watcher.
func WithWatcher(w Watcher) Option {
	return func(c *Config) { c.Watcher = w }
}

// WithRetryInterval sets Config.RetryInterval.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) { c.RetryInterval = d }
}

// WithoutNonblocking sets Config.DontSetNonblocking.
func WithoutNonblocking() Option {
	return func(c *Config) { c.DontSetNonblocking = true }
}

func (c *Config) retryInterval() time.Duration {
	if c.RetryInterval <= 0 {
		return DefaultRetryInterval
	}
	return c.RetryInterval
}
