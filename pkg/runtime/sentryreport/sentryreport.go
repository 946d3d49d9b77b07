// Package sentryreport adapts github.com/getsentry/sentry-go into
// runtime.ErrorReporter, grounded on the teacher's
// pkg/bubbly/observability.SentryReporter: same Hub-based capture
// behind WithScope, generalized from bubbly's HandlerPanicError/
// ErrorContext pair to runtime.ErrorReporter's plain
// (component string, err error) shape.
package sentryreport

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends recovered panics and backend errors to Sentry.
// Thread-safe: every method goes through the Sentry Hub API.
type Reporter struct {
	hub *sentry.Hub
}

// Option configures the underlying sentry.ClientOptions before Init,
// the same functional-options shape as the teacher's SentryOption.
type Option func(*sentry.ClientOptions)

// WithDebug enables Sentry's own debug logging.
func WithDebug(debug bool) Option {
	return func(o *sentry.ClientOptions) { o.Debug = debug }
}

// WithEnvironment tags every event with an environment name.
func WithEnvironment(env string) Option {
	return func(o *sentry.ClientOptions) { o.Environment = env }
}

// WithRelease tags every event with a release identifier.
func WithRelease(release string) Option {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

// WithBeforeSend installs a hook to filter or modify events before
// they leave the process.
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// New initializes the Sentry SDK and returns a Reporter bound to its
// current hub. An empty dsn disables sending, which test setups rely
// on to construct a Reporter without reaching the network.
func New(dsn string, opts ...Option) (*Reporter, error) {
	clientOpts := sentry.ClientOptions{Dsn: dsn}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	if err := sentry.Init(clientOpts); err != nil {
		return nil, fmt.Errorf("sentryreport: init sentry: %w", err)
	}
	return &Reporter{hub: sentry.CurrentHub()}, nil
}

// Report implements runtime.ErrorReporter, tagging the event with the
// originating component name before capturing it as an exception.
func (r *Reporter) Report(component string, err error) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		r.hub.CaptureException(err)
	})
}

// Flush blocks until pending events are sent or timeout elapses,
// which callers should defer right after constructing a Reporter so
// process exit doesn't drop the final report.
func (r *Reporter) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
