package runtime

// ErrorReporter receives recovered panics and backend errors the frame
// loop would otherwise only log (spec.md §10.1). The default is a
// no-op; pkg/runtime/sentryreport provides a Sentry-backed one,
// grounded on the teacher's observability/monitoring packages' Sentry
// wiring for panic capture.
type ErrorReporter interface {
	Report(component string, err error)
}

type noopReporter struct{}

func (noopReporter) Report(string, error) {}
