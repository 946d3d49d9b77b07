// Package fluxui re-exports pkg/runtime's public surface for
// convenient top-level import, grounded on the teacher's root
// bubblyui.go facade (same "re-export the one thing an application
// needs to import" shape, repointed at a single Runtime type instead
// of bubblyui's Component/Ref/Computed trio since fluxui's reactive
// primitives live behind templates and state.Composite fields, not a
// hand-built Ref[T] API).
//
// # Quick Start
//
//	rt := fluxui.New(fluxui.WithAltScreen())
//	rt.TemplateFile("root", "app.flux")
//	rt.SetRoot("root")
//	if err := rt.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// For devtools inspection, import pkg/devtools and pkg/devtools/mcp
// directly; for Sentry-backed error reporting, import
// pkg/runtime/sentryreport.
package fluxui

import "github.com/corvidae/fluxui/pkg/runtime"

// Runtime drives one fluxui application: compiling templates, owning
// the widget tree and state graph, and running the frame cycle.
type Runtime = runtime.Runtime

// RunOption configures a Runtime at construction time.
type RunOption = runtime.RunOption

// ErrorReporter receives recovered panics and backend errors the
// frame loop would otherwise only log.
type ErrorReporter = runtime.ErrorReporter

// New creates a Runtime configured by opts.
func New(opts ...RunOption) *Runtime { return runtime.New(opts...) }

// WithFPS sets the target frame rate. Default is 60.
var WithFPS = runtime.WithFPS

// WithAltScreen enables the alternate screen buffer.
var WithAltScreen = runtime.WithAltScreen

// WithMouseAllMotion enables mouse support with all motion events.
var WithMouseAllMotion = runtime.WithMouseAllMotion

// WithErrorTemplate names the template rendered in place of the root
// while a failed reload or a frame error leaves rt.LastError non-nil.
// Compile and mount errors are returned to the caller instead.
var WithErrorTemplate = runtime.WithErrorTemplate

// WithMetricsRegisterer installs a Prometheus registerer for the
// runtime's frame-cycle metrics. Default is a fresh, unshared
// registry, so tests constructing multiple Runtimes don't collide on
// duplicate metric registration.
var WithMetricsRegisterer = runtime.WithMetricsRegisterer

// WithErrorReporter installs a collaborator notified of recovered
// panics and backend errors. Default is a no-op.
var WithErrorReporter = runtime.WithErrorReporter
