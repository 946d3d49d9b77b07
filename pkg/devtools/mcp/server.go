// Package mcp exposes a fluxui runtime's captured widget-tree
// snapshots to AI coding agents over the Model Context Protocol,
// grounded on the teacher's pkg/bubbly/devtools/mcp package. The
// teacher's surface is deliberately not carried whole: auth.go,
// ratelimit.go, batcher.go, notifier.go/subscription.go,
// transport_http.go, change_detector.go and validation.go have no
// SPEC_FULL.md component to serve (spec.md's MCP inspector is a local,
// single-client stdio tool, not a multi-tenant HTTP service), and the
// clear/export/setref tools assumed a mutable devtools store that
// fluxui's read-only Store doesn't offer. What remains — one
// resource, one search tool, one stdio transport starter — is the
// slice of the teacher's surface that SPEC_FULL.md's inspector
// actually needs.
package mcp

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corvidae/fluxui/pkg/devtools"
)

// Reporter receives panics recovered from tool/resource handlers.
// Satisfied by pkg/runtime.ErrorReporter without importing it, keeping
// pkg/devtools/mcp independent of pkg/runtime's package graph.
type Reporter interface {
	Report(component string, err error)
}

type noopReporter struct{}

func (noopReporter) Report(string, error) {}

// Server wraps an MCP SDK server pointed at a devtools.Store, grounded
// on the teacher's MCPServer (pkg/bubbly/devtools/mcp/server.go): same
// thin-wrapper-holding-server-plus-data-source shape, repointed at
// fluxui's widget-tree Store instead of bubblyui's component-tree
// DevToolsStore.
type Server struct {
	server   *mcp.Server
	store    *devtools.Store
	reporter Reporter
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithReporter installs a Reporter notified of handler panics. The
// default is a no-op.
func WithReporter(r Reporter) Option {
	return func(s *Server) { s.reporter = r }
}

// New creates a Server backed by store, registers its resource and
// tool, and returns it ready for StartStdio. name/version identify the
// server during the MCP initialization handshake.
func New(name, version string, store *devtools.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		reporter: noopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}

	impl := &mcp.Implementation{Name: name, Version: version}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{})

	s.registerWidgetsResource()
	s.registerSearchWidgetsTool()

	return s
}

func (s *Server) recoverInto(component string) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			s.reporter.Report(component, err)
		} else {
			s.reporter.Report(component, &panicValue{r})
		}
	}
}

type panicValue struct{ v any }

func (p *panicValue) Error() string { return fmt.Sprintf("panic recovered in mcp handler: %v", p.v) }
