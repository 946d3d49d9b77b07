package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StartStdio connects the server over stdin/stdout and blocks until
// the client disconnects or ctx is canceled, grounded on the
// teacher's StartStdioServer (transport_stdio.go): same
// StdioTransport-plus-session.Wait shape, stripped of the teacher's
// HTTP transport alternative since SPEC_FULL.md's inspector is a
// local stdio-only tool.
func (s *Server) StartStdio(ctx context.Context) (err error) {
	defer s.recoverInto("mcp.StartStdio")

	transport := &mcp.StdioTransport{}
	session, err := s.server.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("mcp: connect stdio transport: %w", err)
	}

	if err := session.Wait(); err != nil {
		return fmt.Errorf("mcp: stdio session ended with error: %w", err)
	}
	return nil
}
