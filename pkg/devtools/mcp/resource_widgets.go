package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corvidae/fluxui/pkg/devtools"
)

// widgetsResource is the JSON body returned by the fluxui://widgets
// resource, grounded on the teacher's ComponentsResource
// (resource_components.go), trimmed to the fields fluxui's Store
// actually tracks (no total_count across history, since Store.Latest
// returns one frame, not an accumulating registry).
type widgetsResource struct {
	Frame     uint64                    `json:"frame"`
	Snapshots []*devtools.WidgetSnapshot `json:"snapshots"`
}

// registerWidgetsResource registers the fluxui://widgets resource,
// grounded on the teacher's RegisterComponentsResource: same
// AddResource-with-inline-handler shape, reading the latest captured
// frame from the Store instead of walking a live component registry.
func (s *Server) registerWidgetsResource() {
	s.server.AddResource(
		&mcp.Resource{
			URI:         "fluxui://widgets",
			Name:        "widgets",
			Description: "Latest captured widget-tree snapshot",
			MIMEType:    "application/json",
		},
		s.readWidgetsResource,
	)
}

func (s *Server) readWidgetsResource(ctx context.Context, req *mcp.ReadResourceRequest) (resp *mcp.ReadResourceResult, err error) {
	defer s.recoverInto("mcp.readWidgetsResource")

	entry, ok := s.store.Latest()
	if !ok {
		entry = devtools.Entry{}
	}

	data, err := json.MarshalIndent(widgetsResource{
		Frame:     entry.Frame,
		Snapshots: entry.Snapshots,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal widgets resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
