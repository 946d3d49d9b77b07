package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corvidae/fluxui/pkg/devtools"
)

// searchWidgetsParams mirrors the teacher's SearchComponentsParams
// (tool_search.go), dropping the "fields" option since
// devtools.Search always matches the same fixed fields (element name,
// bare value, id).
type searchWidgetsParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchWidgetsResult struct {
	Matches      []*devtools.WidgetSnapshot `json:"matches"`
	TotalMatches int                        `json:"total_matches"`
	Query        string                     `json:"query"`
}

// registerSearchWidgetsTool registers the search_widgets tool,
// grounded on the teacher's RegisterSearchComponentsTool/AddTool
// pattern, searching the latest captured frame instead of a live
// component registry.
func (s *Server) registerSearchWidgetsTool() {
	tool := &mcp.Tool{
		Name:        "search_widgets",
		Description: "Search the latest captured widget tree by element name, value, or id substring.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Substring to match against element name, value, or id",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 50)",
					"minimum":     1,
					"maximum":     1000,
				},
			},
			"required": []string{"query"},
		},
	}
	s.server.AddTool(tool, s.handleSearchWidgetsTool)
}

func (s *Server) handleSearchWidgetsTool(ctx context.Context, req *mcp.CallToolRequest) (resp *mcp.CallToolResult, err error) {
	defer s.recoverInto("mcp.handleSearchWidgetsTool")

	var params searchWidgetsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult(fmt.Sprintf("failed to parse parameters: %v", err)), nil
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 50
	}

	entry, ok := s.store.Latest()
	if !ok {
		return errorResult("no widget tree has been captured yet"), nil
	}

	matches := devtools.Search(entry.Snapshots, params.Query)
	if len(matches) > params.MaxResults {
		matches = matches[:params.MaxResults]
	}

	result := searchWidgetsResult{
		Matches:      matches,
		TotalMatches: len(matches),
		Query:        params.Query,
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
