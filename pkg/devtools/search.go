package devtools

import "strings"

// Search flattens every tree rooted at snapshots and returns the nodes
// whose element name, bare value, or id contains query
// (case-insensitive), grounded on the teacher's SearchWidget
// (pkg/bubbly/devtools/search.go) substring-match behavior, stripped
// of its cursor/render concerns since fluxui's inspector surfaces
// search results through the MCP tool response, not a rendered list
// widget.
func Search(snapshots []*WidgetSnapshot, query string) []*WidgetSnapshot {
	q := strings.ToLower(query)
	var matches []*WidgetSnapshot
	var walk func(n *WidgetSnapshot)
	walk = func(n *WidgetSnapshot) {
		if q == "" ||
			strings.Contains(strings.ToLower(n.ElementName), q) ||
			strings.Contains(strings.ToLower(n.Value), q) ||
			strings.Contains(strings.ToLower(n.ID), q) {
			matches = append(matches, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range snapshots {
		walk(root)
	}
	return matches
}
