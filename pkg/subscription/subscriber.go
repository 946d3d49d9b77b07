// Package subscription implements the many-to-many subscription
// registry of spec.md §4.7: ValueRef ↔ Subscriber edges, plus a side
// table of future subscriptions waiting on a path that doesn't exist
// yet.
package subscription

import "github.com/corvidae/fluxui/pkg/ids"

// Subscriber identifies a consumer — conceptually (widget-id,
// attribute-key), per spec.md §3 "Subscriber (ValueId)".
type Subscriber struct {
	Widget ids.ID
	Attr   string
}
