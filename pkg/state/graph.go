package state

import "github.com/corvidae/fluxui/pkg/ids"

// ChangeKind classifies one buffered mutation (spec.md §4.6 "a change
// kind {inserted, removed, swapped, modified, at index}").
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeInserted
	ChangeRemoved
	ChangeSwapped
)

// Change is one buffered mutation, keyed by the ValueRef of the cell,
// map, or list it happened to.
type Change struct {
	Ref   ValueRef
	Kind  ChangeKind
	Index int // meaningful for list changes
	Other int // second index, for ChangeSwapped
}

// FutureResolver is notified when a key that previously did not exist
// under owner becomes available, so the subscription registry can
// promote any future subscriptions waiting on that (owner, key) pair
// (spec.md §4.7 "Futures", §9 "Futures").
type FutureResolver interface {
	ResolveFuture(owner ValueRef, key string)
}

// Graph is the process-wide (per-runtime) observable state store:
// every Scalar/Map/List/Composite allocates its ValueRef here and
// enqueues its changes into the graph's per-frame buffer (spec.md §4.6,
// §9 "Global mutable state" — tests must construct a fresh Graph per
// run to reset it).
type Graph struct {
	alloc    *ids.Allocator
	pending  []Change
	resolver FutureResolver
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{alloc: ids.NewAllocator()}
}

// SetFutureResolver wires the subscription registry's future-promotion
// hook into the graph. Call once during runtime construction.
func (g *Graph) SetFutureResolver(r FutureResolver) { g.resolver = r }

func (g *Graph) allocRef() ValueRef { return g.alloc.Alloc() }

func (g *Graph) free(ref ValueRef) { g.alloc.Free(ref) }

func (g *Graph) enqueue(c Change) { g.pending = append(g.pending, c) }

// DrainChanges returns and clears every change buffered since the last
// drain. Writes never fire subscribers directly (spec.md §4.6 "writes
// are buffered in a per-frame change set"); the frame cycle (pkg/runtime)
// calls this once per frame and hands the result to the subscription
// registry.
func (g *Graph) DrainChanges() []Change {
	out := g.pending
	g.pending = nil
	return out
}

func (g *Graph) notifyPathAvailable(owner ValueRef, key string) {
	if g.resolver != nil {
		g.resolver.ResolveFuture(owner, key)
	}
}
