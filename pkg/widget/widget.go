// Package widget implements the widget tree of spec.md §4.10: a tagged
// tree of nodes that preserves identity across re-evaluation, offers
// cursor abstractions so the evaluator can mutate it without aliasing,
// and queues removed subtrees for coherent cleanup at frame end.
package widget

import (
	"fmt"
	"strings"

	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/state"
)

// Kind discriminates a widget node's role (spec.md §4.10).
type Kind int

const (
	KindElement Kind = iota
	KindFor
	KindIfArm
	KindSwitchArm
	KindComponent
	KindSlot
)

// Identity implements the widget-identity formula of spec.md §3:
// "(p, v1.id, …, vn.id)" — a tree position plus the stable element ids
// of every enclosing for-loop iteration. Two evaluations that produce
// the same Identity are the same logical widget and must reuse the
// same Node rather than recreate it (spec.md §8 swap-not-recreate).
type Identity struct {
	Pos   int
	Elems []state.ValueRef
}

// Key returns a comparable, map-usable encoding of the identity. Go
// doesn't allow slice fields in map keys directly, so this flattens the
// tuple into a string.
func (id Identity) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", id.Pos)
	for _, e := range id.Elems {
		fmt.Fprintf(&b, "/%d#%d", e.Index, e.Gen)
	}
	return b.String()
}

// Child derives the identity of a nested node at position pos within
// this identity's subtree, optionally appending one more stable element
// id (when descending into a for-loop iteration).
func (id Identity) Child(pos int, elem ...state.ValueRef) Identity {
	elems := make([]state.ValueRef, 0, len(id.Elems)+len(elem))
	elems = append(elems, id.Elems...)
	elems = append(elems, elem...)
	return Identity{Pos: pos, Elems: elems}
}

// Node is one instantiated widget. Exactly the fields matching Kind are
// meaningful, with the exception of the bookkeeping fields (ID,
// Identity, Children) which are always present.
type Node struct {
	ID       ids.ID
	Identity Identity
	Kind     Kind
	Children []*Node

	// KindElement: the opaque element instance returned by the external
	// element-factory collaborator (pkg/widget/elements types, wired in
	// by pkg/evaluator); kept as `any` here to avoid a dependency from
	// this package onto the concrete element catalogue or bubbletea.
	ElementName string
	Element     any

	// KindComponent: the per-instance state/attributes backing store and
	// the scope frame refs that name them.
	StateComposite     *state.Composite
	AttributesComposite *state.Composite

	// KindFor: the binding name exposed to children, and which live
	// collection element (by stable id) this particular iteration node
	// was evaluated for — used to detect when the underlying element
	// itself changed identity out from under an unchanged position.
	ForBinding string
	ForElement state.ValueRef
}

// Tree owns the root node list plus the drain-on-cleanup queue (spec.md
// §4.10 "Track removals in a drain-on-cleanup queue").
type Tree struct {
	Roots   []*Node
	cleanup []*Node
}

// NewTree returns an empty widget tree.
func NewTree() *Tree { return &Tree{} }

// RootCursor returns a cursor over the tree's root-level children.
func (t *Tree) RootCursor() *Cursor { return &Cursor{list: &t.Roots} }

// ChildCursor returns a cursor over n's children.
func (n *Node) ChildCursor() *Cursor { return &Cursor{list: &n.Children} }

// Remove detaches n's subtree (queueing every node in it, n included,
// for cleanup) without touching n's former parent slice; callers use a
// Cursor's RemoveAt to also unlink it from its parent.
func (t *Tree) Remove(n *Node) {
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			walk(c)
		}
		t.cleanup = append(t.cleanup, cur)
	}
	walk(n)
}

// DrainCleanup returns and clears every node queued for removal since
// the last drain (spec.md §4.10 "so that subscribers, attribute
// storage, and per-component state can be released coherently at frame
// end").
func (t *Tree) DrainCleanup() []*Node {
	out := t.cleanup
	t.cleanup = nil
	return out
}

// Cursor is a mutable view over one node's child list (or the tree's
// root list), letting the evaluator insert/remove/swap at a specific
// position without holding a raw slice reference that could alias
// another consumer's in-flight traversal.
type Cursor struct {
	list *[]*Node
}

// Len returns the number of children under this cursor.
func (c *Cursor) Len() int { return len(*c.list) }

// At returns the child at idx.
func (c *Cursor) At(idx int) *Node { return (*c.list)[idx] }

// InsertAt inserts n at idx, shifting later children back.
func (c *Cursor) InsertAt(idx int, n *Node) {
	list := *c.list
	if idx >= len(list) {
		*c.list = append(list, n)
		return
	}
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = n
	*c.list = list
}

// Append inserts n at the end.
func (c *Cursor) Append(n *Node) { c.InsertAt(c.Len(), n) }

// RemoveAt unlinks and returns the child at idx.
func (c *Cursor) RemoveAt(idx int) *Node {
	list := *c.list
	n := list[idx]
	*c.list = append(list[:idx], list[idx+1:]...)
	return n
}

// Swap exchanges the children at i and j in place, preserving identity
// (spec.md §8 "Swapping two adjacent elements ... produces exactly one
// swap" rather than a remove+insert pair).
func (c *Cursor) Swap(i, j int) {
	list := *c.list
	list[i], list[j] = list[j], list[i]
}

// Replace swaps in n at idx and returns the previous occupant (for the
// caller to queue for cleanup).
func (c *Cursor) Replace(idx int, n *Node) *Node {
	list := *c.list
	old := list[idx]
	list[idx] = n
	return old
}

// Painter is the capability an element instance may implement to
// participate in the paint step of the frame cycle (spec.md §4.12 step
// 6). value holds the node's resolved bare attribute (key ""), attrs
// holds every other resolved attribute by name, and children holds each
// child node's already-painted output in tree order. An element that
// doesn't implement Painter is painted as its value (when non-empty)
// followed by its children's output, one per line, with no decoration
// of its own.
type Painter interface {
	Paint(value string, attrs map[string]string, children []string) string
}

// Updater is the capability an interactive element instance may
// implement to consume backend input messages routed to it (spec.md
// §4.12 step 2, key/focus/blur events routed to the focused component).
// cmd is whatever opaque follow-up command the element returns (e.g. a
// bubbletea tea.Cmd boxed as `any`); the runtime discards it.
type Updater interface {
	Update(msg any) (cmd any)
}
