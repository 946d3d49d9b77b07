package state

// listItem pairs an element's cell with a stable identity that
// survives reordering (spec.md §3 "Lists and maps carry element
// identifiers stable across reordering").
type listItem struct {
	id   ValueRef
	cell *Scalar
}

// List is an observable ordered collection with stable per-element
// identity (spec.md §4.6 "List"). Structural changes (insert, remove,
// swap) notify list-level subscribers with a ChangeKind; per-element
// writes notify that element's own subscribers.
type List struct {
	graph *Graph
	ref   ValueRef
	items []listItem
}

// NewList allocates an empty observable list.
func NewList(g *Graph) *List {
	return &List{graph: g, ref: g.allocRef()}
}

// Ref returns the list's own ValueRef (subscribed to for structural changes).
func (l *List) Ref() ValueRef { return l.ref }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// Get returns the cell at idx and its stable element id.
func (l *List) Get(idx int) (*Scalar, ValueRef, bool) {
	if idx < 0 || idx >= len(l.items) {
		return nil, ValueRef{}, false
	}
	it := l.items[idx]
	return it.cell, it.id, true
}

// ElementID returns the stable identity of the element currently at
// idx, used to build widget identity for for-loop children (spec.md
// §3 "A widget identity is stable ... (p, v1.id, …, vn.id)").
func (l *List) ElementID(idx int) (ValueRef, bool) {
	if idx < 0 || idx >= len(l.items) {
		return ValueRef{}, false
	}
	return l.items[idx].id, true
}

// Insert adds v at idx, allocating a fresh stable element id, and
// notifies list-level subscribers.
func (l *List) Insert(idx int, v Value) ValueRef {
	id := l.graph.allocRef()
	cell := &Scalar{graph: l.graph, ref: id, value: v}
	item := listItem{id: id, cell: cell}
	if idx >= len(l.items) {
		l.items = append(l.items, item)
		idx = len(l.items) - 1
	} else {
		l.items = append(l.items, listItem{})
		copy(l.items[idx+1:], l.items[idx:])
		l.items[idx] = item
	}
	l.graph.enqueue(Change{Ref: l.ref, Kind: ChangeInserted, Index: idx})
	return id
}

// Append is shorthand for Insert at the end.
func (l *List) Append(v Value) ValueRef { return l.Insert(len(l.items), v) }

// Remove deletes the element at idx, notifying list-level subscribers.
func (l *List) Remove(idx int) {
	if idx < 0 || idx >= len(l.items) {
		return
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.graph.enqueue(Change{Ref: l.ref, Kind: ChangeRemoved, Index: idx})
}

// Swap exchanges the elements at i and j in place, preserving each
// element's stable identity, so the evaluator can turn this into a
// single widget-tree swap instead of destroy-and-recreate (spec.md §8
// "Swapping two adjacent elements ... produces exactly one swap").
func (l *List) Swap(i, j int) {
	if i == j || i < 0 || j < 0 || i >= len(l.items) || j >= len(l.items) {
		return
	}
	l.items[i], l.items[j] = l.items[j], l.items[i]
	l.graph.enqueue(Change{Ref: l.ref, Kind: ChangeSwapped, Index: i, Other: j})
}

// Pending returns a non-subscribing handle for traversal.
func (l *List) Pending() PendingValue { return PendingValue{listValue: l} }
