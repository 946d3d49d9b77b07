package state

// Scalar is a single observable typed cell (spec.md §4.6 "Scalar
// cell"). Write notifies subscribers (via the graph's change buffer)
// only when the new value differs from the old one.
type Scalar struct {
	graph *Graph
	ref   ValueRef
	value Value
}

// NewScalar allocates a Scalar with an initial value.
func NewScalar(g *Graph, initial Value) *Scalar {
	return &Scalar{graph: g, ref: g.allocRef(), value: initial}
}

// Ref returns the cell's stable ValueRef.
func (s *Scalar) Ref() ValueRef { return s.ref }

// Read returns the current value. Reading never subscribes by itself —
// subscription is the value resolver's responsibility once it knows
// which attribute is asking (spec.md §4.9).
func (s *Scalar) Read() Value { return s.value }

// Write updates the cell, enqueuing a change record iff the value
// actually differs from the one currently stored.
func (s *Scalar) Write(v Value) {
	if s.value.Equal(v) {
		return
	}
	s.value = v
	s.graph.enqueue(Change{Ref: s.ref, Kind: ChangeModified})
}

// Pending returns a non-subscribing read-only projection, for use by
// the scope chain and resolver when walking a path speculatively
// (spec.md §3 "PendingValue").
func (s *Scalar) Pending() PendingValue { return PendingValue{scalar: s} }

// PendingValue is a read-only handle that never subscribes. Whatever
// asked for it is expected to separately call the subscription
// registry if it wants to be notified of future changes (spec.md §4.9).
type PendingValue struct {
	scalar    *Scalar
	mapValue  *Map
	listValue *List
}

// IsValid reports whether the handle actually wraps a live value.
func (p PendingValue) IsValid() bool {
	return p.scalar != nil || p.mapValue != nil || p.listValue != nil
}

// Read returns the underlying scalar's current value, or Null if this
// handle doesn't wrap a scalar.
func (p PendingValue) Read() Value {
	if p.scalar != nil {
		return p.scalar.Read()
	}
	if p.mapValue != nil {
		return ValueFromMap(p.mapValue)
	}
	if p.listValue != nil {
		return ValueFromList(p.listValue)
	}
	return Null
}

// Ref returns the ValueRef of whichever live value this handle wraps.
func (p PendingValue) Ref() ValueRef {
	switch {
	case p.scalar != nil:
		return p.scalar.Ref()
	case p.mapValue != nil:
		return p.mapValue.Ref()
	case p.listValue != nil:
		return p.listValue.Ref()
	default:
		return ValueRef{}
	}
}

// AsMap returns the wrapped Map, if any.
func (p PendingValue) AsMap() (*Map, bool) { return p.mapValue, p.mapValue != nil }

// AsList returns the wrapped List, if any.
func (p PendingValue) AsList() (*List, bool) { return p.listValue, p.listValue != nil }

// AsScalar returns the wrapped Scalar, if any.
func (p PendingValue) AsScalar() (*Scalar, bool) { return p.scalar, p.scalar != nil }
