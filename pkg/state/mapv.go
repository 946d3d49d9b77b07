package state

// Map is an observable key → cell store (spec.md §4.6 "Map"). Key-set
// changes (a key appearing or disappearing) notify map-level
// subscribers via the map's own ValueRef; per-key writes notify
// per-cell subscribers via that cell's ValueRef.
type Map struct {
	graph   *Graph
	ref     ValueRef
	entries map[string]*Scalar
	order   []string
}

// NewMap allocates an empty observable map.
func NewMap(g *Graph) *Map {
	return &Map{graph: g, ref: g.allocRef(), entries: map[string]*Scalar{}}
}

// Ref returns the map's own ValueRef (subscribed to for key-set changes).
func (m *Map) Ref() ValueRef { return m.ref }

// Get returns the cell for key, and whether it exists.
func (m *Map) Get(key string) (*Scalar, bool) {
	c, ok := m.entries[key]
	return c, ok
}

// Set writes a value under key, creating the cell (and notifying
// map-level subscribers plus any futures waiting on this key) if it
// didn't already exist, or otherwise just writing through to the
// existing cell.
func (m *Map) Set(key string, v Value) *Scalar {
	if c, ok := m.entries[key]; ok {
		c.Write(v)
		return c
	}
	c := NewScalar(m.graph, v)
	m.entries[key] = c
	m.order = append(m.order, key)
	m.graph.enqueue(Change{Ref: m.ref, Kind: ChangeInserted})
	m.graph.notifyPathAvailable(m.ref, key)
	return c
}

// Delete removes key, if present, notifying map-level subscribers.
func (m *Map) Delete(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.graph.enqueue(Change{Ref: m.ref, Kind: ChangeRemoved})
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Pending returns a non-subscribing handle for traversal.
func (m *Map) Pending() PendingValue { return PendingValue{mapValue: m} }
