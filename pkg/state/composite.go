package state

// Composite is a user-defined state object exposing named fields, each
// a Scalar, Map, List, or nested Composite (spec.md §4.6 "Composite").
// It is the backing store a component's `state` identifier resolves
// to (spec.md §4.8 "ComponentState").
type Composite struct {
	graph  *Graph
	ref    ValueRef
	fields map[string]any
	order  []string
}

// NewComposite allocates an empty composite state object.
func NewComposite(g *Graph) *Composite {
	return &Composite{graph: g, ref: g.allocRef(), fields: map[string]any{}}
}

// Ref returns the composite's own ValueRef.
func (c *Composite) Ref() ValueRef { return c.ref }

// Expose registers a named field. field must be *Scalar, *Map, *List,
// or *Composite.
func (c *Composite) Expose(name string, field any) {
	switch field.(type) {
	case *Scalar, *Map, *List, *Composite:
	default:
		panic("state: Composite.Expose requires *Scalar, *Map, *List, or *Composite")
	}
	if _, exists := c.fields[name]; !exists {
		c.order = append(c.order, name)
	}
	c.fields[name] = field
}

// Field returns the named field and whether it was registered.
func (c *Composite) Field(name string) (any, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// FieldNames returns every exposed field name in registration order.
func (c *Composite) FieldNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
