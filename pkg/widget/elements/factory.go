// Package elements is the illustrative element catalogue named in
// spec.md §4.11's "consult the element factory": concrete widget
// painting is out of scope for the core pipeline, but fluxui ships
// enough of a catalogue to exercise the factory contract end to end
// without claiming the full widget set spec.md marks out of scope.
package elements

import "fmt"

// Factory implements pkg/evaluator.ElementFactory (structurally; this
// package intentionally does not import pkg/evaluator to avoid pulling
// the evaluation layer into the element catalogue). Register extends
// the catalogue beyond the three built-ins for callers that ship their
// own elements.
type Factory struct {
	ctors map[string]func() any
}

// NewFactory returns a Factory pre-registered with the built-in "text",
// "box" and "input" elements.
func NewFactory() *Factory {
	f := &Factory{ctors: map[string]func() any{}}
	f.Register("text", func() any { return NewText() })
	f.Register("box", func() any { return NewBox() })
	f.Register("input", func() any { return NewInput() })
	return f
}

// Register adds or replaces the constructor for an element name.
func (f *Factory) Register(name string, ctor func() any) {
	f.ctors[name] = ctor
}

// Create instantiates a fresh element instance for name.
func (f *Factory) Create(name string) (any, error) {
	ctor, ok := f.ctors[name]
	if !ok {
		return nil, fmt.Errorf("elements: unknown element %q", name)
	}
	return ctor(), nil
}
