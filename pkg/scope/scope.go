// Package scope implements the layered name-resolution chain of
// spec.md §4.8: an ordered stack of frames walked newest-to-oldest,
// backing the `for`-binding, `let`-binding, `state`, `attributes`, and
// global identifiers a template expression can reference.
package scope

import (
	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/state"
)

// FrameKind discriminates the five frame shapes of spec.md §4.8.
type FrameKind int

const (
	FrameIteration FrameKind = iota
	FrameLet
	FrameComponentState
	FrameComponentAttributes
	FrameRoot
)

// Frame is one layer of the chain. Exactly the fields matching Kind are
// meaningful.
type Frame struct {
	Kind FrameKind

	// FrameIteration: binding_name resolves to the element's cell
	// (ElementCell, readable/subscribable) and ElementRef (its stable
	// identity, used to build widget identity per spec.md §3). Index is
	// the implicit loop position exposed alongside it (spec.md §4.8 "an
	// implicit index may be exposed").
	Binding     string
	ElementRef  state.ValueRef
	ElementCell *state.Scalar
	Index       int

	// FrameLet: Name resolves to Expr, evaluated lazily by the resolver
	// in the scope this frame was captured in (spec.md §4.9 "a deferred
	// expression to evaluate in the caller's scope").
	Name string
	Expr ast.Idx

	// FrameComponentState / FrameComponentAttributes
	Ref state.ValueRef

	// FrameRoot: every global declaration collected by the blueprint
	// builder, keyed by name (spec.md §4.8 "Root(globals)").
	Globals map[string]ast.Idx
}

// Binding is what Lookup returns: exactly one of the fields below is
// populated, discriminated by Kind.
type BindingKind int

const (
	BindElement BindingKind = iota
	BindIndex
	BindDeferred
	BindState
	BindAttributes
)

type Binding struct {
	Kind BindingKind

	ElementRef  state.ValueRef  // BindElement
	ElementCell *state.Scalar   // BindElement
	Index       int             // BindIndex

	// BindDeferred: the expression to evaluate, and the chain it should
	// be evaluated against (its defining scope, not the lookup site's).
	Expr  ast.Idx
	Scope *Chain

	Ref state.ValueRef // BindState, BindAttributes
}

// Chain is an immutable, persistent stack of frames: Push returns a new
// Chain sharing the tail, so a scope captured by a closure (e.g. a
// Let-binding's defining scope) stays valid after the caller pushes
// more frames on top of its own copy.
type Chain struct {
	frame *Frame
	up    *Chain
}

// Root returns a Chain containing only a FrameRoot carrying globals.
func Root(globals map[string]ast.Idx) *Chain {
	return &Chain{frame: &Frame{Kind: FrameRoot, Globals: globals}}
}

// Push returns a new chain with f on top of c. c itself is unmodified.
func (c *Chain) Push(f Frame) *Chain {
	return &Chain{frame: &f, up: c}
}

// PushIteration pushes an Iteration frame.
func (c *Chain) PushIteration(binding string, ref state.ValueRef, cell *state.Scalar, index int) *Chain {
	return c.Push(Frame{Kind: FrameIteration, Binding: binding, ElementRef: ref, ElementCell: cell, Index: index})
}

// PushLet pushes a Let frame capturing the scope it should be evaluated
// against (normally c itself, the scope it's declared in).
func (c *Chain) PushLet(name string, expr ast.Idx) *Chain {
	return c.Push(Frame{Kind: FrameLet, Name: name, Expr: expr})
}

// PushComponentState pushes a ComponentState frame.
func (c *Chain) PushComponentState(ref state.ValueRef) *Chain {
	return c.Push(Frame{Kind: FrameComponentState, Ref: ref})
}

// PushComponentAttributes pushes a ComponentAttributes frame.
func (c *Chain) PushComponentAttributes(ref state.ValueRef) *Chain {
	return c.Push(Frame{Kind: FrameComponentAttributes, Ref: ref})
}

// Lookup walks the chain newest-to-oldest and resolves name to a
// Binding, or reports ok=false if no frame claims it (the caller should
// then register a future subscription, per spec.md §4.9 "a miss
// registers a future against the ident path").
func (c *Chain) Lookup(name string) (Binding, bool) {
	for cur := c; cur != nil; cur = cur.up {
		f := cur.frame
		switch f.Kind {
		case FrameIteration:
			if name == f.Binding {
				return Binding{Kind: BindElement, ElementRef: f.ElementRef, ElementCell: f.ElementCell}, true
			}
			if name == "index" {
				return Binding{Kind: BindIndex, Index: f.Index}, true
			}
		case FrameLet:
			if name == f.Name {
				return Binding{Kind: BindDeferred, Expr: f.Expr, Scope: cur.up}, true
			}
		case FrameComponentState:
			if name == "state" {
				return Binding{Kind: BindState, Ref: f.Ref}, true
			}
		case FrameComponentAttributes:
			if name == "attributes" {
				return Binding{Kind: BindAttributes, Ref: f.Ref}, true
			}
		case FrameRoot:
			if expr, ok := f.Globals[name]; ok {
				return Binding{Kind: BindDeferred, Expr: expr, Scope: cur}, true
			}
		}
	}
	return Binding{}, false
}
