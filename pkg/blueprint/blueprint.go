// Package blueprint compiles a parsed statement stream into the
// immutable blueprint tree of spec.md §4.4, and hosts the Document that
// registers component templates and produces (root blueprint, globals)
// pairs for the evaluator.
package blueprint

import (
	"github.com/corvidae/fluxui/internal/template/ast"
)

// Kind discriminates a Blueprint node's shape (spec.md §3 "Blueprint").
type Kind int

const (
	KindNode Kind = iota
	KindFor
	KindIfChain
	KindSwitchChain
	KindComponentInstance
	KindSlotPlacement
	KindWith
	KindDeclaration
)

// IfArm is one arm of an if/else-if/else chain. Cond is ast.NullIdx for
// the trailing unconditional else, if present.
type IfArm struct {
	Cond     ast.Idx
	HasCond  bool
	Children []*Blueprint
}

// CaseArm is one arm of a switch/case/default chain. IsDefault marks
// the fallback arm; switch has no fall-through (spec.md §9 Open
// Question (b)).
type CaseArm struct {
	Cond      ast.Idx
	IsDefault bool
	Children  []*Blueprint
}

// Blueprint is one immutable node in the compiled template tree. Its
// identity within its parent is its position, which is stable across
// identical compiles (spec.md §4.4), and in turn seeds widget identity
// (spec.md §3 invariants).
type Blueprint struct {
	Kind Kind

	// KindNode
	ElementName string
	Attributes  map[string]ast.Idx
	// AttrOrder preserves declaration order for deterministic resolution
	// and re-resolution (spec.md §4.9 "insertion order").
	AttrOrder []string
	Value     ast.Idx
	HasValue  bool
	Children  []*Blueprint

	// KindFor
	ForBinding string
	ForExpr    ast.Idx

	// KindIfChain
	IfArms []IfArm

	// KindSwitchChain
	SwitchExpr ast.Idx
	CaseArms   []CaseArm

	// KindComponentInstance
	ComponentName string
	Associations  []ast.Association
	// Slots maps slot name ("" = default/unnamed slot) to the caller's
	// children assigned to it.
	Slots map[string][]*Blueprint

	// KindSlotPlacement. Children, when present, is caller-supplied
	// content assigned to this slot at a component instantiation site;
	// when nil, this node is the placement itself inside a component's
	// own template (spec.md §4.11 "Slot blueprint").
	SlotName string

	// KindWith
	WithBinding string
	WithExpr    ast.Idx

	// KindDeclaration (let/global)
	DeclName  string
	DeclScope ast.DeclScope
	DeclExpr  ast.Idx
}

