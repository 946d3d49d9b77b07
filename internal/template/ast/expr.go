// Package ast defines the immutable expression and statement trees
// produced by the parser (spec.md §3 "Entities"). Expression is stored
// in the document's constant pool and addressed by index everywhere
// else in the pipeline, per spec.md §4.5.
package ast

// OpKind is an arithmetic binary operator.
type OpKind int

const (
	Add OpKind = iota
	Sub
	Mul
	Div
	Mod
)

// EqualityKind is a comparison operator.
type EqualityKind int

const (
	Eq EqualityKind = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// LogicalKind is a boolean combinator.
type LogicalKind int

const (
	And LogicalKind = iota
	Or
)

// ExprKind discriminates the expression node kinds (spec.md §3); an
// Expr's Kind field says which of its other fields are meaningful.
type ExprKind int

const (
	ExprPrimitiveBool ExprKind = iota
	ExprPrimitiveInt
	ExprPrimitiveFloat
	ExprPrimitiveChar
	ExprPrimitiveHex
	ExprString
	ExprList
	ExprMap
	ExprTextSegments
	ExprIdent
	ExprIndex
	ExprEither
	ExprNot
	ExprNegative
	ExprOp
	ExprEquality
	ExprLogical
	ExprCall
	ExprNull
	ExprBitOr // pipe-joined flag set, e.g. `top | left | bottom`
)

// Expr is an immutable expression tree node. Children are referenced by
// index into the same pool (Idx), never by pointer, so the whole tree
// can be copied cheaply and compared structurally for the
// Compile-is-idempotent property in spec.md §8.
type Expr struct {
	Kind ExprKind

	Bool   bool
	Int    int64
	Float  float64
	Char   rune
	Hex    string // normalized 6-hex-digit string, no leading '#'
	Str    string

	// ExprList / ExprTextSegments / call args: child expression indices.
	Items []Idx

	// ExprMap: parallel key/value slices (Go maps aren't ordered, and
	// map literal key order matters for text-segment reproducibility).
	MapKeys []string
	MapVals []Idx

	Ident string // ExprIdent

	// ExprIndex, ExprEither, ExprOp, ExprEquality, ExprLogical, ExprNot, ExprNegative
	A, B Idx

	Op       OpKind
	Equality EqualityKind
	Logical  LogicalKind

	CallFn   string
	CallArgs []Idx
}

// Idx is an index into a Pool's expression slice. The zero value never
// denotes a valid expression; pools reserve index 0 for ExprNull.
type Idx int

const NullIdx Idx = 0
