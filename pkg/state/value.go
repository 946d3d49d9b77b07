// Package state implements the observable, typed value store of
// spec.md §4.6: scalar cells, maps, and lists with stable per-element
// identity, plus a per-frame change buffer that subscribers drain from
// at most once per frame.
package state

import "github.com/corvidae/fluxui/pkg/ids"

// ValueRef stably identifies one live value in the graph (spec.md §3
// "Live-value ... identified by a stable ValueRef").
type ValueRef = ids.ID

// Kind is the value-kind enumeration from spec.md §3.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindChar
	KindInt
	KindFloat
	KindHex
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindHex:
		return "hex"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a tagged union over every scalar/composite shape the
// resolver can produce (spec.md §3 "Value-kind"). Exactly the fields
// matching Kind are meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Char  rune
	Int   int64
	Float float64
	Hex   string
	Str   string
	List  *List
	Map   *Map
}

// Null is the zero Value.
var Null = Value{Kind: KindNull}

func NewBool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func NewChar(c rune) Value     { return Value{Kind: KindChar, Char: c} }
func NewInt(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func NewHex(h string) Value    { return Value{Kind: KindHex, Hex: h} }
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }
func ValueFromList(l *List) Value { return Value{Kind: KindList, List: l} }
func ValueFromMap(m *Map) Value   { return Value{Kind: KindMap, Map: m} }

// Equal reports value equality used by Scalar.Write to decide whether
// a write actually changes the cell (spec.md §4.6 "if new != old").
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindChar:
		return v.Char == o.Char
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindHex:
		return v.Hex == o.Hex
	case KindString:
		return v.Str == o.Str
	case KindList, KindMap:
		return v.List == o.List && v.Map == o.Map
	default:
		return true // Null == Null
	}
}
