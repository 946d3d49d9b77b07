// Package resolver implements the value resolver of spec.md §4.9: it
// walks an expression tree against a scope chain and the state graph,
// producing an EvalValue while registering exactly the subscriptions
// that expression touched.
package resolver

import (
	"strconv"
	"strings"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/blueprint/pool"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
)

// Mode controls whether a lookup miss registers a future subscription.
// Immediate is used when resolving an attribute for display, where a
// miss should make the attribute re-evaluate once the path resolves.
// Deferred is used for speculative resolution (e.g. inspecting a value
// without owning its subscriber identity) where registering a future
// would attribute it to the wrong subscriber.
type Mode int

const (
	Immediate Mode = iota
	Deferred
)

// EvalKind discriminates the shapes an expression can resolve to
// (spec.md §4.9 "static-literal, dyn-cell-handle, pending-handle,
// expr-list, expr-map ... or null").
type EvalKind int

const (
	EvalNull EvalKind = iota
	EvalStatic
	EvalCell
	EvalPendingList
	EvalPendingMap
	EvalList
	EvalMap
	EvalString
)

// EvalValue is the resolver's output. Exactly the fields matching Kind
// are meaningful.
type EvalValue struct {
	Kind EvalKind

	Static state.Value // EvalStatic

	Cell *state.Scalar // EvalCell: the live cell this value names

	List *state.List // EvalPendingList: unsubscribed container handle
	Map  *state.Map  // EvalPendingMap: unsubscribed container handle

	Items   []EvalValue // EvalList
	MapKeys []string    // EvalMap
	MapVals []EvalValue // EvalMap

	Str     string          // EvalString: the resolved text
	StrIdx  pool.StrIndex   // EvalString: its interned pool index
}

// Value reduces an EvalValue down to the state.Value it currently
// represents, for arithmetic/comparison/display. Containers reduce to
// their wrapping Value; Null/unset reduce to state.Null.
func (e EvalValue) Value() state.Value {
	switch e.Kind {
	case EvalStatic:
		return e.Static
	case EvalCell:
		return e.Cell.Read()
	case EvalPendingList:
		return state.ValueFromList(e.List)
	case EvalPendingMap:
		return state.ValueFromMap(e.Map)
	case EvalString:
		return state.NewString(e.Str)
	default:
		return state.Null
	}
}

// CompositeLookupFunc resolves a field by name on the Composite
// identified by ref. The resolver itself holds no ValueRef -> object
// table (the state graph only allocates identities, spec.md §4.6); the
// evaluator, which does own that table, wires it in via
// Resolver.CompositeLookup.
type CompositeLookupFunc func(ref state.ValueRef, key string) (any, bool)

// Resolver evaluates expressions out of a document's pools against a
// live state graph and subscription registry (spec.md §4.9).
type Resolver struct {
	Exprs   *pool.ExprPool
	Strings *pool.StringPool
	Graph   *state.Graph
	Subs    *subscription.Registry

	// CompositeLookup resolves `state.field` / `attributes.field` access.
	// Nil until the owning evaluator wires it in.
	CompositeLookup CompositeLookupFunc
}

// New returns a Resolver bound to the given pools, graph and registry.
func New(exprs *pool.ExprPool, strs *pool.StringPool, g *state.Graph, subs *subscription.Registry) *Resolver {
	return &Resolver{Exprs: exprs, Strings: strs, Graph: g, Subs: subs}
}

// Resolve evaluates the expression at idx against sc, registering
// subscriptions for sub against every cell the evaluation actually
// touched (spec.md §4.9).
func (r *Resolver) Resolve(idx ast.Idx, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	e := r.Exprs.Get(idx)
	switch e.Kind {
	case ast.ExprNull:
		return EvalValue{Kind: EvalNull}, nil
	case ast.ExprPrimitiveBool:
		return EvalValue{Kind: EvalStatic, Static: state.NewBool(e.Bool)}, nil
	case ast.ExprPrimitiveInt:
		return EvalValue{Kind: EvalStatic, Static: state.NewInt(e.Int)}, nil
	case ast.ExprPrimitiveFloat:
		return EvalValue{Kind: EvalStatic, Static: state.NewFloat(e.Float)}, nil
	case ast.ExprPrimitiveChar:
		return EvalValue{Kind: EvalStatic, Static: state.NewChar(e.Char)}, nil
	case ast.ExprPrimitiveHex:
		return EvalValue{Kind: EvalStatic, Static: state.NewHex(e.Hex)}, nil
	case ast.ExprString:
		return EvalValue{Kind: EvalStatic, Static: state.NewString(e.Str)}, nil

	case ast.ExprList:
		items := make([]EvalValue, len(e.Items))
		for i, childIdx := range e.Items {
			v, err := r.Resolve(childIdx, sc, sub, mode)
			if err != nil {
				return EvalValue{}, err
			}
			items[i] = v
		}
		return EvalValue{Kind: EvalList, Items: items}, nil

	case ast.ExprMap:
		vals := make([]EvalValue, len(e.MapVals))
		for i, childIdx := range e.MapVals {
			v, err := r.Resolve(childIdx, sc, sub, mode)
			if err != nil {
				return EvalValue{}, err
			}
			vals[i] = v
		}
		keys := make([]string, len(e.MapKeys))
		copy(keys, e.MapKeys)
		return EvalValue{Kind: EvalMap, MapKeys: keys, MapVals: vals}, nil

	case ast.ExprTextSegments:
		txn := r.Strings.Begin()
		for _, segIdx := range e.Items {
			v, err := r.Resolve(segIdx, sc, sub, mode)
			if err != nil {
				return EvalValue{}, err
			}
			txn.WriteString(stringify(v.Value()))
		}
		strIdx := txn.Commit()
		return EvalValue{Kind: EvalString, Str: r.Strings.Get(strIdx), StrIdx: strIdx}, nil

	case ast.ExprIdent:
		return r.resolveIdent(e.Ident, sc, sub, mode)

	case ast.ExprIndex:
		return r.resolveIndex(e.A, e.B, sc, sub, mode)

	case ast.ExprEither:
		a, err := r.Resolve(e.A, sc, sub, mode)
		if err != nil {
			return EvalValue{}, err
		}
		if a.Kind != EvalNull {
			return a, nil
		}
		return r.Resolve(e.B, sc, sub, mode)

	case ast.ExprNot:
		a, err := r.Resolve(e.A, sc, sub, mode)
		if err != nil {
			return EvalValue{}, err
		}
		return EvalValue{Kind: EvalStatic, Static: state.NewBool(!truthy(a.Value()))}, nil

	case ast.ExprNegative:
		a, err := r.Resolve(e.A, sc, sub, mode)
		if err != nil {
			return EvalValue{}, err
		}
		v := a.Value()
		if v.Kind == state.KindFloat {
			return EvalValue{Kind: EvalStatic, Static: state.NewFloat(-v.Float)}, nil
		}
		return EvalValue{Kind: EvalStatic, Static: state.NewInt(-v.Int)}, nil

	case ast.ExprOp:
		return r.resolveOp(e, sc, sub, mode)

	case ast.ExprEquality:
		return r.resolveEquality(e, sc, sub, mode)

	case ast.ExprLogical:
		return r.resolveLogical(e, sc, sub, mode)

	case ast.ExprBitOr:
		a, err := r.Resolve(e.A, sc, sub, mode)
		if err != nil {
			return EvalValue{}, err
		}
		b, err := r.Resolve(e.B, sc, sub, mode)
		if err != nil {
			return EvalValue{}, err
		}
		return EvalValue{Kind: EvalStatic, Static: state.NewInt(a.Value().Int | b.Value().Int)}, nil

	case ast.ExprCall:
		// Reserved for future extension (spec.md §4.9 "Call ... presently
		// returns null").
		return EvalValue{Kind: EvalNull}, nil

	default:
		return EvalValue{Kind: EvalNull}, nil
	}
}

func (r *Resolver) resolveIdent(name string, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	b, ok := sc.Lookup(name)
	if !ok {
		if mode == Immediate {
			r.Subs.RegisterFuture(state.ValueRef{}, name, sub)
		}
		return EvalValue{Kind: EvalNull}, nil
	}
	switch b.Kind {
	case scope.BindElement:
		r.Subs.Subscribe(b.ElementCell.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: b.ElementCell}, nil
	case scope.BindIndex:
		return EvalValue{Kind: EvalStatic, Static: state.NewInt(int64(b.Index))}, nil
	case scope.BindState, scope.BindAttributes:
		// `state`/`attributes` name a composite; callers index into it via
		// Index(ident, key), handled in resolveIndex by special-casing an
		// ExprIdent source that resolved to one of these bind kinds. Return
		// a sentinel EvalCell-less static null here; resolveIndex re-walks
		// the ident itself rather than relying on this return value.
		return EvalValue{Kind: EvalNull}, nil
	case scope.BindDeferred:
		return r.Resolve(b.Expr, b.Scope, sub, mode)
	default:
		return EvalValue{Kind: EvalNull}, nil
	}
}

// resolveIndex resolves Index(src, key) where key is either a string
// literal expression (dot-desugared field access) or an arbitrary
// expression (bracket indexing), per spec.md §4.9.
func (r *Resolver) resolveIndex(srcIdx, keyIdx ast.Idx, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	// state/attributes are Composites, not state.Map/List; special-case
	// an ident source naming one of them so field access reaches the
	// Composite's exposed fields directly.
	srcExpr := r.Exprs.Get(srcIdx)
	if srcExpr.Kind == ast.ExprIdent {
		if b, ok := sc.Lookup(srcExpr.Ident); ok && (b.Kind == scope.BindState || b.Kind == scope.BindAttributes) {
			key := r.keyString(keyIdx, sc, sub, mode)
			return r.resolveCompositeField(b.Ref, key, sub)
		}
	}

	src, err := r.Resolve(srcIdx, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}

	switch src.Kind {
	case EvalPendingMap:
		key := r.keyString(keyIdx, sc, sub, mode)
		cell, ok := src.Map.Get(key)
		if !ok {
			r.Subs.Subscribe(src.Map.Ref(), sub)
			if mode == Immediate {
				r.Subs.RegisterFuture(src.Map.Ref(), key, sub)
			}
			return EvalValue{Kind: EvalNull}, nil
		}
		r.Subs.Subscribe(cell.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: cell}, nil

	case EvalPendingList:
		key := r.keyInt(keyIdx, sc, sub, mode)
		cell, _, ok := src.List.Get(int(key))
		if !ok {
			r.Subs.Subscribe(src.List.Ref(), sub)
			return EvalValue{Kind: EvalNull}, nil
		}
		r.Subs.Subscribe(cell.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: cell}, nil

	case EvalCell:
		return r.resolveStaticIndex(src.Cell.Read(), keyIdx, sc, sub, mode)

	case EvalStatic:
		return r.resolveStaticIndex(src.Static, keyIdx, sc, sub, mode)

	default:
		return EvalValue{Kind: EvalNull}, nil
	}
}

func (r *Resolver) resolveStaticIndex(v state.Value, keyIdx ast.Idx, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	switch v.Kind {
	case state.KindMap:
		key := r.keyString(keyIdx, sc, sub, mode)
		cell, ok := v.Map.Get(key)
		if !ok {
			r.Subs.Subscribe(v.Map.Ref(), sub)
			if mode == Immediate {
				r.Subs.RegisterFuture(v.Map.Ref(), key, sub)
			}
			return EvalValue{Kind: EvalNull}, nil
		}
		r.Subs.Subscribe(cell.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: cell}, nil
	case state.KindList:
		key := r.keyInt(keyIdx, sc, sub, mode)
		cell, _, ok := v.List.Get(int(key))
		if !ok {
			r.Subs.Subscribe(v.List.Ref(), sub)
			return EvalValue{Kind: EvalNull}, nil
		}
		r.Subs.Subscribe(cell.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: cell}, nil
	default:
		return EvalValue{Kind: EvalNull}, nil
	}
}

func (r *Resolver) resolveCompositeField(ref state.ValueRef, key string, sub subscription.Subscriber) (EvalValue, error) {
	r.Subs.Subscribe(ref, sub)
	field, ok := r.compositeLookup(ref, key)
	if !ok {
		return EvalValue{Kind: EvalNull}, nil
	}
	switch f := field.(type) {
	case *state.Scalar:
		r.Subs.Subscribe(f.Ref(), sub)
		return EvalValue{Kind: EvalCell, Cell: f}, nil
	case *state.Map:
		// also subscribe to the map's own ref, not just the owning
		// composite's: Set/Delete enqueue changes keyed to the map
		// itself (spec.md §4.6), so a `state.m` for-head or bare
		// reference needs both to see a structural edit.
		r.Subs.Subscribe(f.Ref(), sub)
		return EvalValue{Kind: EvalPendingMap, Map: f}, nil
	case *state.List:
		r.Subs.Subscribe(f.Ref(), sub)
		return EvalValue{Kind: EvalPendingList, List: f}, nil
	case *state.Composite:
		return EvalValue{Kind: EvalNull}, nil
	default:
		return EvalValue{Kind: EvalNull}, nil
	}
}

// compositeLookup is overridden by the evaluator, which owns the
// ValueRef -> *state.Composite registry; the resolver itself has no
// such table since the state graph only allocates identities, not a
// reverse index of live objects (spec.md §4.6). Set via
// Resolver.CompositeLookup before use.
func (r *Resolver) compositeLookup(ref state.ValueRef, key string) (any, bool) {
	if r.CompositeLookup == nil {
		return nil, false
	}
	return r.CompositeLookup(ref, key)
}

func (r *Resolver) keyString(keyIdx ast.Idx, sc *scope.Chain, sub subscription.Subscriber, mode Mode) string {
	v, err := r.Resolve(keyIdx, sc, sub, mode)
	if err != nil {
		return ""
	}
	return stringify(v.Value())
}

func (r *Resolver) keyInt(keyIdx ast.Idx, sc *scope.Chain, sub subscription.Subscriber, mode Mode) int64 {
	v, err := r.Resolve(keyIdx, sc, sub, mode)
	if err != nil {
		return 0
	}
	val := v.Value()
	if val.Kind == state.KindString {
		n, _ := strconv.ParseInt(val.Str, 10, 64)
		return n
	}
	return val.Int
}

func (r *Resolver) resolveOp(e ast.Expr, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	a, err := r.Resolve(e.A, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	b, err := r.Resolve(e.B, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	av, bv := a.Value(), b.Value()
	useFloat := av.Kind == state.KindFloat || bv.Kind == state.KindFloat
	if useFloat {
		fa, fb := toFloat(av), toFloat(bv)
		var out float64
		switch e.Op {
		case ast.Add:
			out = fa + fb
		case ast.Sub:
			out = fa - fb
		case ast.Mul:
			out = fa * fb
		case ast.Div:
			if fb == 0 {
				return EvalValue{Kind: EvalNull}, nil
			}
			out = fa / fb
		case ast.Mod:
			if fb == 0 {
				return EvalValue{Kind: EvalNull}, nil
			}
			out = float64(int64(fa) % int64(fb))
		}
		return EvalValue{Kind: EvalStatic, Static: state.NewFloat(out)}, nil
	}
	ia, ib := av.Int, bv.Int
	var out int64
	switch e.Op {
	case ast.Add:
		out = ia + ib // wraps on overflow, matching int64 native semantics
	case ast.Sub:
		out = ia - ib
	case ast.Mul:
		out = ia * ib
	case ast.Div:
		if ib == 0 {
			return EvalValue{Kind: EvalNull}, nil
		}
		out = ia / ib
	case ast.Mod:
		if ib == 0 {
			return EvalValue{Kind: EvalNull}, nil
		}
		out = ia % ib
	}
	return EvalValue{Kind: EvalStatic, Static: state.NewInt(out)}, nil
}

func (r *Resolver) resolveEquality(e ast.Expr, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	a, err := r.Resolve(e.A, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	b, err := r.Resolve(e.B, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	av, bv := a.Value(), b.Value()
	cmp := compare(av, bv)
	var result bool
	switch e.Equality {
	case ast.Eq:
		result = cmp == 0
	case ast.Neq:
		result = cmp != 0
	case ast.Lt:
		result = cmp < 0
	case ast.Lte:
		result = cmp <= 0
	case ast.Gt:
		result = cmp > 0
	case ast.Gte:
		result = cmp >= 0
	}
	return EvalValue{Kind: EvalStatic, Static: state.NewBool(result)}, nil
}

func (r *Resolver) resolveLogical(e ast.Expr, sc *scope.Chain, sub subscription.Subscriber, mode Mode) (EvalValue, error) {
	a, err := r.Resolve(e.A, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	if e.Logical == ast.And && !truthy(a.Value()) {
		return EvalValue{Kind: EvalStatic, Static: state.NewBool(false)}, nil
	}
	if e.Logical == ast.Or && truthy(a.Value()) {
		return EvalValue{Kind: EvalStatic, Static: state.NewBool(true)}, nil
	}
	b, err := r.Resolve(e.B, sc, sub, mode)
	if err != nil {
		return EvalValue{}, err
	}
	return EvalValue{Kind: EvalStatic, Static: state.NewBool(truthy(b.Value()))}, nil
}

func truthy(v state.Value) bool {
	switch v.Kind {
	case state.KindBool:
		return v.Bool
	case state.KindNull:
		return false
	default:
		return true
	}
}

func toFloat(v state.Value) float64 {
	if v.Kind == state.KindFloat {
		return v.Float
	}
	return float64(v.Int)
}

// compare returns -1/0/1 comparing normalized common values (spec.md
// §4.9 "equality compares by normalized common value").
func compare(a, b state.Value) int {
	if a.Kind == state.KindFloat || b.Kind == state.KindFloat {
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	if a.Kind == state.KindString || b.Kind == state.KindString {
		return strings.Compare(stringify(a), stringify(b))
	}
	if a.Equal(b) {
		return 0
	}
	ia, ib := a.Int, b.Int
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}

// stringify renders v the way a text-segment interpolation would.
func stringify(v state.Value) string {
	switch v.Kind {
	case state.KindString:
		return v.Str
	case state.KindBool:
		return strconv.FormatBool(v.Bool)
	case state.KindChar:
		return string(v.Char)
	case state.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case state.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case state.KindHex:
		return "#" + v.Hex
	case state.KindNull:
		return ""
	default:
		return ""
	}
}
