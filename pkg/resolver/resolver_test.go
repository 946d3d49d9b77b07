package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/blueprint/pool"
	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
)

func newHarness() (*pool.ExprPool, *resolver.Resolver, *state.Graph, *subscription.Registry) {
	exprs := pool.NewExprPool()
	strs := pool.NewStringPool()
	g := state.NewGraph()
	subs := subscription.New()
	return exprs, resolver.New(exprs, strs, g, subs), g, subs
}

func TestResolvePrimitiveDoesNotSubscribe(t *testing.T) {
	exprs, r, _, subs := newHarness()
	idx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 42})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 1, Gen: 1}, Attr: "x"}

	v, err := r.Resolve(idx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, resolver.EvalStatic, v.Kind)
	assert.Equal(t, int64(42), v.Value().Int)
	assert.Empty(t, subs.Drain(state.NewGraph()))
}

func TestResolveIdentSubscribesToElementCell(t *testing.T) {
	exprs, r, g, subs := newHarness()
	cell := state.NewScalar(g, state.NewInt(7))
	chain := scope.Root(nil).PushIteration("item", ids.ID{Index: 9, Gen: 1}, cell, 0)
	idx := exprs.Add(ast.Expr{Kind: ast.ExprIdent, Ident: "item"})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 1, Gen: 1}, Attr: "text"}

	v, err := r.Resolve(idx, chain, sub, resolver.Immediate)
	require.NoError(t, err)
	require.Equal(t, resolver.EvalCell, v.Kind)
	assert.Equal(t, int64(7), v.Value().Int)

	cell.Write(state.NewInt(8))
	events := subs.Drain(g)
	require.Len(t, events, 1)
	assert.Equal(t, sub, events[0].Subscriber)
}

func TestResolveIdentMissRegistersFuture(t *testing.T) {
	exprs, r, g, subs := newHarness()
	idx := exprs.Add(ast.Expr{Kind: ast.ExprIdent, Ident: "missing"})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 2, Gen: 1}, Attr: "text"}

	v, err := r.Resolve(idx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, resolver.EvalNull, v.Kind)

	subs.ResolveFuture(state.ValueRef{}, "missing")
	events := subs.Drain(g)
	require.Len(t, events, 1)
	assert.Equal(t, subscription.EventFutureHit, events[0].Kind)
}

func TestResolveMapIndexByStringKey(t *testing.T) {
	exprs, r, g, subs := newHarness()
	m := state.NewMap(g)
	m.Set("name", state.NewString("ada"))
	g.DrainChanges() // discard the setup insert

	keyIdx := exprs.Add(ast.Expr{Kind: ast.ExprString, Str: "name"})

	chain := scope.Root(nil)
	sub := subscription.Subscriber{Widget: ids.ID{Index: 3, Gen: 1}, Attr: "name"}

	// The shape an evaluator would build for `state.m.name`:
	// Index(Index(ident("state"), "m"), "name"), where "state" resolves
	// to a Composite exposing the map under field "m".
	composite := state.NewComposite(g)
	composite.Expose("m", m)
	r.CompositeLookup = func(ref state.ValueRef, key string) (any, bool) {
		if ref != composite.Ref() {
			return nil, false
		}
		return composite.Field(key)
	}
	chain = chain.PushComponentState(composite.Ref())

	identIdx := exprs.Add(ast.Expr{Kind: ast.ExprIdent, Ident: "state"})
	fieldKeyIdx := exprs.Add(ast.Expr{Kind: ast.ExprString, Str: "m"})
	mIdx := exprs.Add(ast.Expr{Kind: ast.ExprIndex, A: identIdx, B: fieldKeyIdx})
	finalIdx := exprs.Add(ast.Expr{Kind: ast.ExprIndex, A: mIdx, B: keyIdx})

	v, err := r.Resolve(finalIdx, chain, sub, resolver.Immediate)
	require.NoError(t, err)
	require.Equal(t, resolver.EvalCell, v.Kind)
	assert.Equal(t, "ada", v.Value().Str)

	assert.Empty(t, subs.Drain(g))
}

func TestResolveEitherFallsBackOnNull(t *testing.T) {
	exprs, r, _, _ := newHarness()
	nullIdx := exprs.Add(ast.Expr{Kind: ast.ExprIdent, Ident: "nope"})
	fallbackIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 5})
	eitherIdx := exprs.Add(ast.Expr{Kind: ast.ExprEither, A: nullIdx, B: fallbackIdx})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 4, Gen: 1}, Attr: "x"}

	v, err := r.Resolve(eitherIdx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Value().Int)
}

func TestResolveOpWraps(t *testing.T) {
	exprs, r, _, _ := newHarness()
	aIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 3})
	bIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 4})
	addIdx := exprs.Add(ast.Expr{Kind: ast.ExprOp, Op: ast.Add, A: aIdx, B: bIdx})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 5, Gen: 1}, Attr: "x"}

	v, err := r.Resolve(addIdx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Value().Int)
}

func TestResolveDivisionByZeroYieldsNull(t *testing.T) {
	exprs, r, _, _ := newHarness()
	aIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 1})
	bIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 0})
	divIdx := exprs.Add(ast.Expr{Kind: ast.ExprOp, Op: ast.Div, A: aIdx, B: bIdx})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 6, Gen: 1}, Attr: "x"}

	v, err := r.Resolve(divIdx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, resolver.EvalNull, v.Kind)
}

func TestResolveTextSegmentsInternsIntoStringPool(t *testing.T) {
	exprs, r, _, _ := newHarness()
	litIdx := exprs.Add(ast.Expr{Kind: ast.ExprString, Str: "count: "})
	numIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 3})
	segIdx := exprs.Add(ast.Expr{Kind: ast.ExprTextSegments, Items: []ast.Idx{litIdx, numIdx}})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 7, Gen: 1}, Attr: "text"}

	v, err := r.Resolve(segIdx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	require.Equal(t, resolver.EvalString, v.Kind)
	assert.Equal(t, "count: 3", v.Str)
}

func TestResolveBitOrUnionsFlags(t *testing.T) {
	exprs, r, _, _ := newHarness()
	aIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 0b001})
	bIdx := exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: 0b100})
	orIdx := exprs.Add(ast.Expr{Kind: ast.ExprBitOr, A: aIdx, B: bIdx})
	sub := subscription.Subscriber{Widget: ids.ID{Index: 8, Gen: 1}, Attr: "sides"}

	v, err := r.Resolve(orIdx, scope.Root(nil), sub, resolver.Immediate)
	require.NoError(t, err)
	assert.Equal(t, int64(0b101), v.Value().Int)
}
