package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/state"
)

func TestValueEqualComparesByKindAndPayload(t *testing.T) {
	assert.True(t, state.NewInt(3).Equal(state.NewInt(3)))
	assert.False(t, state.NewInt(3).Equal(state.NewInt(4)))
	assert.False(t, state.NewInt(3).Equal(state.NewString("3")))
	assert.True(t, state.Null.Equal(state.Value{}))
}

func TestValueEqualForListAndMapComparesIdentity(t *testing.T) {
	g := state.NewGraph()
	l1 := state.NewList(g)
	l2 := state.NewList(g)
	assert.True(t, state.ValueFromList(l1).Equal(state.ValueFromList(l1)))
	assert.False(t, state.ValueFromList(l1).Equal(state.ValueFromList(l2)))
}

func TestScalarWriteOnlyEnqueuesChangeWhenValueDiffers(t *testing.T) {
	g := state.NewGraph()
	s := state.NewScalar(g, state.NewInt(1))

	s.Write(state.NewInt(1))
	assert.Empty(t, g.DrainChanges())

	s.Write(state.NewInt(2))
	changes := g.DrainChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, s.Ref(), changes[0].Ref)
	assert.Equal(t, state.ChangeModified, changes[0].Kind)
	assert.Equal(t, state.NewInt(2), s.Read())
}

func TestScalarPendingReadsWithoutSubscribing(t *testing.T) {
	g := state.NewGraph()
	s := state.NewScalar(g, state.NewString("a"))

	p := s.Pending()
	assert.True(t, p.IsValid())
	assert.Equal(t, state.NewString("a"), p.Read())
	assert.Equal(t, s.Ref(), p.Ref())

	scalar, ok := p.AsScalar()
	assert.True(t, ok)
	assert.Same(t, s, scalar)
}

func TestListInsertAppendRemoveSwapTrackStableIdentity(t *testing.T) {
	g := state.NewGraph()
	l := state.NewList(g)

	idA := l.Append(state.NewString("a"))
	idB := l.Append(state.NewString("b"))
	require.Equal(t, 2, l.Len())

	g.DrainChanges() // discard the two insert changes

	l.Swap(0, 1)
	changes := g.DrainChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, state.ChangeSwapped, changes[0].Kind)

	firstID, ok := l.ElementID(0)
	require.True(t, ok)
	assert.Equal(t, idB, firstID)
	secondID, ok := l.ElementID(1)
	require.True(t, ok)
	assert.Equal(t, idA, secondID)

	l.Remove(0)
	assert.Equal(t, 1, l.Len())
	remainingID, ok := l.ElementID(0)
	require.True(t, ok)
	assert.Equal(t, idA, remainingID)
}

func TestListInsertAtIndexShiftsLaterElements(t *testing.T) {
	g := state.NewGraph()
	l := state.NewList(g)
	l.Append(state.NewInt(1))
	l.Append(state.NewInt(3))
	l.Insert(1, state.NewInt(2))

	require.Equal(t, 3, l.Len())
	for i, want := range []int64{1, 2, 3} {
		cell, _, ok := l.Get(i)
		require.True(t, ok)
		assert.Equal(t, state.NewInt(want), cell.Read())
	}
}

func TestListGetOutOfRangeReturnsFalse(t *testing.T) {
	g := state.NewGraph()
	l := state.NewList(g)
	_, _, ok := l.Get(0)
	assert.False(t, ok)
}

func TestMapSetCreatesCellOnceAndNotifiesFutureResolverOnFirstInsert(t *testing.T) {
	g := state.NewGraph()
	rec := &recordingResolver{}
	g.SetFutureResolver(rec)
	m := state.NewMap(g)

	cell := m.Set("name", state.NewString("ada"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, m.Ref(), rec.calls[0].owner)
	assert.Equal(t, "name", rec.calls[0].key)

	same, ok := m.Get("name")
	require.True(t, ok)
	assert.Same(t, cell, same)

	m.Set("name", state.NewString("grace"))
	assert.Len(t, rec.calls, 1) // no second future-resolve on overwrite
	assert.Equal(t, state.NewString("grace"), cell.Read())
}

func TestMapDeleteRemovesKeyAndPreservesInsertionOrderOfSurvivors(t *testing.T) {
	g := state.NewGraph()
	m := state.NewMap(g)
	m.Set("a", state.NewInt(1))
	m.Set("b", state.NewInt(2))
	m.Set("c", state.NewInt(3))

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())

	_, ok := m.Get("b")
	assert.False(t, ok)
}

func TestCompositeExposeRegistersFieldsInOrder(t *testing.T) {
	g := state.NewGraph()
	c := state.NewComposite(g)
	count := state.NewScalar(g, state.NewInt(0))
	c.Expose("count", count)
	c.Expose("label", state.NewScalar(g, state.NewString("x")))

	assert.Equal(t, []string{"count", "label"}, c.FieldNames())

	field, ok := c.Field("count")
	require.True(t, ok)
	assert.Same(t, count, field)

	_, ok = c.Field("missing")
	assert.False(t, ok)
}

func TestCompositeExposeRejectsUnsupportedFieldType(t *testing.T) {
	g := state.NewGraph()
	c := state.NewComposite(g)
	assert.Panics(t, func() { c.Expose("bad", 42) })
}

type recordingResolver struct {
	calls []struct {
		owner state.ValueRef
		key   string
	}
}

func (r *recordingResolver) ResolveFuture(owner state.ValueRef, key string) {
	r.calls = append(r.calls, struct {
		owner state.ValueRef
		key   string
	}{owner, key})
}
