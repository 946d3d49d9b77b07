package widget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/widget"
)

func TestIdentityKeyDistinguishesPositionAndElems(t *testing.T) {
	a := widget.Identity{Pos: 1, Elems: []ids.ID{{Index: 1, Gen: 1}}}
	b := widget.Identity{Pos: 1, Elems: []ids.ID{{Index: 2, Gen: 1}}}
	c := widget.Identity{Pos: 2, Elems: []ids.ID{{Index: 1, Gen: 1}}}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, a.Key(), widget.Identity{Pos: 1, Elems: []ids.ID{{Index: 1, Gen: 1}}}.Key())
}

func TestChildDerivesNestedIdentity(t *testing.T) {
	root := widget.Identity{Pos: 0}
	elem := ids.ID{Index: 5, Gen: 2}
	child := root.Child(3, elem)

	assert.Equal(t, 3, child.Pos)
	require.Len(t, child.Elems, 1)
	assert.Equal(t, elem, child.Elems[0])
}

func TestCursorInsertRemoveSwap(t *testing.T) {
	tree := widget.NewTree()
	cur := tree.RootCursor()

	n0 := &widget.Node{Kind: widget.KindElement, ElementName: "text"}
	n1 := &widget.Node{Kind: widget.KindElement, ElementName: "button"}
	cur.Append(n0)
	cur.Append(n1)
	require.Equal(t, 2, cur.Len())

	mid := &widget.Node{Kind: widget.KindElement, ElementName: "spacer"}
	cur.InsertAt(1, mid)
	require.Equal(t, 3, cur.Len())
	assert.Same(t, mid, cur.At(1))
	assert.Same(t, n1, cur.At(2))

	cur.Swap(0, 2)
	assert.Same(t, n1, cur.At(0))
	assert.Same(t, n0, cur.At(2))

	removed := cur.RemoveAt(1)
	assert.Same(t, mid, removed)
	assert.Equal(t, 2, cur.Len())
}

func TestTreeRemoveQueuesWholeSubtreeForCleanup(t *testing.T) {
	tree := widget.NewTree()
	child := &widget.Node{Kind: widget.KindElement}
	grandchild := &widget.Node{Kind: widget.KindElement}
	child.Children = append(child.Children, grandchild)
	root := &widget.Node{Kind: widget.KindFor}
	root.Children = append(root.Children, child)

	tree.Remove(root)
	drained := tree.DrainCleanup()

	require.Len(t, drained, 3)
	assert.Contains(t, drained, root)
	assert.Contains(t, drained, child)
	assert.Contains(t, drained, grandchild)

	assert.Empty(t, tree.DrainCleanup(), "drain must clear the queue")
}
