package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

func TestComponentMountsWithEmptyComposites(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("card", "box\n  $header")
	h.mountRoot(t, "@card\n  $header\n    text \"Header Text\"")

	require.Len(t, h.tree.Roots, 1)
	comp := h.tree.Roots[0]
	require.Equal(t, widget.KindComponent, comp.Kind)
	require.NotNil(t, comp.StateComposite)
	require.NotNil(t, comp.AttributesComposite)
	assert.Empty(t, comp.StateComposite.FieldNames())
	assert.Empty(t, comp.AttributesComposite.FieldNames())
}

func TestComponentRendersNamedSlotInCallerScope(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("card", "box\n  $header")
	h.mountRoot(t, "@card\n  $header\n    text \"Header Text\"")

	comp := h.tree.Roots[0]
	require.Len(t, comp.Children, 1)
	box := comp.Children[0]
	assert.Equal(t, "box", box.ElementName)

	require.Len(t, box.Children, 1)
	slot := box.Children[0]
	assert.Equal(t, widget.KindSlot, slot.Kind)

	require.Len(t, slot.Children, 1)
	text := slot.Children[0]
	assert.Equal(t, "text", text.ElementName)
	v, ok := h.ev.Attrs.Get(text.ID, attrValue)
	require.True(t, ok)
	assert.Equal(t, "Header Text", v.Value().Str)
}

func TestComponentInitSeedsStateComposite(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("counter", "text state.count")
	h.ev.ComponentInit = map[string]func(stateComposite, attrsComposite *state.Composite, emit func(string, state.Value)){
		"counter": func(sc, ac *state.Composite, emit func(string, state.Value)) {
			sc.Expose("count", state.NewScalar(h.graph, state.NewInt(7)))
		},
	}
	h.mountRoot(t, "@counter")

	comp := h.tree.Roots[0]
	assert.Contains(t, comp.StateComposite.FieldNames(), "count")

	text := comp.Children[0]
	v, ok := h.ev.Attrs.Get(text.ID, attrValue)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Value().Int)
}

// TestDrainAssociatedEventsRenamesAndRoutesToCaller exercises spec.md
// §4.11's associated-function mapping end to end: a child component
// emits an internally-named event, and DrainAssociatedEvents renames it
// via the caller's "@child(saved -> onSaved)" association and writes
// the payload into the caller's own state composite.
func TestDrainAssociatedEventsRenamesAndRoutesToCaller(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("child", "text \"child\"")
	h.doc.RegisterInline("root", "@child(saved -> onSaved)")
	h.doc.SetRoot("root")
	root, err := h.doc.Compile()
	require.NoError(t, err)

	parentState := state.NewComposite(h.graph)
	onSaved := state.NewScalar(h.graph, state.NewBool(false))
	parentState.Expose("onSaved", onSaved)
	parentAttrs := state.NewComposite(h.graph)

	h.ev.ComponentInit = map[string]func(stateComposite, attrsComposite *state.Composite, emit func(string, state.Value)){
		"child": func(sc, ac *state.Composite, emit func(string, state.Value)) {
			emit("saved", state.NewBool(true))
		},
	}

	require.NoError(t, h.ev.MountComponent(root, h.tree, parentState, parentAttrs))
	h.ev.DrainAssociatedEvents()

	assert.True(t, onSaved.Read().Bool)
}

// TestDrainAssociatedEventsDropsEventsWithNoAssociationEntry confirms an
// emitted event whose internal name has no "internal -> external" entry
// is simply dropped, not dispatched under its own name.
func TestDrainAssociatedEventsDropsEventsWithNoAssociationEntry(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("child", "text \"child\"")
	h.doc.RegisterInline("root", "@child(saved -> onSaved)")
	h.doc.SetRoot("root")
	root, err := h.doc.Compile()
	require.NoError(t, err)

	parentState := state.NewComposite(h.graph)
	saved := state.NewScalar(h.graph, state.NewBool(false))
	parentState.Expose("saved", saved) // deliberately not "onSaved"
	parentAttrs := state.NewComposite(h.graph)

	h.ev.ComponentInit = map[string]func(stateComposite, attrsComposite *state.Composite, emit func(string, state.Value)){
		"child": func(sc, ac *state.Composite, emit func(string, state.Value)) {
			emit("unmapped", state.NewBool(true))
		},
	}

	require.NoError(t, h.ev.MountComponent(root, h.tree, parentState, parentAttrs))
	h.ev.DrainAssociatedEvents()

	assert.False(t, saved.Read().Bool)
}

func TestSlotWithNoCallerContentRendersEmpty(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("card", "box\n  $header")
	h.mountRoot(t, "@card")

	comp := h.tree.Roots[0]
	box := comp.Children[0]
	slot := box.Children[0]
	assert.Empty(t, slot.Children)
}
