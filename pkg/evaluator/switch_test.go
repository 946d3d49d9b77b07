package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// mountSwitchOverMode compiles a three-arm switch keyed off state.mode,
// returning the switch-node and the live scalar backing the scrutinee.
func mountSwitchOverMode(t *testing.T, h *harness, initial string) (*widget.Node, *state.Scalar) {
	t.Helper()
	h.doc.RegisterInline("root",
		"switch state.mode\n  case \"a\":\n    text \"is-a\"\n  case \"b\":\n    text \"is-b\"\n  default:\n    text \"is-other\"")
	h.doc.SetRoot("root")
	root, err := h.doc.Compile()
	require.NoError(t, err)

	comp := state.NewComposite(h.graph)
	mode := state.NewScalar(h.graph, state.NewString(initial))
	comp.Expose("mode", mode)
	h.ev.composites[comp.Ref()] = comp

	sc := scope.Root(nil).PushComponentState(comp.Ref())
	require.NoError(t, h.ev.evaluateBlock(root, root.Roots, h.tree.RootCursor(), sc, widget.Identity{}))

	require.Len(t, h.tree.Roots, 1)
	return h.tree.Roots[0], mode
}

func TestSwitchMatchesCaseByEquality(t *testing.T) {
	h := newHarness()
	swNode, _ := mountSwitchOverMode(t, h, "b")

	require.Equal(t, widget.KindSwitchArm, swNode.Kind)
	require.Len(t, swNode.Children, 1)
	assert.Equal(t, "is-b", valueOf(t, h, swNode.Children[0]))
}

func TestSwitchFallsThroughToDefault(t *testing.T) {
	h := newHarness()
	swNode, _ := mountSwitchOverMode(t, h, "nope")

	require.Len(t, swNode.Children, 1)
	assert.Equal(t, "is-other", valueOf(t, h, swNode.Children[0]))
}

func TestSwitchSwapsArmOnScrutineeChange(t *testing.T) {
	h := newHarness()
	swNode, mode := mountSwitchOverMode(t, h, "a")
	aNode := swNode.Children[0]

	mode.Write(state.NewString("b"))
	h.drainAndReconcile(t)

	require.Len(t, swNode.Children, 1)
	assert.NotSame(t, aNode, swNode.Children[0])
	assert.Equal(t, "is-b", valueOf(t, h, swNode.Children[0]))
}
