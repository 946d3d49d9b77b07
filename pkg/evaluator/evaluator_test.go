package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
)

// fakeElement is what fakeFactory hands back for every element name;
// tests only care that one was produced, not what it renders.
type fakeElement struct{ name string }

type fakeFactory struct{ calls []string }

func (f *fakeFactory) Create(name string) (any, error) {
	f.calls = append(f.calls, name)
	return &fakeElement{name: name}, nil
}

// harness bundles one evaluator plus the graph/registry/document it was
// built from, so a test can mutate state and drain events without
// threading four separate values through every helper.
type harness struct {
	doc     *blueprint.Document
	graph   *state.Graph
	subs    *subscription.Registry
	factory *fakeFactory
	ev      *Evaluator
	tree    *widget.Tree
}

func newHarness() *harness {
	doc := blueprint.NewDocument()
	g := state.NewGraph()
	subs := subscription.New()
	factory := &fakeFactory{}
	h := &harness{
		doc:     doc,
		graph:   g,
		subs:    subs,
		factory: factory,
		ev:      New(doc, g, subs, factory),
		tree:    widget.NewTree(),
	}
	return h
}

// mountRoot registers src as the document's root template, compiles the
// document, and mounts it into a fresh tree.
func (h *harness) mountRoot(t *testing.T, src string) *blueprint.Compiled {
	t.Helper()
	h.doc.RegisterInline("root", src)
	h.doc.SetRoot("root")
	root, err := h.doc.Compile()
	require.NoError(t, err)
	require.NoError(t, h.ev.Mount(root, h.tree))
	return root
}

// drainAndReconcile drains whatever changes are pending on the graph
// and feeds them to the evaluator, mirroring one frame-cycle pass
// (spec.md §4.12 step 5).
func (h *harness) drainAndReconcile(t *testing.T) {
	t.Helper()
	events := h.subs.Drain(h.graph)
	require.NoError(t, h.ev.Reconcile(events))
}

func TestMountElementResolvesBareValue(t *testing.T) {
	h := newHarness()
	h.mountRoot(t, `text "hello"`)

	require.Len(t, h.tree.Roots, 1)
	n := h.tree.Roots[0]
	assert.Equal(t, widget.KindElement, n.Kind)
	assert.Equal(t, "text", n.ElementName)

	v, ok := h.ev.Attrs.Get(n.ID, attrValue)
	require.True(t, ok)
	assert.Equal(t, "hello", v.Value().Str)
}

func TestMountElementResolvesAttributes(t *testing.T) {
	h := newHarness()
	h.mountRoot(t, `text [color: "red"] "hi"`)

	n := h.tree.Roots[0]
	v, ok := h.ev.Attrs.Get(n.ID, "color")
	require.True(t, ok)
	assert.Equal(t, "red", v.Value().Str)
}

func TestMountElementChildrenNest(t *testing.T) {
	h := newHarness()
	h.mountRoot(t, "box\n  text \"child\"")

	root := h.tree.Roots[0]
	require.Len(t, root.Children, 1)
	assert.Equal(t, "text", root.Children[0].ElementName)
}

func TestAttributeReresolvesOnCellChange(t *testing.T) {
	h := newHarness()
	h.doc.RegisterInline("root", "text [label: state.label]")
	h.doc.SetRoot("root")
	root, err := h.doc.Compile()
	require.NoError(t, err)

	comp := state.NewComposite(h.graph)
	label := state.NewScalar(h.graph, state.NewString("one"))
	comp.Expose("label", label)
	h.ev.composites[comp.Ref()] = comp

	sc := scope.Root(nil).PushComponentState(comp.Ref())
	require.NoError(t, h.ev.evaluateBlock(root, root.Roots, h.tree.RootCursor(), sc, widget.Identity{}))

	n := h.tree.Roots[0]
	v, ok := h.ev.Attrs.Get(n.ID, "label")
	require.True(t, ok)
	assert.Equal(t, "one", v.Value().Str)

	label.Write(state.NewString("two"))
	h.drainAndReconcile(t)

	v, ok = h.ev.Attrs.Get(n.ID, "label")
	require.True(t, ok)
	assert.Equal(t, "two", v.Value().Str)
}
