// Package evaluator implements spec.md §4.11: it expands a blueprint
// tree into the widget tree, instantiating elements and components,
// and re-evaluates the affected slice of the tree when a subscribed
// value changes.
package evaluator

import (
	"fmt"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
)

// ElementFactory is the external widget collaborator named in spec.md
// §4.11 ("consult the element factory"): it turns an element name into
// an opaque, renderable instance. Concrete factories live in
// pkg/widget/elements.
type ElementFactory interface {
	Create(name string) (any, error)
}

// AttributeStore holds resolved attribute values per widget-id, per
// attribute key (spec.md §3 "AttributeStorage"). It is owned by the
// evaluator rather than the widget tree itself, since it is rendering
// input, not tree structure. Key "" holds an element's bare value
// (spec.md §4.3 node value, e.g. `text "hello"`).
type AttributeStore struct {
	byWidget map[ids.ID]map[string]resolver.EvalValue
}

func newAttributeStore() *AttributeStore {
	return &AttributeStore{byWidget: map[ids.ID]map[string]resolver.EvalValue{}}
}

// Get returns the resolved value of key for widget, if set.
func (a *AttributeStore) Get(widgetID ids.ID, key string) (resolver.EvalValue, bool) {
	m, ok := a.byWidget[widgetID]
	if !ok {
		return resolver.EvalValue{}, false
	}
	v, ok := m[key]
	return v, ok
}

func (a *AttributeStore) set(widgetID ids.ID, key string, v resolver.EvalValue) {
	if a.byWidget[widgetID] == nil {
		a.byWidget[widgetID] = map[string]resolver.EvalValue{}
	}
	a.byWidget[widgetID][key] = v
}

// Release drops every attribute stored for widget (spec.md §4.10
// cleanup).
func (a *AttributeStore) Release(widgetID ids.ID) { delete(a.byWidget, widgetID) }

// Keys lists every attribute key currently stored for widget,
// including attrValue (""). pkg/devtools uses this to enumerate a
// node's attributes for a widget-tree snapshot without needing a
// hardcoded per-element-name table the way pkg/runtime's paint step
// does for the fixed built-in catalogue.
func (a *AttributeStore) Keys(widgetID ids.ID) []string {
	m := a.byWidget[widgetID]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// structural tags distinguish a node's own governing subscription (its
// for-head / if-condition / switch-scrutinee) from its per-attribute
// subscriptions, all multiplexed through the same subscription.Registry
// keyed by (widget id, attr string).
const (
	attrValue  = ""
	attrFor    = "@for"
	attrIf     = "@if"
	attrSwitch = "@switch"
)

func attrKey(name string) string { return "@attr:" + name }

// slotBinding records, for one mounted component instance, what the
// caller assigned to each of its slots and the scope/template those
// children must be evaluated against (the caller's, not the
// component's — spec.md §4.11 "Slot blueprint: render the caller's
// children ... in the caller's scope").
type slotBinding struct {
	compiled *blueprint.Compiled
	scope    *scope.Chain
	slots    map[string][]*blueprint.Blueprint
}

// forState is the evaluator's own bookkeeping for a live `for` node,
// tracking which stable element id backs each current child so a
// future re-evaluation can diff by identity instead of position
// (spec.md §8 "Swapping two adjacent elements ... produces exactly one
// swap").
type forState struct {
	bp       *blueprint.Blueprint
	compiled *blueprint.Compiled
	scope    *scope.Chain
	identity widget.Identity
	node     *widget.Node
	elems    []state.ValueRef // current element id per iteration, in order
	// childCounts[i] is the number of widget nodes iteration i produced
	// (bp.Children may contain more than one statement), parallel to elems.
	childCounts []int
}

type ifState struct {
	bp       *blueprint.Blueprint
	compiled *blueprint.Compiled
	scope    *scope.Chain
	identity widget.Identity
	node     *widget.Node
	active   int // index into bp.IfArms currently mounted, -1 if none
}

type switchState struct {
	bp       *blueprint.Blueprint
	compiled *blueprint.Compiled
	scope    *scope.Chain
	identity widget.Identity
	node     *widget.Node
	active   int // index into bp.CaseArms currently mounted, -1 if none
}

// Evaluator owns every live structural and per-component binding
// produced while expanding blueprints into the widget tree.
type Evaluator struct {
	Doc     *blueprint.Document
	Graph   *state.Graph
	Subs    *subscription.Registry
	Factory ElementFactory
	Attrs   *AttributeStore

	widgetIDs *ids.Allocator

	resolvers  map[*blueprint.Compiled]*resolver.Resolver
	composites map[state.ValueRef]*state.Composite
	slots      map[state.ValueRef]*slotBinding // keyed by the component's state ValueRef

	fors     map[string]*forState
	ifs      map[string]*ifState
	switches map[string]*switchState

	// byWidget lets Reconcile find the structural state a drained
	// event's Subscriber.Widget refers to; fors/ifs/switches above are
	// keyed by Identity instead, for the (currently write-only) case of
	// a future rebuild needing to recognize a position it already owns.
	forsByWidget     map[ids.ID]*forState
	ifsByWidget      map[ids.ID]*ifState
	switchesByWidget map[ids.ID]*switchState

	// node indexes every live widget.Node by widget id, so Reconcile can
	// find the node a drained event's Subscriber refers to.
	node map[ids.ID]*widget.Node

	// elems records, per element widget id, what it was last resolved
	// against, so a single attribute's re-resolution (spec.md §4.12 step
	// 5) doesn't need to re-walk the tree to recover its blueprint/scope.
	elems map[ids.ID]*elementBinding

	// eventRoutes records, per component-instance widget id, how to
	// rename and redirect that instance's emitted events to its caller
	// (spec.md §4.11 "events emitted by the component are renamed using
	// the associated-function mapping before dispatch to the parent").
	eventRoutes map[ids.ID]*eventRoute

	// emitted queues events raised via Emit since the last
	// DrainAssociatedEvents, mirroring the Drain* idiom state.Graph and
	// subscription.Registry already use for per-frame batches.
	emitted []EmittedEvent

	// ComponentInit, keyed by component name, seeds a freshly mounted
	// instance's state/attributes composites before its template
	// evaluates (spec.md §6 "component(name, source, behavior,
	// initial_state)"). Populated by pkg/runtime, which owns component
	// registration; left nil for the common case of a template with no
	// behavior hook. emit raises a named event against this specific
	// instance (spec.md §4.11), queued for DrainAssociatedEvents.
	ComponentInit map[string]func(stateComposite, attrsComposite *state.Composite, emit func(name string, payload state.Value))
}

type elementBinding struct {
	bp       *blueprint.Blueprint
	compiled *blueprint.Compiled
	scope    *scope.Chain
}

// New returns an evaluator bound to doc's compiled templates, graph,
// registry and element factory.
func New(doc *blueprint.Document, g *state.Graph, subs *subscription.Registry, factory ElementFactory) *Evaluator {
	return &Evaluator{
		Doc:              doc,
		Graph:            g,
		Subs:             subs,
		Factory:          factory,
		Attrs:            newAttributeStore(),
		widgetIDs:        ids.NewAllocator(),
		resolvers:        map[*blueprint.Compiled]*resolver.Resolver{},
		composites:       map[state.ValueRef]*state.Composite{},
		slots:            map[state.ValueRef]*slotBinding{},
		fors:             map[string]*forState{},
		ifs:              map[string]*ifState{},
		switches:         map[string]*switchState{},
		forsByWidget:     map[ids.ID]*forState{},
		ifsByWidget:      map[ids.ID]*ifState{},
		switchesByWidget: map[ids.ID]*switchState{},
		node:             map[ids.ID]*widget.Node{},
		elems:            map[ids.ID]*elementBinding{},
		eventRoutes:      map[ids.ID]*eventRoute{},
	}
}

func (ev *Evaluator) resolverFor(c *blueprint.Compiled) *resolver.Resolver {
	if r, ok := ev.resolvers[c]; ok {
		return r
	}
	r := resolver.New(c.Exprs, c.Strings, ev.Graph, ev.Subs)
	r.CompositeLookup = func(ref state.ValueRef, key string) (any, bool) {
		comp, ok := ev.composites[ref]
		if !ok {
			return nil, false
		}
		return comp.Field(key)
	}
	ev.resolvers[c] = r
	return r
}

// Mount evaluates root's blueprints into tree's root cursor under the
// root scope (globals only), and is the entry point used for the
// document's top-level template and for initial component mounting.
func (ev *Evaluator) Mount(root *blueprint.Compiled, tree *widget.Tree) error {
	sc := scope.Root(globalsMap(root.Globals))
	return ev.evaluateBlock(root, root.Roots, tree.RootCursor(), sc, widget.Identity{})
}

// MountComponent is Mount's component-carrying counterpart: it evaluates
// root under a scope naming the given state/attributes composites, the
// same way evaluateComponent mounts a nested "@name" instance. pkg/runtime
// uses this to host the document's registered root as a top-level
// component instance, so `component(name, source, behavior,
// initial_state)`'s behavior hook has somewhere to write before the
// first frame renders (spec.md §6 "Component registration").
func (ev *Evaluator) MountComponent(root *blueprint.Compiled, tree *widget.Tree, stateComposite, attrsComposite *state.Composite) error {
	ev.composites[stateComposite.Ref()] = stateComposite
	ev.composites[attrsComposite.Ref()] = attrsComposite
	sc := scope.Root(globalsMap(root.Globals)).
		PushComponentState(stateComposite.Ref()).
		PushComponentAttributes(attrsComposite.Ref())
	return ev.evaluateBlock(root, root.Roots, tree.RootCursor(), sc, widget.Identity{})
}

func globalsMap(globals []ast.Stmt) map[string]ast.Idx {
	out := make(map[string]ast.Idx, len(globals))
	for _, g := range globals {
		out[g.DeclName] = g.Expr
	}
	return out
}

func (ev *Evaluator) allocWidgetID() ids.ID { return ev.widgetIDs.Alloc() }

// evaluateBlock evaluates every sibling blueprint in bps into cur,
// deriving each child's identity from its position under parent.
func (ev *Evaluator) evaluateBlock(c *blueprint.Compiled, bps []*blueprint.Blueprint, cur *widget.Cursor, sc *scope.Chain, parent widget.Identity) error {
	for pos, bp := range bps {
		identity := parent.Child(pos)
		if bp.Kind == blueprint.KindDeclaration {
			// A local `let` extends the scope seen by every later sibling
			// in this same block; a `global` was already hoisted into the
			// root scope by Mount and contributes nothing further here.
			if bp.DeclScope == ast.ScopeLocal {
				sc = sc.PushLet(bp.DeclName, bp.DeclExpr)
			}
			continue
		}
		if err := ev.evaluateInto(c, bp, cur, sc, identity); err != nil {
			return err
		}
	}
	return nil
}

// evaluateInto evaluates one blueprint and appends whatever widget
// node(s) it produces to cur. KindWith produces no node of its own: it
// only extends sc for its children, who are appended directly into cur
// (spec.md's blueprint-kind list has no widget shape for `with`).
func (ev *Evaluator) evaluateInto(c *blueprint.Compiled, bp *blueprint.Blueprint, cur *widget.Cursor, sc *scope.Chain, identity widget.Identity) error {
	if bp.Kind == blueprint.KindWith {
		inner := sc.PushLet(bp.WithBinding, bp.WithExpr)
		return ev.evaluateBlock(c, bp.Children, cur, inner, identity)
	}
	n, err := ev.evaluateNode(c, bp, sc, identity)
	if err != nil {
		return err
	}
	if n != nil {
		cur.Append(n)
		ev.node[n.ID] = n
	}
	return nil
}

func (ev *Evaluator) evaluateNode(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	switch bp.Kind {
	case blueprint.KindNode:
		return ev.evaluateElement(c, bp, sc, identity)
	case blueprint.KindFor:
		return ev.evaluateFor(c, bp, sc, identity)
	case blueprint.KindIfChain:
		return ev.evaluateIfChain(c, bp, sc, identity)
	case blueprint.KindSwitchChain:
		return ev.evaluateSwitchChain(c, bp, sc, identity)
	case blueprint.KindComponentInstance:
		return ev.evaluateComponent(c, bp, sc, identity)
	case blueprint.KindSlotPlacement:
		return ev.evaluateSlotPlacement(c, bp, sc, identity)
	default:
		return nil, fmt.Errorf("evaluator: unexpected blueprint kind %d", bp.Kind)
	}
}

func (ev *Evaluator) evaluateElement(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	widgetID := ev.allocWidgetID()
	elem, err := ev.Factory.Create(bp.ElementName)
	if err != nil {
		return nil, err
	}
	n := &widget.Node{ID: widgetID, Identity: identity, Kind: widget.KindElement, ElementName: bp.ElementName, Element: elem}
	ev.elems[widgetID] = &elementBinding{bp: bp, compiled: c, scope: sc}

	if err := ev.resolveAttributes(c, bp, sc, widgetID); err != nil {
		return nil, err
	}

	if err := ev.evaluateBlock(c, bp.Children, n.ChildCursor(), sc, identity); err != nil {
		return nil, err
	}
	return n, nil
}

func (ev *Evaluator) resolveAttributes(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, widgetID ids.ID) error {
	r := ev.resolverFor(c)
	for _, key := range bp.AttrOrder {
		sub := subscription.Subscriber{Widget: widgetID, Attr: attrKey(key)}
		ev.Subs.UnsubscribeAll(sub)
		v, err := r.Resolve(bp.Attributes[key], sc, sub, resolver.Immediate)
		if err != nil {
			return err
		}
		ev.Attrs.set(widgetID, key, v)
	}
	if bp.HasValue {
		sub := subscription.Subscriber{Widget: widgetID, Attr: attrValue}
		ev.Subs.UnsubscribeAll(sub)
		v, err := r.Resolve(bp.Value, sc, sub, resolver.Immediate)
		if err != nil {
			return err
		}
		ev.Attrs.set(widgetID, attrValue, v)
	}
	return nil
}

func (ev *Evaluator) evaluateSlotPlacement(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	n := &widget.Node{ID: ev.allocWidgetID(), Identity: identity, Kind: widget.KindSlot}
	stateRef, ok := componentStateRef(sc)
	if !ok {
		return n, nil
	}
	binding, ok := ev.slots[stateRef]
	if !ok {
		return n, nil
	}
	kids, ok := binding.slots[bp.SlotName]
	if !ok {
		return n, nil
	}
	if err := ev.evaluateBlock(binding.compiled, kids, n.ChildCursor(), binding.scope, identity); err != nil {
		return nil, err
	}
	return n, nil
}

// componentStateRef finds the nearest enclosing ComponentState frame's
// ref by walking the standard `state` lookup (every component-mounted
// scope has exactly one).
func componentStateRef(sc *scope.Chain) (state.ValueRef, bool) {
	b, ok := sc.Lookup("state")
	if !ok || b.Kind != scope.BindState {
		return state.ValueRef{}, false
	}
	return b.Ref, true
}
