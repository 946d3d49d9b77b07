package evaluator

import (
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/perr"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// evaluateComponent mounts a component instance (spec.md §4.11
// "Component blueprint"): it allocates the instance's own state and
// attributes composites, evaluates the referenced template under a
// scope carrying both, and records the caller's slot assignments so
// evaluateSlotPlacement can later render them in the caller's own
// scope (spec.md §4.11 "Slot blueprint").
//
// Component instantiation carries no per-instance attribute list in
// this grammar (node's "@" form has no attr-list, only an optional
// bare value that build.go presently drops — see DESIGN.md), so the
// attributes composite starts out empty; it exists so `attributes`
// resolves rather than misses, and so a future grammar extension has
// somewhere to write into.
func (ev *Evaluator) evaluateComponent(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	tmpl, ok := ev.Doc.Lookup(bp.ComponentName)
	if !ok {
		return nil, perr.New(perr.KindCompile, "", 0, perr.ErrUnresolvedComponent)
	}

	stateComposite := state.NewComposite(ev.Graph)
	attrsComposite := state.NewComposite(ev.Graph)
	ev.composites[stateComposite.Ref()] = stateComposite
	ev.composites[attrsComposite.Ref()] = attrsComposite

	n := &widget.Node{
		ID:                  ev.allocWidgetID(),
		Identity:            identity,
		Kind:                widget.KindComponent,
		StateComposite:      stateComposite,
		AttributesComposite: attrsComposite,
	}

	ev.slots[stateComposite.Ref()] = &slotBinding{compiled: c, scope: sc, slots: bp.Slots}

	route := &eventRoute{associations: assocMap(bp.Associations)}
	if b, ok := sc.Lookup("state"); ok && b.Kind == scope.BindState {
		route.parentState = b.Ref
		route.hasParent = true
	}
	ev.eventRoutes[n.ID] = route

	if init, ok := ev.ComponentInit[bp.ComponentName]; ok {
		emit := func(name string, payload state.Value) { ev.Emit(n.ID, name, payload) }
		init(stateComposite, attrsComposite, emit)
	}

	inner := sc.
		PushComponentState(stateComposite.Ref()).
		PushComponentAttributes(attrsComposite.Ref())
	if err := ev.evaluateBlock(tmpl, tmpl.Roots, n.ChildCursor(), inner, widget.Identity{}); err != nil {
		return nil, err
	}
	return n, nil
}
