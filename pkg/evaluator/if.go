package evaluator

import (
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
)

// evaluateIfChain mounts an if/else-if/else blueprint: it evaluates
// each condition in order, activates the first truthy arm (or the
// trailing unconditional else, if present), and subscribes to every
// value the winning walk read (spec.md §4.11 "If/else blueprint").
func (ev *Evaluator) evaluateIfChain(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	n := &widget.Node{ID: ev.allocWidgetID(), Identity: identity, Kind: widget.KindIfArm}
	is := &ifState{bp: bp, compiled: c, scope: sc, identity: identity, node: n, active: -1}
	ev.ifs[identity.Key()] = is
	ev.ifsByWidget[n.ID] = is

	active, err := ev.resolveIfArm(is)
	if err != nil {
		return nil, err
	}
	is.active = active
	if active < 0 {
		return n, nil
	}
	cur := n.ChildCursor()
	if err := ev.evaluateBlock(c, bp.IfArms[active].Children, cur, sc, identity); err != nil {
		return nil, err
	}
	return n, nil
}

// resolveIfArm re-resolves every arm's condition against is.scope under
// a single subscriber identity, returning the index of the first
// truthy arm (or the trailing else, HasCond == false), -1 if none
// matches. Conditions after the winning one are never evaluated, so an
// Either inside a later arm never subscribes (spec.md §8's "winning
// paths of Either" invariant generalizes the same way across arms).
func (ev *Evaluator) resolveIfArm(is *ifState) (int, error) {
	r := ev.resolverFor(is.compiled)
	sub := subscription.Subscriber{Widget: is.node.ID, Attr: attrIf}
	ev.Subs.UnsubscribeAll(sub)
	for idx, arm := range is.bp.IfArms {
		if !arm.HasCond {
			return idx, nil
		}
		v, err := r.Resolve(arm.Cond, is.scope, sub, resolver.Immediate)
		if err != nil {
			return -1, err
		}
		if truthy(v.Value()) {
			return idx, nil
		}
	}
	return -1, nil
}

// updateIf re-resolves a live if-node's arms and swaps the active one
// if the winner changed (spec.md §4.11 "swap the active arm").
func (ev *Evaluator) updateIf(is *ifState) error {
	active, err := ev.resolveIfArm(is)
	if err != nil {
		return err
	}
	if active == is.active {
		return nil
	}
	cur := is.node.ChildCursor()
	for cur.Len() > 0 {
		n := cur.RemoveAt(cur.Len() - 1)
		ev.queueCleanup(n)
	}
	is.active = active
	if active < 0 {
		return nil
	}
	return ev.evaluateBlock(is.compiled, is.bp.IfArms[active].Children, cur, is.scope, is.identity)
}

// truthy mirrors the resolver's own null/bool coercion rule (spec.md
// §4.9): everything but null and false is truthy.
func truthy(v state.Value) bool {
	switch v.Kind {
	case state.KindNull:
		return false
	case state.KindBool:
		return v.Bool
	default:
		return true
	}
}
