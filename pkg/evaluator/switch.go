package evaluator

import (
	"strconv"

	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
)

// evaluateSwitchChain mounts a switch blueprint: like an if-chain, but
// the scrutinee is resolved once and compared for equality against
// each case's expression in order, falling through to `default` (there
// is no case fall-through between arms, spec.md §9 Open Question (b)).
func (ev *Evaluator) evaluateSwitchChain(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	n := &widget.Node{ID: ev.allocWidgetID(), Identity: identity, Kind: widget.KindSwitchArm}
	ss := &switchState{bp: bp, compiled: c, scope: sc, identity: identity, node: n, active: -1}
	ev.switches[identity.Key()] = ss
	ev.switchesByWidget[n.ID] = ss

	active, err := ev.resolveSwitchArm(ss)
	if err != nil {
		return nil, err
	}
	ss.active = active
	if active < 0 {
		return n, nil
	}
	cur := n.ChildCursor()
	if err := ev.evaluateBlock(c, bp.CaseArms[active].Children, cur, sc, identity); err != nil {
		return nil, err
	}
	return n, nil
}

func (ev *Evaluator) resolveSwitchArm(ss *switchState) (int, error) {
	r := ev.resolverFor(ss.compiled)
	sub := subscription.Subscriber{Widget: ss.node.ID, Attr: attrSwitch}
	ev.Subs.UnsubscribeAll(sub)
	scrutinee, err := r.Resolve(ss.bp.SwitchExpr, ss.scope, sub, resolver.Immediate)
	if err != nil {
		return -1, err
	}
	sv := scrutinee.Value()
	defaultIdx := -1
	for idx, arm := range ss.bp.CaseArms {
		if arm.IsDefault {
			defaultIdx = idx
			continue
		}
		cv, err := r.Resolve(arm.Cond, ss.scope, sub, resolver.Immediate)
		if err != nil {
			return -1, err
		}
		if valuesEqual(sv, cv.Value()) {
			return idx, nil
		}
	}
	return defaultIdx, nil
}

// updateSwitch re-resolves a live switch-node's scrutinee and arms,
// swapping the active one if the winner changed.
func (ev *Evaluator) updateSwitch(ss *switchState) error {
	active, err := ev.resolveSwitchArm(ss)
	if err != nil {
		return err
	}
	if active == ss.active {
		return nil
	}
	cur := ss.node.ChildCursor()
	for cur.Len() > 0 {
		n := cur.RemoveAt(cur.Len() - 1)
		ev.queueCleanup(n)
	}
	ss.active = active
	if active < 0 {
		return nil
	}
	return ev.evaluateBlock(ss.compiled, ss.bp.CaseArms[active].Children, cur, ss.scope, ss.identity)
}

// valuesEqual mirrors the resolver's own equality rule (spec.md §4.9
// "equality compares by normalized common value"): mixed int/float
// coerce to float, mixed string coerces via string form, otherwise
// compare the raw Value.
func valuesEqual(a, b state.Value) bool {
	if a.Kind == state.KindFloat || b.Kind == state.KindFloat {
		return toFloat(a) == toFloat(b)
	}
	if a.Kind == state.KindString || b.Kind == state.KindString {
		return stringify(a) == stringify(b)
	}
	return a.Equal(b)
}

func toFloat(v state.Value) float64 {
	if v.Kind == state.KindFloat {
		return v.Float
	}
	return float64(v.Int)
}

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
	default:
		return ""
	}
}
