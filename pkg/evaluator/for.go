package evaluator

import (
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/scope"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
)

// evaluateFor mounts a `for` blueprint: it resolves the collection
// expression, then pushes one Iteration frame per element and expands
// that element's children under it (spec.md §4.11 "For blueprint").
func (ev *Evaluator) evaluateFor(c *blueprint.Compiled, bp *blueprint.Blueprint, sc *scope.Chain, identity widget.Identity) (*widget.Node, error) {
	n := &widget.Node{ID: ev.allocWidgetID(), Identity: identity, Kind: widget.KindFor, ForBinding: bp.ForBinding}
	fs := &forState{bp: bp, compiled: c, scope: sc, identity: identity, node: n}
	ev.fors[identity.Key()] = fs
	ev.forsByWidget[n.ID] = fs

	r := ev.resolverFor(c)
	sub := subscription.Subscriber{Widget: n.ID, Attr: attrFor}
	ev.Subs.UnsubscribeAll(sub)
	v, err := r.Resolve(bp.ForExpr, sc, sub, resolver.Immediate)
	if err != nil {
		return nil, err
	}
	lst, ok := evalAsList(v)
	if !ok {
		return n, nil // collection not (yet) resolvable; renders empty until its future resolves
	}

	cur := n.ChildCursor()
	for i := 0; i < lst.Len(); i++ {
		if err := ev.mountForIteration(fs, cur, lst, i); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// mountForIteration expands bp.Children for the element currently at
// idx in lst, appending the resulting nodes to cur and recording the
// element's stable id and how many widget nodes it produced.
func (ev *Evaluator) mountForIteration(fs *forState, cur *widget.Cursor, lst *state.List, idx int) error {
	cell, ref, ok := lst.Get(idx)
	if !ok {
		return nil
	}
	before := cur.Len()
	inner := fs.scope.PushIteration(fs.bp.ForBinding, ref, cell, idx)
	childIdentity := fs.identity.Child(idx, ref)
	if err := ev.evaluateBlock(fs.compiled, fs.bp.Children, cur, inner, childIdentity); err != nil {
		return err
	}
	fs.elems = append(fs.elems, ref)
	fs.childCounts = append(fs.childCounts, cur.Len()-before)
	return nil
}

// evalAsList extracts a *state.List out of whatever EvalValue the for
// expression resolved to (spec.md §4.9's dyn-list / static-list
// shapes).
func evalAsList(v resolver.EvalValue) (*state.List, bool) {
	switch v.Kind {
	case resolver.EvalPendingList:
		return v.List, true
	case resolver.EvalCell:
		val := v.Cell.Read()
		if val.Kind == state.KindList {
			return val.List, true
		}
	case resolver.EvalStatic:
		if v.Static.Kind == state.KindList {
			return v.Static.List, true
		}
	}
	return nil, false
}

// updateFor re-resolves a live for-node's collection and reconciles
// its children by element identity (spec.md §8 swap-not-recreate,
// minimal add/remove).
func (ev *Evaluator) updateFor(fs *forState) error {
	r := ev.resolverFor(fs.compiled)
	sub := subscription.Subscriber{Widget: fs.node.ID, Attr: attrFor}
	ev.Subs.UnsubscribeAll(sub)
	v, err := r.Resolve(fs.bp.ForExpr, fs.scope, sub, resolver.Immediate)
	if err != nil {
		return err
	}
	cur := fs.node.ChildCursor()
	lst, ok := evalAsList(v)
	if !ok {
		ev.clearForIterations(fs, cur)
		return nil
	}

	newOrder := make([]state.ValueRef, lst.Len())
	for i := 0; i < lst.Len(); i++ {
		ref, _ := lst.ElementID(i)
		newOrder[i] = ref
	}

	if i, j, ok := detectTransposition(fs.elems, newOrder); ok {
		ev.swapForIterations(fs, cur, i, j)
		fs.elems = newOrder
		return nil
	}

	newSet := make(map[state.ValueRef]bool, len(newOrder))
	for _, r := range newOrder {
		newSet[r] = true
	}
	ev.removeGoneIterations(fs, cur, newSet)

	oldSet := make(map[state.ValueRef]bool, len(fs.elems))
	for _, r := range fs.elems {
		oldSet[r] = true
	}
	for i, ref := range newOrder {
		if oldSet[ref] {
			continue
		}
		if err := ev.mountForIteration(fs, cur, lst, i); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) clearForIterations(fs *forState, cur *widget.Cursor) {
	for cur.Len() > 0 {
		n := cur.RemoveAt(cur.Len() - 1)
		ev.queueCleanup(n)
	}
	fs.elems = nil
	fs.childCounts = nil
}

// removeGoneIterations drops every iteration whose element id is no
// longer present in newSet, walking from the end so earlier removals
// don't shift not-yet-processed cursor indices.
func (ev *Evaluator) removeGoneIterations(fs *forState, cur *widget.Cursor, newSet map[state.ValueRef]bool) {
	offset := 0
	starts := make([]int, len(fs.elems))
	for i, n := range fs.childCounts {
		starts[i] = offset
		offset += n
	}
	keepElems := fs.elems[:0:0]
	keepCounts := fs.childCounts[:0:0]
	for i := len(fs.elems) - 1; i >= 0; i-- {
		if newSet[fs.elems[i]] {
			continue
		}
		start := starts[i]
		for k := 0; k < fs.childCounts[i]; k++ {
			n := cur.RemoveAt(start)
			ev.queueCleanup(n)
		}
	}
	for i, e := range fs.elems {
		if newSet[e] {
			keepElems = append(keepElems, e)
			keepCounts = append(keepCounts, fs.childCounts[i])
		}
	}
	fs.elems = keepElems
	fs.childCounts = keepCounts
}

// swapForIterations exchanges the cursor ranges of the iterations
// currently at indices i and j, preserving each block's own identity
// and producing exactly one structural change (spec.md §8).
func (ev *Evaluator) swapForIterations(fs *forState, cur *widget.Cursor, i, j int) {
	if fs.childCounts[i] != 1 || fs.childCounts[j] != 1 {
		// multi-node iterations: fall back to a pair of single-slot swaps,
		// still touching only the two blocks involved.
		starts := blockStarts(fs.childCounts)
		si, sj := starts[i], starts[j]
		for k := 0; k < fs.childCounts[i] && k < fs.childCounts[j]; k++ {
			cur.Swap(si+k, sj+k)
		}
		fs.childCounts[i], fs.childCounts[j] = fs.childCounts[j], fs.childCounts[i]
		return
	}
	starts := blockStarts(fs.childCounts)
	cur.Swap(starts[i], starts[j])
}

func blockStarts(counts []int) []int {
	starts := make([]int, len(counts))
	offset := 0
	for i, n := range counts {
		starts[i] = offset
		offset += n
	}
	return starts
}

// detectTransposition reports whether new is old with exactly two
// entries transposed — not necessarily adjacent — and nothing else
// changed. This is the only reorder shape state.List.Swap ever
// produces (pkg/state/list.go's Swap exchanges exactly two indices,
// however far apart), so a single Change{Kind: ChangeSwapped} always
// collapses to exactly this case (spec.md §8 concrete scenario 3:
// swapping indices 0 and 2 of a three-element list must still produce
// exactly one swap operation, not a destroy-and-recreate pass).
func detectTransposition(old, new []state.ValueRef) (i, j int, ok bool) {
	if len(old) != len(new) || len(old) < 2 {
		return 0, 0, false
	}
	diffPositions := []int{}
	for k := range old {
		if old[k] != new[k] {
			diffPositions = append(diffPositions, k)
		}
		if len(diffPositions) > 2 {
			return 0, 0, false
		}
	}
	if len(diffPositions) != 2 {
		return 0, 0, false
	}
	a, b := diffPositions[0], diffPositions[1]
	if old[a] != new[b] || old[b] != new[a] {
		return 0, 0, false
	}
	return a, b, true
}

func (ev *Evaluator) queueCleanup(n *widget.Node) {
	var walk func(*widget.Node)
	walk = func(cur *widget.Node) {
		for _, c := range cur.Children {
			walk(c)
		}
		ev.Subs.UnsubscribeWidget(cur.ID)
		ev.Attrs.Release(cur.ID)
		delete(ev.node, cur.ID)
		delete(ev.elems, cur.ID)
		delete(ev.fors, cur.Identity.Key())
		delete(ev.ifs, cur.Identity.Key())
		delete(ev.switches, cur.Identity.Key())
		delete(ev.forsByWidget, cur.ID)
		delete(ev.ifsByWidget, cur.ID)
		delete(ev.switchesByWidget, cur.ID)
		delete(ev.eventRoutes, cur.ID)
		if cur.StateComposite != nil {
			delete(ev.composites, cur.StateComposite.Ref())
			delete(ev.slots, cur.StateComposite.Ref())
		}
		if cur.AttributesComposite != nil {
			delete(ev.composites, cur.AttributesComposite.Ref())
		}
	}
	walk(n)
}
