package runtime

import (
	"time"

	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// runFrame applies spec.md §4.12 steps 3-7 for the event dispatchEvent
// already routed (or for a bare tick with nothing to route). Step 1
// (message delivery) and step 2 (event dispatch) run in dispatchEvent,
// called from teaModel.Update before runFrame; step 6 (paint) happens
// when bubbletea calls teaModel.View after Update returns; step 8
// (sleep to target interval) is the tick bubbletea reschedules itself.
func (rt *Runtime) runFrame() error {
	rt.checkReload()
	rt.drainDeferred()
	rt.drainAssociatedEvents()

	events := rt.subs.Drain(rt.graph)
	rt.metrics.reconcileEvents.Add(float64(len(events)))
	if err := rt.ev.Reconcile(events); err != nil {
		return err
	}

	rt.cleanup()
	return nil
}

// deliverMessages implements step 1: drain the inbound ViewMessage
// channel, rate-limited to half the frame budget so message handling
// alone can never starve event polling (spec.md §4.12 step 1).
func (rt *Runtime) deliverMessages() {
	deadline := time.Now().Add(rt.frameInterval() / 2)
	for {
		select {
		case msg := <-rt.inbound:
			rt.applyViewMessage(msg)
		default:
			return
		}
		if time.Now().After(deadline) {
			return
		}
	}
}

// applyViewMessage routes a ViewMessage to the root component's exposed
// state field named by its Recipient, matching spec.md §6's
// ViewMessage{recipient, payload} against the simplest concrete target
// this runtime knows about — a named, live state field.
func (rt *Runtime) applyViewMessage(msg ViewMessage) {
	if rt.stateComposite == nil {
		return
	}
	field, ok := rt.stateComposite.Field(msg.Recipient)
	if !ok {
		return
	}
	scalar, ok := field.(*state.Scalar)
	if !ok {
		return
	}
	if v, ok := msg.Payload.(state.Value); ok {
		scalar.Write(v)
	}
}

// dispatchEvent implements step 2: route a polled backend event to the
// focused component (Key/Focus/Blur) or broadcast it (Mouse/Resize),
// per spec.md §4.12 step 2's routing table. It runs before runFrame so
// a key press and the state writes it causes land in the same frame's
// change-application step.
func (rt *Runtime) dispatchEvent(ev Event) {
	rt.deliverMessages()

	switch ev.Kind {
	case EventKey:
		rt.routeToFocused(ev)
	case EventFocus:
		rt.hasFocus = true
		rt.routeToFocused(ev)
	case EventBlur:
		rt.hasFocus = false
		rt.routeToFocused(ev)
	case EventMouse, EventResize:
		rt.broadcast(ev)
	}
}

func (rt *Runtime) routeToFocused(ev Event) {
	if !rt.hasFocus {
		return
	}
	if u, ok := rt.focused.Element.(widget.Updater); ok {
		u.Update(ev)
	}
}

func (rt *Runtime) broadcast(ev Event) {
	var walk func(n *widget.Node)
	walk = func(n *widget.Node) {
		if n.Kind == widget.KindElement {
			if u, ok := n.Element.(widget.Updater); ok {
				u.Update(ev)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range rt.tree.Roots {
		walk(r)
	}
}

// drainDeferred implements step 3 ("drain deferred commands: focus
// changes, cross-component messages"). fluxui has no deferred-command
// queue of its own yet — Focus/Blur on an Input element take effect
// immediately via the element's own methods rather than through a
// queued command — so this is presently a no-op reserved for that
// extension; see DESIGN.md.
func (rt *Runtime) drainDeferred() {}

// drainAssociatedEvents implements step 4 ("component-to-component
// ambient routing"): every event a component instance's ComponentInit
// hook raised through its emit closure since the last frame is renamed
// via that instance's associated-function mapping
// (blueprint.Blueprint.Associations) and written into the caller's
// state composite (pkg/evaluator's Evaluator.DrainAssociatedEvents).
func (rt *Runtime) drainAssociatedEvents() { rt.ev.DrainAssociatedEvents() }

// Focus designates n as the widget that routes Key/Focus/Blur events
// (spec.md §4.12 step 2), calling its element's Focus method when
// present (pkg/widget/elements.Input implements this).
func (rt *Runtime) Focus(n *widget.Node) {
	if rt.focused.Element != nil {
		if f, ok := rt.focused.Element.(interface{ Blur() }); ok {
			f.Blur()
		}
	}
	rt.focused = *n
	if f, ok := n.Element.(interface{ Focus() }); ok {
		f.Focus()
	}
}

// cleanup implements step 7: release every widget the tree queued for
// removal this frame, dropping its attribute entries and subscriptions
// (spec.md §4.12 step 7).
func (rt *Runtime) cleanup() {
	for _, n := range rt.tree.DrainCleanup() {
		rt.ev.Attrs.Release(n.ID)
		rt.subs.UnsubscribeWidget(n.ID)
	}
}
