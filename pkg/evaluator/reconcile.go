package evaluator

import (
	"strings"

	"github.com/corvidae/fluxui/pkg/resolver"
	"github.com/corvidae/fluxui/pkg/subscription"
)

// Reconcile applies one frame's worth of drained subscription events
// (spec.md §4.12 step 5 "for each subscriber notified, invalidate its
// widget's layout cache and re-resolve its attribute"). Events whose
// widget was removed earlier in the same frame are silently skipped
// ("removed widgets' subscribers are skipped"), since queueCleanup
// already dropped their entries from every byWidget table.
func (ev *Evaluator) Reconcile(events []subscription.Event) error {
	for _, evt := range events {
		sub := evt.Subscriber
		switch sub.Attr {
		case attrFor:
			if fs, ok := ev.forsByWidget[sub.Widget]; ok {
				if err := ev.updateFor(fs); err != nil {
					return err
				}
			}
		case attrIf:
			if is, ok := ev.ifsByWidget[sub.Widget]; ok {
				if err := ev.updateIf(is); err != nil {
					return err
				}
			}
		case attrSwitch:
			if ss, ok := ev.switchesByWidget[sub.Widget]; ok {
				if err := ev.updateSwitch(ss); err != nil {
					return err
				}
			}
		default:
			if err := ev.reresolveAttribute(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// reresolveAttribute re-runs the resolver for a single attribute (or an
// element's bare value) whose subscriber fired, writing the fresh
// result back into attribute storage (spec.md §4.9 "a re-resolution of
// the same attribute first clears the prior subscriptions for that
// subscriber, then re-subscribes during the new walk").
func (ev *Evaluator) reresolveAttribute(sub subscription.Subscriber) error {
	eb, ok := ev.elems[sub.Widget]
	if !ok {
		return nil
	}
	r := ev.resolverFor(eb.compiled)
	ev.Subs.UnsubscribeAll(sub)
	if sub.Attr == attrValue {
		if !eb.bp.HasValue {
			return nil
		}
		v, err := r.Resolve(eb.bp.Value, eb.scope, sub, resolver.Immediate)
		if err != nil {
			return err
		}
		ev.Attrs.set(sub.Widget, attrValue, v)
		return nil
	}
	key := strings.TrimPrefix(sub.Attr, "@attr:")
	idx, ok := eb.bp.Attributes[key]
	if !ok {
		return nil
	}
	v, err := r.Resolve(idx, eb.scope, sub, resolver.Immediate)
	if err != nil {
		return err
	}
	ev.Attrs.set(sub.Widget, key, v)
	return nil
}
