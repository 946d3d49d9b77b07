package subscription

import (
	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/state"
)

// EventKind discriminates what Drain reports: a normal value change,
// or a future that just became resolvable.
type EventKind int

const (
	EventChange EventKind = iota
	EventFutureHit
)

// Event is one drained notification (spec.md §4.7 "drain_changes() →
// iterator<(ValueRef, change) | (path, future-hit)>").
type Event struct {
	Kind       EventKind
	Ref        state.ValueRef
	Change     state.Change
	Owner      state.ValueRef // EventFutureHit
	Key        string         // EventFutureHit
	Subscriber Subscriber     // the specific subscriber this event is for
}

type futureKey struct {
	owner state.ValueRef
	key   string
}

// Registry is the subscription registry from spec.md §4.7: it is
// process-wide for the lifetime of one runtime (spec.md §9 "Global
// mutable state" — construct a fresh Registry per test run).
type Registry struct {
	bySubscriber map[Subscriber]map[state.ValueRef]bool
	byValue      map[state.ValueRef]map[Subscriber]bool
	// insertionOrder preserves per-value subscriber insertion order
	// (spec.md §5 "Subscribers for a single value are invoked in
	// insertion order"); Go maps don't preserve iteration order.
	insertionOrder map[state.ValueRef][]Subscriber
	futures        map[futureKey]map[Subscriber]bool
	// futuresBySubscriber lets UnsubscribeAll also drop any pending
	// future registrations for a removed subscriber.
	futuresBySubscriber map[Subscriber]map[futureKey]bool
	pendingFutureHits   []futureHit
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		bySubscriber:        map[Subscriber]map[state.ValueRef]bool{},
		byValue:             map[state.ValueRef]map[Subscriber]bool{},
		insertionOrder:      map[state.ValueRef][]Subscriber{},
		futures:             map[futureKey]map[Subscriber]bool{},
		futuresBySubscriber: map[Subscriber]map[futureKey]bool{},
	}
}

// Subscribe records that sub reads value. No duplicate subscriptions
// are created for the same (value, subscriber) pair (spec.md §3
// invariant).
func (r *Registry) Subscribe(value state.ValueRef, sub Subscriber) {
	if r.byValue[value] == nil {
		r.byValue[value] = map[Subscriber]bool{}
	}
	if !r.byValue[value][sub] {
		r.byValue[value][sub] = true
		r.insertionOrder[value] = append(r.insertionOrder[value], sub)
	}
	if r.bySubscriber[sub] == nil {
		r.bySubscriber[sub] = map[state.ValueRef]bool{}
	}
	r.bySubscriber[sub][value] = true
}

// UnsubscribeAll drops every subscription (live and future) for sub,
// used when an attribute is re-resolved (spec.md §4.9: "first clears
// the prior subscriptions for that subscriber") or when a widget is
// removed (spec.md §8 "no subscription references it").
func (r *Registry) UnsubscribeAll(sub Subscriber) {
	for ref := range r.bySubscriber[sub] {
		delete(r.byValue[ref], sub)
		if len(r.byValue[ref]) == 0 {
			delete(r.byValue, ref)
		}
		if order := r.insertionOrder[ref]; len(order) > 0 {
			r.insertionOrder[ref] = removeSubscriber(order, sub)
		}
	}
	delete(r.bySubscriber, sub)

	for fk := range r.futuresBySubscriber[sub] {
		delete(r.futures[fk], sub)
		if len(r.futures[fk]) == 0 {
			delete(r.futures, fk)
		}
	}
	delete(r.futuresBySubscriber, sub)
}

// RegisterFuture records that sub attempted to read (owner, key) and
// found nothing there yet (spec.md §4.7 "Futures").
func (r *Registry) RegisterFuture(owner state.ValueRef, key string, sub Subscriber) {
	fk := futureKey{owner: owner, key: key}
	if r.futures[fk] == nil {
		r.futures[fk] = map[Subscriber]bool{}
	}
	r.futures[fk][sub] = true
	if r.futuresBySubscriber[sub] == nil {
		r.futuresBySubscriber[sub] = map[futureKey]bool{}
	}
	r.futuresBySubscriber[sub][fk] = true
}

// ResolveFuture implements state.FutureResolver: when a map/list
// creates key under owner, any futures waiting on that pair are
// promoted and queued to fire on the next Drain.
func (r *Registry) ResolveFuture(owner state.ValueRef, key string) {
	fk := futureKey{owner: owner, key: key}
	subs := r.futures[fk]
	if len(subs) == 0 {
		return
	}
	delete(r.futures, fk)
	for sub := range subs {
		delete(r.futuresBySubscriber[sub], fk)
		r.pendingFutureHits = append(r.pendingFutureHits, futureHit{owner: owner, key: key, sub: sub})
	}
}

type futureHit struct {
	owner state.ValueRef
	key   string
	sub   Subscriber
}

// Drain consumes graph's buffered changes plus any resolved futures
// and expands them into one Event per (value, subscriber) edge, at
// most once per subscriber per frame (spec.md §8 "each subscriber S of
// C sees exactly one change notification in the next drain").
// Subscribers are reported in insertion order within each value's set
// (spec.md §5 "Subscribers for a single value are invoked in insertion
// order") — Go map iteration doesn't preserve order, so Subscribe also
// appends to an order-preserving slice consulted here.
func (r *Registry) Drain(g *state.Graph) []Event {
	var out []Event
	seen := map[Subscriber]bool{}

	for _, change := range g.DrainChanges() {
		for _, sub := range r.orderedSubscribers(change.Ref) {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			out = append(out, Event{Kind: EventChange, Ref: change.Ref, Change: change, Subscriber: sub})
		}
	}

	for _, hit := range r.pendingFutureHits {
		if seen[hit.sub] {
			continue
		}
		seen[hit.sub] = true
		out = append(out, Event{Kind: EventFutureHit, Owner: hit.owner, Key: hit.key, Subscriber: hit.sub})
	}
	r.pendingFutureHits = nil

	return out
}

func removeSubscriber(order []Subscriber, sub Subscriber) []Subscriber {
	for i, s := range order {
		if s == sub {
			return append(order[:i:i], order[i+1:]...)
		}
	}
	return order
}

// UnsubscribeWidget drops every subscription owned by any Subscriber
// for this widget id, regardless of attribute key — used when a whole
// widget subtree is torn down (spec.md §4.10 cleanup) and the caller
// doesn't want to enumerate every attribute name it once resolved. A
// subscriber that only ever registered a future (it read a path that
// didn't exist yet and never held a live subscription) has no entry in
// bySubscriber, so this also walks futuresBySubscriber to find it —
// otherwise its future registration would outlive the widget it was
// torn down with (spec.md §8 "after removing a widget, no subscription
// references it").
func (r *Registry) UnsubscribeWidget(widget ids.ID) {
	dead := map[Subscriber]bool{}
	for sub := range r.bySubscriber {
		if sub.Widget == widget {
			dead[sub] = true
		}
	}
	for sub := range r.futuresBySubscriber {
		if sub.Widget == widget {
			dead[sub] = true
		}
	}
	for sub := range dead {
		r.UnsubscribeAll(sub)
	}
}

func (r *Registry) orderedSubscribers(ref state.ValueRef) []Subscriber {
	set := r.byValue[ref]
	if len(set) == 0 {
		return nil
	}
	order, ok := r.insertionOrder[ref]
	if !ok {
		out := make([]Subscriber, 0, len(set))
		for s := range set {
			out = append(out, s)
		}
		return out
	}
	out := make([]Subscriber, 0, len(order))
	for _, s := range order {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
