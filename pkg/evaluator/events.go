package evaluator

import (
	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/ids"
	"github.com/corvidae/fluxui/pkg/state"
)

// EmittedEvent is one event a component instance raised against itself
// (via the emit closure its ComponentInit hook receives), waiting for
// spec.md §4.12 step 4 to rename and route it.
type EmittedEvent struct {
	Component ids.ID
	Name      string
	Payload   state.Value
}

// eventRoute records, for one component instance, the internal->external
// event-name mapping compiled from its "@name(internal -> external)"
// call site (blueprint.Blueprint.Associations) and the caller's own
// state composite the renamed event should land in. A root-level
// instance has no caller, so hasParent is false and its events are
// simply dropped at drain time.
type eventRoute struct {
	associations map[string]string
	parentState  state.ValueRef
	hasParent    bool
}

func assocMap(as []ast.Association) map[string]string {
	m := make(map[string]string, len(as))
	for _, a := range as {
		m[a.Internal] = a.External
	}
	return m
}

// Emit queues name/payload as an event raised by componentWidget's
// instance, for the next DrainAssociatedEvents to rename and deliver
// (spec.md §4.11 "events emitted by the component are renamed using the
// associated-function mapping before dispatch to the parent").
func (ev *Evaluator) Emit(componentWidget ids.ID, name string, payload state.Value) {
	ev.emitted = append(ev.emitted, EmittedEvent{Component: componentWidget, Name: name, Payload: payload})
}

// DrainAssociatedEvents implements spec.md §4.12 step 4: every event
// queued since the last call is renamed via its instance's
// associated-function mapping and, if the caller's state composite
// exposes a field under the renamed name, written into it -- the same
// "look up field, type-assert *Scalar, Write" delivery
// applyViewMessage uses for a ViewMessage's Recipient, since an
// associated-function target and a ViewMessage recipient both resolve
// to a named field on a state composite. An event with no mapping entry
// for its internal name, or whose external name resolves to no field
// (or a non-Scalar field), is dropped; the spec defines nowhere else
// for it to go.
func (ev *Evaluator) DrainAssociatedEvents() {
	events := ev.emitted
	ev.emitted = nil
	for _, e := range events {
		route, ok := ev.eventRoutes[e.Component]
		if !ok || !route.hasParent {
			continue
		}
		external, ok := route.associations[e.Name]
		if !ok {
			continue
		}
		comp, ok := ev.composites[route.parentState]
		if !ok {
			continue
		}
		field, ok := comp.Field(external)
		if !ok {
			continue
		}
		scalar, ok := field.(*state.Scalar)
		if !ok {
			continue
		}
		scalar.Write(e.Payload)
	}
}
