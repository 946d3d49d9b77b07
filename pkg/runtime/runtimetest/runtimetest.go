// Package runtimetest provides testing helpers for fluxui runtimes,
// the frame-cycle analogue of the teacher's testing/btesting package:
// where btesting drives a bubbly.Context's lifecycle hooks directly
// without a running bubbletea program, Harness drives a
// runtime.Runtime's frame cycle directly without a running terminal.
package runtimetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/runtime"
)

// Harness wraps a runtime.Runtime for scripted, terminal-free testing:
// mount once, then alternate Send/Step/Frame calls and assert on
// Frame()'s rendered output or StateComposite's exposed fields.
type Harness struct {
	t  *testing.T
	rt *runtime.Runtime
}

// New mounts rt's registered root and returns a Harness ready to
// script events against it. rt must already have SetRoot called.
func New(t *testing.T, rt *runtime.Runtime) *Harness {
	t.Helper()
	require.NoError(t, rt.Mount(), "runtimetest: mount root")
	return &Harness{t: t, rt: rt}
}

// Send dispatches a backend event and runs one frame-cycle iteration,
// mirroring what teaModel.Update does for one incoming tea.Msg
// (spec.md §4.12 steps 2-7).
func (h *Harness) Send(ev runtime.Event) {
	h.t.Helper()
	h.rt.Dispatch(ev)
	require.NoError(h.t, h.rt.Step(), "runtimetest: step after dispatch")
}

// Key is a convenience for Send(runtime.Event{Kind: EventKey, ...}),
// scripting a single keystroke the way a user typing at the focused
// element would produce.
func (h *Harness) Key(text string) {
	h.Send(runtime.Event{Kind: runtime.EventKey, Key: runtime.KeyEvent{Text: text, Runes: []rune(text)}})
}

// Tick runs one frame-cycle iteration with nothing to dispatch,
// equivalent to a bare tickMsg reaching teaModel.Update.
func (h *Harness) Tick() {
	h.t.Helper()
	require.NoError(h.t, h.rt.Step(), "runtimetest: tick")
}

// Resize dispatches a terminal resize.
func (h *Harness) Resize(width, height int) {
	h.Send(runtime.Event{Kind: runtime.EventResize, Size: runtime.Size{Width: width, Height: height}})
}

// Frame returns the currently painted view, the same string
// teaModel.View would have returned after the last Send/Tick.
func (h *Harness) Frame() string {
	return h.rt.Paint()
}

// Runtime returns the wrapped runtime for assertions runtimetest
// doesn't wrap directly (e.g. StateComposite field lookups).
func (h *Harness) Runtime() *runtime.Runtime {
	return h.rt
}
