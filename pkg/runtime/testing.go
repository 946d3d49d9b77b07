package runtime

import (
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// The exports in this file exist so pkg/runtime/runtimetest can drive a
// Runtime without a real terminal or bubbletea.Program, the way the
// teacher's testing/btesting package drives a bubbly.Context directly
// instead of going through a running program. Run() is unsuitable for
// tests because it blocks on tea.NewProgram(...).Run(); these wrappers
// expose the same compile/dispatch/frame/paint steps Run's teaModel
// calls internally.

// Mount compiles the registered root and mounts it, without starting a
// bubbletea program. Equivalent to the first half of Run.
func (rt *Runtime) Mount() error {
	return rt.compileAndMount()
}

// Dispatch routes a synthetic backend Event exactly as teaModel.Update
// would for the corresponding tea.Msg (spec.md §4.12 step 2).
func (rt *Runtime) Dispatch(ev Event) {
	rt.dispatchEvent(ev)
}

// Step runs one frame-cycle iteration (spec.md §4.12 steps 3-7) without
// waiting on bubbletea's tick.
func (rt *Runtime) Step() error {
	return rt.runFrame()
}

// Paint renders the current widget tree to a string (spec.md §4.12 step
// 6), the same rendering teaModel.View produces.
func (rt *Runtime) Paint() string {
	if rt.lastErr != nil && rt.errorTemplateName != "" {
		return rt.renderErrorTemplate(rt.lastErr)
	}
	return rt.paint()
}

// LastError reports the outstanding error the fallback template renders
// for: set by a failed reload (and, under Run, by a frame error) and
// cleared by a successful reload. Step returns its own error without
// recording it here.
func (rt *Runtime) LastError() error {
	return rt.lastErr
}

// StateComposite exposes the root component's state composite for
// assertions against exposed fields directly, bypassing ViewMessage
// delivery. Populated only after Mount (or Run) has been called.
func (rt *Runtime) StateComposite() *state.Composite { return rt.stateComposite }

// Graph exposes the underlying state graph so a test can write to a
// field's Scalar directly and drain the resulting change via Step.
func (rt *Runtime) Graph() *state.Graph { return rt.graph }

// RootNode returns the document root's first top-level widget node.
// MountComponent evaluates the root document's own template directly
// as the tree's roots (it isn't wrapped in a KindComponent node the
// way a nested "@name" instance is), so this is the node a test
// focuses to exercise Key/Focus/Blur routing.
func (rt *Runtime) RootNode() *widget.Node {
	if len(rt.tree.Roots) == 0 {
		return nil
	}
	return rt.tree.Roots[0]
}

// RenderErrorTemplateForTest exercises the fallback-template rendering
// path directly, without having to force a real compile/reload error.
func (rt *Runtime) RenderErrorTemplateForTest(err error) string {
	return rt.renderErrorTemplate(err)
}

// StartWatch starts the file-watcher collaborator outside of Run, for
// tests that exercise reload without running a bubbletea program.
func (rt *Runtime) StartWatch() error {
	w, err := blueprint.NewWatcher(rt.doc)
	if err != nil {
		return err
	}
	rt.watcher = w
	return nil
}

// CheckReload exposes checkReload for tests.
func (rt *Runtime) CheckReload() {
	rt.checkReload()
}
