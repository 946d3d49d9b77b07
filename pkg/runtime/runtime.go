// Package runtime implements the frame cycle of spec.md §4.12: it
// drives the blueprint/evaluator/widget-tree pipeline as a bubbletea
// program, adapting tea.Msg into the Event vocabulary of spec.md §6 and
// applying the eight-step per-frame sequence on every tick.
package runtime

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/evaluator"
	"github.com/corvidae/fluxui/pkg/perr"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/subscription"
	"github.com/corvidae/fluxui/pkg/widget"
	"github.com/corvidae/fluxui/pkg/widget/elements"
)

// ViewMessage is delivered into the runtime's inbound channel by an
// Emitter (spec.md §6 "emitter() -> Emitter ... delivers ViewMessage
// {recipient, payload}").
type ViewMessage struct {
	Recipient string
	Payload   any
}

// Emitter hands view-originated messages to the runtime from outside
// the frame loop (e.g. a goroutine streaming data in).
type Emitter interface {
	Emit(ViewMessage)
}

type emitter struct{ inbound chan<- ViewMessage }

func (e emitter) Emit(m ViewMessage) { e.inbound <- m }

// componentDef is what Component/Prototype registration records for a
// named template beyond its source text (spec.md §6 "component(name,
// source, behavior, initial_state)").
type componentDef struct {
	behavior func(stateComposite, attrsComposite *state.Composite, emit func(name string, payload state.Value))
}

// RunOption configures a Runtime at construction time, the same
// functional-options shape as the teacher's RunOption
// (pkg/bubbly/runner_options.go), generalized from configuring a
// bubbletea.Program directly to configuring the fluxui frame cycle
// wrapped around one.
type RunOption func(*Runtime)

// WithFPS sets the target frame interval (spec.md §6 "frames_per_second(n)").
// Default is 60.
func WithFPS(fps int) RunOption {
	return func(rt *Runtime) { rt.fps = fps }
}

// WithAltScreen enables bubbletea's alternate screen buffer.
func WithAltScreen() RunOption {
	return func(rt *Runtime) { rt.altScreen = true }
}

// WithMouseAllMotion enables bubbletea's all-motion mouse reporting.
func WithMouseAllMotion() RunOption {
	return func(rt *Runtime) { rt.mouseAllMotion = true }
}

// WithErrorTemplate registers the fallback template rendered when a
// reload fails to compile (spec.md §4 Open Question (c)). name must
// already have been registered via Template/Component.
func WithErrorTemplate(name string) RunOption {
	return func(rt *Runtime) { rt.errorTemplateName = name }
}

// WithMetricsRegisterer wires frame-cycle Prometheus metrics (spec.md
// §10.1) into reg instead of the default registry.
func WithMetricsRegisterer(reg prometheus.Registerer) RunOption {
	return func(rt *Runtime) { rt.metrics = newMetrics(reg) }
}

// WithErrorReporter installs a collaborator notified of recovered
// panics and backend errors (spec.md §10.1); pkg/runtime/sentryreport
// provides one backed by Sentry.
func WithErrorReporter(r ErrorReporter) RunOption {
	return func(rt *Runtime) { rt.reporter = r }
}

// Runtime hosts one document as a running terminal application: it
// owns the state graph, subscription registry, widget tree and
// evaluator, and drives them through bubbletea's event loop.
type Runtime struct {
	doc     *blueprint.Document
	graph   *state.Graph
	subs    *subscription.Registry
	factory *elements.Factory
	ev      *evaluator.Evaluator
	tree    *widget.Tree

	fps               int
	altScreen         bool
	mouseAllMotion    bool
	errorTemplateName string
	reporter          ErrorReporter
	metrics           *metrics

	inbound  chan ViewMessage
	rootName string
	watcher  *blueprint.Watcher

	componentDefs map[string]componentDef

	stateComposite *state.Composite
	attrsComposite *state.Composite

	focused  widget.Node
	hasFocus bool

	lastErr error
}

// New returns a Runtime ready for Template/Component registration.
func New(opts ...RunOption) *Runtime {
	rt := &Runtime{
		doc:           blueprint.NewDocument(),
		graph:         state.NewGraph(),
		subs:          subscription.New(),
		factory:       elements.NewFactory(),
		tree:          widget.NewTree(),
		fps:           60,
		reporter:      noopReporter{},
		inbound:       make(chan ViewMessage, 64),
		componentDefs: map[string]componentDef{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.metrics == nil {
		rt.metrics = newMetrics(prometheus.NewRegistry())
	}
	rt.ev = evaluator.New(rt.doc, rt.graph, rt.subs, rt.factory)
	rt.ev.ComponentInit = map[string]func(*state.Composite, *state.Composite, func(string, state.Value)){}
	return rt
}

// Template registers a template-only named blueprint (spec.md §6
// "template(name, source)").
func (rt *Runtime) Template(name, source string) {
	rt.doc.RegisterInline(name, source)
}

// TemplateFile registers a file-backed named blueprint, watchable via
// pkg/blueprint's file-watcher collaborator.
func (rt *Runtime) TemplateFile(name, path string) {
	rt.doc.RegisterFile(name, path)
}

// Component registers a named blueprint with a behavior hook run once
// per instance right after its state/attributes composites are
// allocated and before its template first evaluates (spec.md §6
// "component(name, source, behavior, initial_state) -> component_id").
// initialState seeds the instance's exposed state fields; behavior may
// additionally wire derived fields or event handlers onto the
// composites it receives, and may call emit to raise a named event
// against this instance (spec.md §4.11 "events emitted by the
// component are renamed using the associated-function mapping before
// dispatch to the parent" — the rename/dispatch itself happens at the
// next frame's step 4, not synchronously here).
func (rt *Runtime) Component(name, source string, initialState func() map[string]state.Value, behavior func(stateComposite, attrsComposite *state.Composite, emit func(name string, payload state.Value))) string {
	rt.doc.RegisterInline(name, source)
	rt.componentDefs[name] = componentDef{behavior: behavior}
	rt.ev.ComponentInit[name] = func(sc, ac *state.Composite, emit func(string, state.Value)) {
		if initialState != nil {
			for field, v := range initialState() {
				sc.Expose(field, state.NewScalar(rt.graph, v))
			}
		}
		if behavior != nil {
			behavior(sc, ac, emit)
		}
	}
	return name
}

// Prototype registers a named blueprint, callable multiple times via
// "@name" node references (spec.md §6 "prototype(name, source, factory,
// state_factory)"): stateFactory is invoked once per instance, exactly
// like Component's initialState, the distinction being purely that a
// prototype is expected to be referenced more than once in a document
// while a plain Component conventionally backs the root.
func (rt *Runtime) Prototype(name, source string, stateFactory func() map[string]state.Value, behavior func(stateComposite, attrsComposite *state.Composite, emit func(name string, payload state.Value))) {
	rt.Component(name, source, stateFactory, behavior)
}

// SetRoot designates which registered template the runtime drives as
// its top-level view.
func (rt *Runtime) SetRoot(name string) {
	rt.rootName = name
	rt.doc.SetRoot(name)
}

// Emitter returns a handle other goroutines use to deliver
// ViewMessages into the frame loop's inbound channel.
func (rt *Runtime) Emitter() Emitter { return emitter{inbound: rt.inbound} }

// FramesPerSecond reports the configured target frame rate.
func (rt *Runtime) FramesPerSecond() int { return rt.fps }

// frameInterval is the target sleep-to interval for one frame (spec.md
// §4.12 step 8).
func (rt *Runtime) frameInterval() time.Duration {
	if rt.fps <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(rt.fps)
}

// Run compiles the registered root and blocks running the bubbletea
// program until the program exits (spec.md §6 "Exit codes ... 0 normal
// stop, non-zero on compile or backend error").
func (rt *Runtime) Run() error {
	if err := rt.compileAndMount(); err != nil {
		return perr.New(perr.KindCompile, "", 0, err)
	}
	if len(rt.doc.Sources()) > 0 {
		w, err := blueprint.NewWatcher(rt.doc)
		if err != nil {
			rt.reporter.Report("runtime", err)
		} else {
			rt.watcher = w
		}
	}

	var teaOpts []tea.ProgramOption
	if rt.altScreen {
		teaOpts = append(teaOpts, tea.WithAltScreen())
	}
	if rt.mouseAllMotion {
		teaOpts = append(teaOpts, tea.WithMouseAllMotion())
	}
	if rt.fps > 0 {
		teaOpts = append(teaOpts, tea.WithFPS(rt.fps))
	}

	p := tea.NewProgram(&teaModel{rt: rt}, teaOpts...)
	_, err := p.Run()
	if rt.watcher != nil {
		rt.watcher.Close()
	}
	if err != nil {
		rt.reporter.Report("runtime", err)
		return perr.New(perr.KindBackend, "", 0, err)
	}
	return nil
}

// compileAndMount compiles the document and mounts its root as a
// top-level component instance (Evaluator.MountComponent), giving the
// whole application the same state/attributes composite shape as any
// nested "@name" instance.
func (rt *Runtime) compileAndMount() error {
	return rt.mountFrom(rt.doc.Compile)
}

// reloadDocument re-reads file-backed sources and remounts the root
// from scratch, per spec.md §4.4 Reload: a new state/attributes
// composite pair is allocated and re-seeded through ComponentInit,
// which intentionally loses whatever the previous mount's live state
// held — a file-watched reload is a development aid, not a
// state-preserving hot swap.
func (rt *Runtime) reloadDocument() error {
	return rt.mountFrom(rt.doc.Reload)
}

func (rt *Runtime) mountFrom(compile func() (*blueprint.Compiled, error)) error {
	compiled, err := compile()
	if err != nil {
		return err
	}
	rt.stateComposite = state.NewComposite(rt.graph)
	rt.attrsComposite = state.NewComposite(rt.graph)
	if init, ok := rt.ev.ComponentInit[rt.rootName]; ok {
		// The document root has no caller to dispatch an associated-function
		// event to, so its emit closure is a no-op.
		init(rt.stateComposite, rt.attrsComposite, func(string, state.Value) {})
	}
	rt.tree = widget.NewTree()
	return rt.ev.MountComponent(compiled, rt.tree, rt.stateComposite, rt.attrsComposite)
}

// checkReload drains the file-watcher's trigger signal (spec.md §1)
// without blocking: a pending Changed() triggers reloadDocument, and
// a reload failure routes the frame into the error-template fallback
// the same way a dispatch/reconcile error would (model.go's View).
func (rt *Runtime) checkReload() {
	if rt.watcher == nil {
		return
	}
	select {
	case <-rt.watcher.Changed():
		if err := rt.reloadDocument(); err != nil {
			rt.lastErr = err
			rt.reporter.Report("runtime.reload", err)
		} else {
			rt.lastErr = nil
		}
	case err := <-rt.watcher.Errors():
		rt.reporter.Report("runtime.watch", err)
	default:
	}
}
