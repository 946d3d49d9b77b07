package blueprint

import (
	"os"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/internal/template/parser"
	"github.com/corvidae/fluxui/pkg/blueprint/pool"
	"github.com/corvidae/fluxui/pkg/perr"
)

// Source is one registered template: either inline text or a
// file-backed path, per spec.md §4.4 "Register component templates by
// name".
type Source struct {
	Name string
	Text string // set when Path == ""
	Path string // set for file-backed sources
}

func (s Source) isFile() bool { return s.Path != "" }

// Compiled is the result of compiling one template source: its root
// blueprints, any globals it declares, and the expression pool backing
// every ast.Idx referenced from the blueprint tree.
type Compiled struct {
	Roots   []*Blueprint
	Globals []ast.Stmt
	Exprs   *pool.ExprPool
	Strings *pool.StringPool
}

// Document collects registered component template sources, compiles
// them into blueprints, and supports reloading file-backed sources
// (spec.md §4.4).
type Document struct {
	sources map[string]Source
	order   []string
	compile map[string]*Compiled

	rootName string
}

// NewDocument returns an empty, unregistered document.
func NewDocument() *Document {
	return &Document{sources: map[string]Source{}, compile: map[string]*Compiled{}}
}

// RegisterInline registers a template-only component whose source is
// inline text (spec.md §6 "template(name, source)").
func (d *Document) RegisterInline(name, text string) {
	d.registerSource(Source{Name: name, Text: text})
}

// RegisterFile registers a file-backed template source. Its path is
// reported by Sources so a caller (e.g. the file-watcher collaborator)
// can watch it.
func (d *Document) RegisterFile(name, path string) {
	d.registerSource(Source{Name: name, Path: path})
}

func (d *Document) registerSource(s Source) {
	if _, exists := d.sources[s.Name]; !exists {
		d.order = append(d.order, s.Name)
	}
	d.sources[s.Name] = s
}

// SetRoot designates which registered template is the root of the
// document (the one Compile/Reload return as the top-level blueprint).
func (d *Document) SetRoot(name string) { d.rootName = name }

// Sources returns the file paths of every file-backed registered
// template, for the file-watcher collaborator named in spec.md §1.
func (d *Document) Sources() []string {
	var out []string
	for _, name := range d.order {
		if s := d.sources[name]; s.isFile() {
			out = append(out, s.Path)
		}
	}
	return out
}

// Lookup returns the compiled blueprint tree for a registered
// component by name, or false if it hasn't been compiled (yet).
func (d *Document) Lookup(name string) (*Compiled, bool) {
	c, ok := d.compile[name]
	return c, ok
}

// Compile lexes, parses, and blueprint-builds every registered source,
// validating that every @component reference names a registered
// template (spec.md §7 "unresolved component reference"). It returns
// the root blueprint/globals pair named by SetRoot.
func (d *Document) Compile() (*Compiled, error) {
	for _, name := range d.order {
		src, err := d.readSource(d.sources[name])
		if err != nil {
			return nil, err
		}
		stmts, exprs, err := parser.Parse(src)
		if err != nil {
			return nil, err
		}
		roots, globals, err := Build(stmts)
		if err != nil {
			return nil, err
		}
		d.compile[name] = &Compiled{Roots: roots, Globals: globals, Exprs: exprs, Strings: pool.NewStringPool()}
	}
	if err := d.validateReferences(); err != nil {
		return nil, err
	}
	root, ok := d.compile[d.rootName]
	if !ok {
		return nil, perr.New(perr.KindCompile, "", 0, perr.ErrUnresolvedComponent)
	}
	return root, nil
}

// Reload re-reads every file-backed template and recompiles the
// document, returning the new root/globals pair or the first parse
// error encountered (spec.md §4.4 "Reload").
func (d *Document) Reload() (*Compiled, error) {
	return d.Compile()
}

func (d *Document) readSource(s Source) (string, error) {
	if !s.isFile() {
		return s.Text, nil
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return "", perr.New(perr.KindCompile, s.Path, 0, err)
	}
	return string(b), nil
}

// validateReferences walks every compiled tree and confirms each
// @component reference names a registered, compiled template,
// catching unresolved references before evaluation (spec.md §7).
func (d *Document) validateReferences() error {
	const maxIncludeDepth = 64
	var walk func(bps []*Blueprint, depth int, chain map[string]bool) error
	walk = func(bps []*Blueprint, depth int, chain map[string]bool) error {
		for _, bp := range bps {
			switch bp.Kind {
			case KindComponentInstance:
				comp, ok := d.compile[bp.ComponentName]
				if !ok {
					return perr.New(perr.KindCompile, "", 0, perr.ErrUnresolvedComponent)
				}
				if chain[bp.ComponentName] {
					return perr.New(perr.KindCompile, "", 0, perr.ErrCyclicInclude)
				}
				if depth+1 > maxIncludeDepth {
					return perr.New(perr.KindCompile, "", 0, perr.ErrCyclicInclude)
				}
				next := map[string]bool{}
				for k := range chain {
					next[k] = true
				}
				next[bp.ComponentName] = true
				if err := walk(comp.Roots, depth+1, next); err != nil {
					return err
				}
				for _, kids := range bp.Slots {
					if err := walk(kids, depth, chain); err != nil {
						return err
					}
				}
			default:
				if err := walk(bp.Children, depth, chain); err != nil {
					return err
				}
				for _, arm := range bp.IfArms {
					if err := walk(arm.Children, depth, chain); err != nil {
						return err
					}
				}
				for _, arm := range bp.CaseArms {
					if err := walk(arm.Children, depth, chain); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	for _, name := range d.order {
		comp := d.compile[name]
		if err := walk(comp.Roots, 0, map[string]bool{name: true}); err != nil {
			return err
		}
	}
	return nil
}
