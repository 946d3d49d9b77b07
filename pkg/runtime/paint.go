package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// paint implements spec.md §4.12 step 6 ("run the layout/paint/present
// cycle"): it walks the widget tree depth-first, painting each element
// through its Painter capability (or joining children's output for a
// plain container) and returns the root-level join.
func (rt *Runtime) paint() string {
	var parts []string
	for _, n := range rt.tree.Roots {
		parts = append(parts, rt.paintNode(n))
	}
	return strings.Join(parts, "\n")
}

func (rt *Runtime) paintNode(n *widget.Node) string {
	children := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, rt.paintNode(c))
	}

	switch n.Kind {
	case widget.KindElement:
		return rt.paintElement(n, children)
	default:
		// for/if/switch/component/slot nodes carry no painting of their
		// own (spec.md §4.10 names them structural, not visual); stack
		// their children's output.
		return strings.Join(children, "\n")
	}
}

func (rt *Runtime) paintElement(n *widget.Node, children []string) string {
	value := ""
	if v, ok := rt.ev.Attrs.Get(n.ID, ""); ok {
		value = stringify(v.Value())
	}
	attrs := map[string]string{}
	if names := rt.attrNamesFor(n); names != nil {
		for _, name := range names {
			if v, ok := rt.ev.Attrs.Get(n.ID, name); ok {
				attrs[name] = stringify(v.Value())
			}
		}
	}

	if p, ok := n.Element.(widget.Painter); ok {
		return p.Paint(value, attrs, children)
	}
	if value != "" {
		return strings.Join(append([]string{value}, children...), "\n")
	}
	return strings.Join(children, "\n")
}

// builtinAttrs records, per element name, which attribute keys that
// element's Painter reads. paint fetches only these keys (plus the
// bare value), so an attribute not listed here never reaches Paint.
// Registered once per built-in element; callers of Factory.Register
// for their own elements extend this through the package-level
// RegisterAttrs.
var builtinAttrs = map[string][]string{
	"text":  {"color", "bold"},
	"box":   {"padding", "border", "width", "title"},
	"input": {"placeholder", "charlimit"},
}

func (rt *Runtime) attrNamesFor(n *widget.Node) []string {
	return builtinAttrs[n.ElementName]
}

// RegisterAttrs extends attrNamesFor's lookup table for a custom
// element name so its attributes reach Paint.
func RegisterAttrs(elementName string, attrNames []string) {
	builtinAttrs[elementName] = attrNames
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

// renderErrorTemplate paints the registered fallback template instead
// of the live tree when reload fails to compile (spec.md §4 Open
// Question (c)), falling back further to a built-in minimal message if
// no custom error template was registered.
func (rt *Runtime) renderErrorTemplate(err error) string {
	tmpl, ok := rt.doc.Lookup(rt.errorTemplateName)
	if !ok {
		return fmt.Sprintf("fluxui: %v", err)
	}
	errTree := widget.NewTree()
	if mountErr := rt.ev.Mount(tmpl, errTree); mountErr != nil {
		return fmt.Sprintf("fluxui: %v", err)
	}
	var parts []string
	for _, n := range errTree.Roots {
		parts = append(parts, rt.paintNode(n))
	}
	return strings.Join(parts, "\n")
}
