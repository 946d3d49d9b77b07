// Package devtools captures widget-tree snapshots for external
// inspection, grounded on the teacher's pkg/bubbly/devtools package:
// where the teacher's collector.go walks a component tree into
// ComponentSnapshot values carrying state/props/refs, this package
// walks fluxui's widget.Tree into WidgetSnapshot values carrying
// resolved attributes and (for component instances) exposed state
// fields, repointed at widget-tree identity instead of component
// identity since fluxui has no separate component-instance registry
// of its own (spec.md §4.10's widget tree already is that registry).
package devtools

import (
	"bytes"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/corvidae/fluxui/pkg/evaluator"
	"github.com/corvidae/fluxui/pkg/state"
	"github.com/corvidae/fluxui/pkg/widget"
)

// WidgetSnapshot is one widget node's point-in-time inspection record.
type WidgetSnapshot struct {
	ID          string            `msgpack:"id"`
	Kind        string            `msgpack:"kind"`
	ElementName string            `msgpack:"element_name,omitempty"`
	Value       string            `msgpack:"value,omitempty"`
	Attributes  map[string]string `msgpack:"attributes,omitempty"`
	State       map[string]string `msgpack:"state,omitempty"`
	Children    []*WidgetSnapshot `msgpack:"children,omitempty"`
}

var kindNames = map[widget.Kind]string{
	widget.KindElement:   "element",
	widget.KindFor:       "for",
	widget.KindIfArm:     "if",
	widget.KindSwitchArm: "switch",
	widget.KindComponent: "component",
	widget.KindSlot:      "slot",
}

// Capture walks tree's roots into a slice of WidgetSnapshot, resolving
// each node's attributes through attrs (pkg/evaluator's
// AttributeStore) and, for KindComponent nodes, the exposed fields of
// their state composite.
func Capture(tree *widget.Tree, attrs *evaluator.AttributeStore) []*WidgetSnapshot {
	out := make([]*WidgetSnapshot, 0, len(tree.Roots))
	for _, n := range tree.Roots {
		out = append(out, captureNode(n, attrs))
	}
	return out
}

func captureNode(n *widget.Node, attrs *evaluator.AttributeStore) *WidgetSnapshot {
	snap := &WidgetSnapshot{
		ID:          n.ID.String(),
		Kind:        kindNames[n.Kind],
		ElementName: n.ElementName,
	}

	if v, ok := attrs.Get(n.ID, ""); ok {
		snap.Value = stringify(v.Value())
	}
	for _, key := range attrs.Keys(n.ID) {
		if key == "" {
			continue
		}
		v, ok := attrs.Get(n.ID, key)
		if !ok {
			continue
		}
		if snap.Attributes == nil {
			snap.Attributes = map[string]string{}
		}
		snap.Attributes[key] = stringify(v.Value())
	}

	if n.Kind == widget.KindComponent && n.StateComposite != nil {
		snap.State = captureComposite(n.StateComposite)
	}

	for _, c := range n.Children {
		snap.Children = append(snap.Children, captureNode(c, attrs))
	}
	return snap
}

func captureComposite(c *state.Composite) map[string]string {
	out := map[string]string{}
	for _, name := range c.FieldNames() {
		field, ok := c.Field(name)
		if !ok {
			continue
		}
		if scalar, ok := field.(*state.Scalar); ok {
			out[name] = stringify(scalar.Read())
		}
	}
	return out
}

// stringify necessarily duplicates pkg/runtime/paint.go's unexported
// function of the same logic (and, transitively, pkg/evaluator's
// switch.go one): none of these packages export a display-string
// conversion, and the conversion is simple enough that adding an
// import between unrelated packages purely to share a six-line switch
// would be the wrong trade.
func stringify(v state.Value) string {
	switch v.Kind {
	case state.KindString:
		return v.Str
	case state.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
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

// Marshal encodes a captured snapshot slice to MessagePack, grounded
// on the teacher's formats.go MessagePackFormat (same
// encoder-into-buffer shape, generalized from the teacher's ExportData
// envelope to a bare []*WidgetSnapshot since fluxui's inspector has no
// equivalent multi-section export format to wrap it in).
func Marshal(snapshots []*WidgetSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(snapshots); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack bytes produced by Marshal.
func Unmarshal(b []byte) ([]*WidgetSnapshot, error) {
	var snapshots []*WidgetSnapshot
	if err := msgpack.NewDecoder(bytes.NewReader(b)).Decode(&snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}
