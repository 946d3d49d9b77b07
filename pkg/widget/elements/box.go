package elements

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Box is a generic container element: attributes control padding,
// border and an optional title; children are stacked vertically.
// Grounded on the teacher's pkg/components Box molecule, generalized
// from typed props to resolved string attributes since node attributes
// in fluxui templates are dynamic expressions, not Go struct literals.
type Box struct{}

// NewBox returns a new Box element instance.
func NewBox() *Box { return &Box{} }

// Paint implements widget.Painter.
func (b *Box) Paint(value string, attrs map[string]string, children []string) string {
	style := lipgloss.NewStyle()

	if pad, ok := attrs["padding"]; ok {
		if n, err := strconv.Atoi(pad); err == nil {
			style = style.Padding(n)
		}
	}
	if border, ok := attrs["border"]; ok {
		if on, err := strconv.ParseBool(border); err == nil && on {
			style = style.Border(lipgloss.NormalBorder())
		}
	}
	if width, ok := attrs["width"]; ok {
		if n, err := strconv.Atoi(width); err == nil && n > 0 {
			style = style.Width(n)
		}
	}

	var body strings.Builder
	if title, ok := attrs["title"]; ok && title != "" {
		body.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
		body.WriteString("\n")
	}
	if value != "" {
		body.WriteString(value)
		if len(children) > 0 {
			body.WriteString("\n")
		}
	}
	body.WriteString(strings.Join(children, "\n"))

	return style.Render(body.String())
}
