package elements

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Text is the simplest lipgloss-backed built-in element: it paints its
// resolved bare value, optionally styled by the "color" and "bold"
// attributes. Grounded on the teacher's pkg/components text/label
// pattern of building a lipgloss.Style from props on every render
// rather than caching it, since attribute values can change every
// frame.
type Text struct{}

// NewText returns a new Text element instance.
func NewText() *Text { return &Text{} }

// Paint implements widget.Painter.
func (t *Text) Paint(value string, attrs map[string]string, children []string) string {
	style := lipgloss.NewStyle()
	if color, ok := attrs["color"]; ok && color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	if bold, ok := attrs["bold"]; ok {
		if b, err := strconv.ParseBool(bold); err == nil && b {
			style = style.Bold(true)
		}
	}
	return style.Render(value)
}
