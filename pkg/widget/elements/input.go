package elements

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Input is the one interactive built-in element, wrapping
// bubbles/textinput for cursor handling. Grounded on the teacher's
// pkg/components Input molecule (pkg/components/input.go), stripped of
// the Ref/Watch plumbing since fluxui's own state graph already owns
// the reactive value — attribute resolution feeds Input its current
// value and placeholder every frame, and Update forwards raw backend
// messages when the owning widget is focused.
type Input struct {
	model   textinput.Model
	focused bool
}

// NewInput returns a new Input element instance with bubbles' default
// textinput model.
func NewInput() *Input {
	return &Input{model: textinput.New()}
}

// Focus marks the element as the frame's focused input, per spec.md
// §4.12 step 2's "Key/Focus/Blur -> focused component only" routing.
func (in *Input) Focus() { in.focused = true; in.model.Focus() }

// Blur releases focus.
func (in *Input) Blur() { in.focused = false; in.model.Blur() }

// Update implements widget.Updater: it forwards msg to the wrapped
// textinput only while focused, returning the follow-up tea.Cmd boxed
// as any (pkg/runtime discards the returned value).
func (in *Input) Update(msg any) any {
	if !in.focused {
		return nil
	}
	tm, ok := msg.(tea.Msg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	in.model, cmd = in.model.Update(tm)
	return cmd
}

// Value returns the current text content.
func (in *Input) Value() string { return in.model.Value() }

// Paint implements widget.Painter. The bare value seeds the
// textinput's content when it differs from what the user is currently
// typing; "placeholder" and "charlimit" configure display.
func (in *Input) Paint(value string, attrs map[string]string, children []string) string {
	if value != "" && value != in.model.Value() {
		in.model.SetValue(value)
	}
	if ph, ok := attrs["placeholder"]; ok {
		in.model.Placeholder = ph
	}
	if limit, ok := attrs["charlimit"]; ok {
		if n, err := strconv.Atoi(limit); err == nil {
			in.model.CharLimit = n
		}
	}

	style := lipgloss.NewStyle()
	if in.focused {
		style = style.Foreground(lipgloss.Color("205"))
	}
	return style.Render(in.model.View())
}
