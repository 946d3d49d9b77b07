package runtime

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// teaModel adapts Runtime to tea.Model. bubbletea owns the actual
// select loop reading from the terminal and the inbound ViewMessage
// channel; this file is the seam spec.md §4.12's eight frame-cycle
// steps run inside, triggered once per incoming tea.Msg and once per
// tickMsg for components with nothing pending (spec.md §4.12 step 8
// "sleep to meet the target frame interval" is bubbletea's own
// render-loop pacing plus this explicit tick to force a frame when the
// terminal itself produced nothing).
type teaModel struct {
	rt *Runtime
}

// tickMsg paces the frame cycle independently of terminal input,
// grounded on the teacher's asyncWrapperModel tick (pkg/bubbly/runner.go)
// generalized from an opt-in async mode into the one always-on frame
// clock spec.md §4.12 requires.
type tickMsg time.Time

func (m *teaModel) tickCmd() tea.Cmd {
	return tea.Tick(m.rt.frameInterval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *teaModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.rt.reporter.Report("runtime.frame", panicError{r})
		}
	}()

	var cmds []tea.Cmd

	switch tm := msg.(type) {
	case tickMsg:
		m.rt.deliverMessages()
		cmds = append(cmds, m.tickCmd())
	case tea.KeyMsg:
		m.rt.dispatchEvent(Event{Kind: EventKey, Key: KeyEvent{Text: tm.String(), Runes: tm.Runes, Alt: tm.Alt}})
	case tea.MouseMsg:
		m.rt.dispatchEvent(Event{Kind: EventMouse, Mouse: MouseEvent{
			X: tm.X, Y: tm.Y,
			Action: tm.Action.String(),
			Button: tm.Button.String(),
		}})
	case tea.WindowSizeMsg:
		m.rt.dispatchEvent(Event{Kind: EventResize, Size: Size{Width: tm.Width, Height: tm.Height}})
	case tea.FocusMsg:
		m.rt.dispatchEvent(Event{Kind: EventFocus})
	case tea.BlurMsg:
		m.rt.dispatchEvent(Event{Kind: EventBlur})
	}

	if err := m.rt.runFrame(); err != nil {
		m.rt.reporter.Report("runtime.frame", err)
		m.rt.lastErr = err
	}

	m.rt.metrics.observeFrame(time.Since(start))

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m *teaModel) View() string {
	if m.rt.lastErr != nil && m.rt.errorTemplateName != "" {
		return m.rt.renderErrorTemplate(m.rt.lastErr)
	}
	return m.rt.paint()
}

type panicError struct{ v any }

func (p panicError) Error() string { return "recovered panic: " + toString(p.v) }

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "non-string panic value"
}
