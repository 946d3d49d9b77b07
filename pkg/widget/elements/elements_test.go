package elements_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/widget/elements"
)

func TestFactoryCreatesBuiltins(t *testing.T) {
	f := elements.NewFactory()

	for _, name := range []string{"text", "box", "input"} {
		inst, err := f.Create(name)
		require.NoError(t, err)
		assert.NotNil(t, inst)
	}
}

func TestFactoryRejectsUnknownName(t *testing.T) {
	f := elements.NewFactory()
	_, err := f.Create("nope")
	assert.Error(t, err)
}

func TestFactoryRegisterAddsElement(t *testing.T) {
	f := elements.NewFactory()
	f.Register("gauge", func() any { return "a gauge" })

	inst, err := f.Create("gauge")
	require.NoError(t, err)
	assert.Equal(t, "a gauge", inst)
}

func TestTextPaintRendersPlainValueByDefault(t *testing.T) {
	txt := elements.NewText()
	out := txt.Paint("hello", nil, nil)
	assert.Contains(t, out, "hello")
}

func TestTextPaintAppliesColorAndBold(t *testing.T) {
	txt := elements.NewText()
	out := txt.Paint("hi", map[string]string{"color": "205", "bold": "true"}, nil)
	assert.Contains(t, out, "hi")
}

func TestBoxPaintJoinsValueTitleAndChildren(t *testing.T) {
	box := elements.NewBox()
	out := box.Paint("body", map[string]string{"title": "Header"}, []string{"child-one", "child-two"})

	assert.Contains(t, out, "Header")
	assert.Contains(t, out, "body")
	assert.Contains(t, out, "child-one")
	assert.Contains(t, out, "child-two")
}

func TestBoxPaintAppliesBorderAndPadding(t *testing.T) {
	box := elements.NewBox()
	out := box.Paint("x", map[string]string{"border": "true", "padding": "1"}, nil)
	assert.Contains(t, out, "x")
}

func TestInputUpdateIgnoredWhenBlurred(t *testing.T) {
	in := elements.NewInput()
	cmd := in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.Nil(t, cmd)
	assert.Empty(t, in.Value())
}

func TestInputUpdateAppliesWhenFocused(t *testing.T) {
	in := elements.NewInput()
	in.Focus()
	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.Equal(t, "a", in.Value())
}

func TestInputBlurStopsAcceptingInput(t *testing.T) {
	in := elements.NewInput()
	in.Focus()
	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	in.Blur()
	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	assert.Equal(t, "a", in.Value())
}

func TestInputPaintSeedsValueFromAttribute(t *testing.T) {
	in := elements.NewInput()
	out := in.Paint("seeded", map[string]string{"placeholder": "type here"}, nil)
	assert.Equal(t, "seeded", in.Value())
	assert.Contains(t, out, "seeded")
}

func TestInputPaintIgnoresEmptyValueAttribute(t *testing.T) {
	in := elements.NewInput()
	in.Focus()
	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	in.Paint("", nil, nil)
	assert.Equal(t, "x", in.Value())
}
