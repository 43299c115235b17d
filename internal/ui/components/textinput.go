package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for free-text answers.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a focused input of the given character limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return TextInput{Model: ti}
}

// Init starts the cursor blink.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current text.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
	t.Model.CursorEnd()
}

// SetWidth sets the visible width in cells.
func (t *TextInput) SetWidth(w int) {
	t.Model.SetWidth(w)
}
