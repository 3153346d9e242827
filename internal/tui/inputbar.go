package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputBar is the single-line input used by the add form and in-place edits.
type InputBar struct {
	input   textinput.Model
	prompt  string
	focused bool
}

// NewInputBar creates an unfocused input bar.
func NewInputBar() *InputBar {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60
	return &InputBar{input: ti}
}

// Focus shows the bar with a prompt and an initial value.
func (m *InputBar) Focus(prompt, placeholder, value string) tea.Cmd {
	m.prompt = prompt
	m.focused = true
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Blur hides the bar and drops its contents.
func (m *InputBar) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
}

// Focused reports whether the bar accepts input.
func (m *InputBar) Focused() bool {
	return m.focused
}

// Value returns the current input.
func (m *InputBar) Value() string {
	return m.input.Value()
}

// Reset clears the input but keeps the bar open.
func (m *InputBar) Reset() {
	m.input.SetValue("")
}

// SetWidth resizes the text field.
func (m *InputBar) SetWidth(w int) {
	if w > 10 {
		m.input.Width = w
	}
}

// Update forwards msg to the text field while focused.
func (m *InputBar) Update(msg tea.Msg) tea.Cmd {
	if !m.focused {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the bar, or nothing when hidden.
func (m *InputBar) View() string {
	if !m.focused {
		return ""
	}
	return inputBoxStyle.Render(promptStyle.Render(m.prompt+" ") + m.input.View())
}
