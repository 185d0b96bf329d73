package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caltrack/internal/ui/theme"
)

// Field describes one line of a Form.
type Field struct {
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

// Form is a vertical stack of labelled text inputs with one focused at a
// time. tab/down and shift+tab/up move the focus; enter moves to the next
// field and reports Submitted on the last one.
type Form struct {
	fields []Field
	inputs []textinput.Model
	focus  int
}

func NewForm(fields ...Field) Form {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 128
		if f.CharLimit > 0 {
			ti.CharLimit = f.CharLimit
		}
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.PromptStyle = theme.Muted
		inputs[i] = ti
	}
	return Form{fields: fields, inputs: inputs}
}

// Focus focuses the first field.
func (f *Form) Focus() tea.Cmd {
	return f.focusAt(0)
}

func (f *Form) Blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *Form) focusAt(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j != f.focus {
			f.inputs[j].Blur()
		}
	}
	return f.inputs[f.focus].Focus()
}

// Value returns the text of field i, trimmed unless the field is secret.
func (f Form) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	if f.fields[i].Secret {
		return f.inputs[i].Value()
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

// Focused reports whether a field holds the keyboard.
func (f Form) Focused() bool {
	return len(f.inputs) > 0 && f.inputs[f.focus].Focused()
}

func (f *Form) SetValue(i int, v string) {
	if i >= 0 && i < len(f.inputs) {
		f.inputs[i].SetValue(v)
	}
}

// Reset clears every field and focuses the first.
func (f *Form) Reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	return f.Focus()
}

// Update returns submitted when enter is pressed on the last field.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f, f.focusAt(f.focus + 1), false
		case "shift+tab", "up":
			return f, f.focusAt(f.focus - 1), false
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return f, nil, true
			}
			return f, f.focusAt(f.focus + 1), false
		}
	}
	if len(f.inputs) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f Form) View() string {
	width := 0
	for _, field := range f.fields {
		width = max(width, lipgloss.Width(field.Label))
	}
	label := lipgloss.NewStyle().Width(width + 2)
	rows := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		style := label.Foreground(theme.Subtext0)
		if i == f.focus && in.Focused() {
			style = label.Foreground(theme.Lavender)
		}
		rows[i] = style.Render(f.fields[i].Label) + in.View()
	}
	return strings.Join(rows, "\n")
}
