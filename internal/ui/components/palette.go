package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caltrack/internal/ui/theme"
)

// PaletteCommand is one command the palette offers.
type PaletteCommand struct {
	Name  string
	Usage string
}

func (c PaletteCommand) String() string {
	if c.Usage == "" {
		return c.Name
	}
	return c.Name + " " + c.Usage
}

// PaletteSubmitMsg carries a confirmed command line split into the command
// name and its arguments. Name is empty for a blank line.
type PaletteSubmitMsg struct {
	Name string
	Args []string
}

type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

const paletteHintLimit = 5

// Palette is the ":" command line. Tab completes the command name when the
// typed prefix names exactly one command.
type Palette struct {
	input    textinput.Model
	commands []PaletteCommand
	visible  bool
	width    int
}

func NewPalette(commands ...PaletteCommand) Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "command"
	ti.CharLimit = 96
	return Palette{input: ti, commands: commands}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty line and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case tea.KeyEnter:
			submit := ParsePaletteLine(p.input.Value())
			p.close()
			return p, func() tea.Msg { return submit }
		case tea.KeyTab:
			p.complete()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// ParsePaletteLine splits a command line into name and arguments.
func ParsePaletteLine(line string) PaletteSubmitMsg {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return PaletteSubmitMsg{}
	}
	return PaletteSubmitMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}
}

func (p *Palette) complete() {
	value := p.input.Value()
	if strings.Contains(value, " ") {
		return
	}
	matches := p.Matching()
	if len(matches) != 1 {
		return
	}
	p.input.SetValue(matches[0].Name + " ")
	p.input.CursorEnd()
}

// Matching lists the commands the typed line can still become: those whose
// name starts with the first word while it is being typed, or the command
// it names once arguments follow.
func (p Palette) Matching() []PaletteCommand {
	value := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	word, _, hasArgs := strings.Cut(value, " ")
	var out []PaletteCommand
	for _, c := range p.commands {
		if hasArgs && c.Name != word {
			continue
		}
		if !strings.HasPrefix(c.Name, word) {
			continue
		}
		out = append(out, c)
		if len(out) == paletteHintLimit {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if matching := p.Matching(); len(matching) > 0 {
		sb.WriteString("\n")
		for _, c := range matching {
			sb.WriteString("  " + c.Name)
			if c.Usage != "" {
				sb.WriteString(" " + usageStyle.Render(c.Usage))
			}
			sb.WriteString("\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
