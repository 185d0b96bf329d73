package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caltrack/internal/ui/theme"
)

// DropdownSelectMsg is emitted when a result is chosen by enter or click.
type DropdownSelectMsg struct{ Index int }

// DropdownQueryMsg is emitted when the typed text changes.
type DropdownQueryMsg struct{ Text string }

// DropdownClosedMsg is emitted when the result list is dismissed without a
// choice: esc, or a click outside the dropdown.
type DropdownClosedMsg struct{}

const dropdownRows = 8

// Dropdown is a search box with a result list below it. The list closes on
// a choice, on esc, or on a mouse press outside the area the dropdown
// occupies on screen. Top and Left place that area in the coordinates of the
// mouse messages it receives.
type Dropdown struct {
	input    textinput.Model
	items    []string
	cursor   int
	open     bool
	Top      int
	Left     int
	Width    int
	notFound bool
}

func NewDropdown(placeholder string) Dropdown {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Prompt = "/ "
	ti.PromptStyle = theme.Muted
	return Dropdown{input: ti, Width: 48}
}

func (d Dropdown) Open() bool    { return d.open }
func (d Dropdown) Focused() bool { return d.input.Focused() }
func (d Dropdown) Value() string { return d.input.Value() }

func (d *Dropdown) Focus() tea.Cmd {
	d.open = len(d.items) > 0
	return d.input.Focus()
}

// Close hides the list and leaves the search box.
func (d *Dropdown) Close() {
	d.open = false
	d.input.Blur()
}

// Hide folds the list away and keeps the search box focused.
func (d *Dropdown) Hide() { d.open = false }

// Clear empties the box and the results.
func (d *Dropdown) Clear() {
	d.input.SetValue("")
	d.items = nil
	d.cursor = 0
	d.notFound = false
	d.open = false
}

// SetItems shows labels as the results for the current text. An empty set
// keeps the list open with a "no results" line so the user sees the search
// ran.
func (d *Dropdown) SetItems(labels []string) {
	d.items = labels
	d.cursor = 0
	d.notFound = len(labels) == 0
	d.open = d.input.Focused()
}

// Height is the number of terminal rows the dropdown occupies.
func (d Dropdown) Height() int {
	return 1 + d.listRows()
}

func (d Dropdown) listRows() int {
	if !d.open {
		return 0
	}
	if d.notFound {
		return 1
	}
	return min(len(d.items), dropdownRows)
}

// Contains reports whether the cell (x, y) lies inside the dropdown.
func (d Dropdown) Contains(x, y int) bool {
	return x >= d.Left && x < d.Left+d.Width && y >= d.Top && y < d.Top+d.Height()
}

func (d Dropdown) Update(msg tea.Msg) (Dropdown, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return d, nil
		}
		if !d.Contains(msg.X, msg.Y) {
			if !d.open && !d.input.Focused() {
				return d, nil
			}
			d.Close()
			return d, func() tea.Msg { return DropdownClosedMsg{} }
		}
		row := msg.Y - d.Top - 1
		if row < 0 {
			d.open = len(d.items) > 0
			return d, d.input.Focus()
		}
		if idx := d.offset() + row; !d.notFound && idx < len(d.items) {
			return d.choose(idx)
		}
		return d, nil

	case tea.KeyMsg:
		if !d.input.Focused() {
			return d, nil
		}
		switch msg.String() {
		case "esc":
			d.Close()
			return d, func() tea.Msg { return DropdownClosedMsg{} }
		case "down", "ctrl+n":
			if d.open && d.cursor < len(d.items)-1 {
				d.cursor++
			}
			return d, nil
		case "up", "ctrl+p":
			if d.open && d.cursor > 0 {
				d.cursor--
			}
			return d, nil
		case "enter":
			if d.open && !d.notFound && len(d.items) > 0 {
				return d.choose(d.cursor)
			}
			return d, nil
		}
		before := d.input.Value()
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		if after := d.input.Value(); after != before {
			query := func() tea.Msg { return DropdownQueryMsg{Text: after} }
			return d, tea.Batch(cmd, query)
		}
		return d, cmd
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d Dropdown) choose(idx int) (Dropdown, tea.Cmd) {
	d.open = false
	d.input.Blur()
	return d, func() tea.Msg { return DropdownSelectMsg{Index: idx} }
}

// offset is the index of the first visible item, keeping the cursor in view.
func (d Dropdown) offset() int {
	if d.cursor < dropdownRows {
		return 0
	}
	return d.cursor - dropdownRows + 1
}

func (d Dropdown) View() string {
	row := lipgloss.NewStyle().Width(d.Width).MaxWidth(d.Width)
	lines := []string{row.Render(d.input.View())}
	if d.open {
		if d.notFound {
			lines = append(lines, row.Inherit(theme.Muted).Render("  no results"))
		}
		start := d.offset()
		end := min(len(d.items), start+dropdownRows)
		for i := start; i < end && !d.notFound; i++ {
			style := row.Foreground(theme.Text).Background(theme.Surface0)
			if i == d.cursor {
				style = row.Inherit(theme.Selected)
			}
			lines = append(lines, style.Render("  "+d.items[i]))
		}
	}
	return strings.Join(lines, "\n")
}
