package home

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	accountdto "caltrack/internal/modules/account/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
)

// Model is the landing page for guests.
type Model struct {
	session accountdto.SessionOutput
	width   int
	height  int
}

func New() Model { return Model{} }

func (m *Model) SetSession(s accountdto.SessionOutput) { m.session = s }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "l", "enter":
			if !m.session.Authenticated {
				return m, nav.Go(navigation.ViewLogin)
			}
			return m, nav.Go(navigation.Landing(navigation.Access{
				Authenticated:   m.session.Authenticated,
				ProfileComplete: m.session.ProfileComplete,
			}))
		case "r":
			return m, nav.Go(navigation.ViewRegister)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("caltrack") + "\n\n")
	sb.WriteString("Count what you eat, one day at a time.\n")
	sb.WriteString(theme.Muted.Render("Answer a short questionnaire to get a daily calorie target,") + "\n")
	sb.WriteString(theme.Muted.Render("then log foods from the nutrition index against it.") + "\n\n")
	if m.session.Authenticated {
		sb.WriteString("Signed in as " + theme.Hot.Render(m.session.Subject) + "\n\n")
		sb.WriteString(theme.Muted.Render("enter: continue"))
	} else {
		sb.WriteString(theme.Muted.Render("l: log in   r: register"))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Pane.Render(sb.String()))
}
