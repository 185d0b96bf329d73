// Package auth holds the login and registration forms.
package auth

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	accountdto "caltrack/internal/modules/account/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
)

type AccountPort interface {
	Login(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	Register(ctx context.Context, input accountdto.RegisterInput) error
}

type loginDoneMsg struct {
	session accountdto.SessionOutput
	err     error
}

type LoginModel struct {
	ctx  context.Context
	port AccountPort
	form components.Form
	busy bool
	err  string
}

func NewLogin(ctx context.Context, port AccountPort) LoginModel {
	return LoginModel{
		ctx:  ctx,
		port: port,
		form: components.NewForm(
			components.Field{Label: "Email", Placeholder: "you@example.com"},
			components.Field{Label: "Password", Secret: true},
		),
	}
}

func (m *LoginModel) Activate() tea.Cmd {
	m.err = ""
	return m.form.Focus()
}

// Capturing reports whether keys are going to a text field.
func (m LoginModel) Capturing() bool { return m.form.Focused() }

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = "login failed: " + msg.err.Error()
			return m, m.form.Focus()
		}
		m.form.SetValue(1, "")
		m.form.Blur()
		return m, func() tea.Msg { return nav.SessionMsg{Session: msg.session, Land: true} }

	case tea.KeyMsg:
		if !m.form.Focused() {
			switch msg.String() {
			case "enter", "i":
				return m, m.form.Focus()
			case "r":
				return m, nav.Go(navigation.ViewRegister)
			}
			return m, nil
		}
		if msg.String() == "esc" {
			m.form.Blur()
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.form, cmd, submitted = m.form.Update(msg)
		if submitted {
			m.busy = true
			m.err = ""
			return m, m.loginCmd(m.form.Value(0), m.form.Value(1))
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m LoginModel) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Log in") + "\n\n")
	sb.WriteString(m.form.View() + "\n\n")
	switch {
	case m.busy:
		sb.WriteString(theme.Muted.Render("logging in…"))
	case m.err != "":
		sb.WriteString(theme.Bad.Render(m.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: next/submit   esc: leave form   r: register instead"))
	}
	return theme.Pane.Render(sb.String())
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		session, err := m.port.Login(m.ctx, email, password)
		return loginDoneMsg{session: session, err: err}
	}
}
