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

const (
	fieldFirstName = iota
	fieldMiddleName
	fieldLastName
	fieldEmail
	fieldPhone
	fieldPassword
)

type registerDoneMsg struct {
	email string
	err   error
}

type RegisterModel struct {
	ctx  context.Context
	port AccountPort
	form components.Form
	busy bool
	err  string
}

func NewRegister(ctx context.Context, port AccountPort) RegisterModel {
	return RegisterModel{
		ctx:  ctx,
		port: port,
		form: components.NewForm(
			components.Field{Label: "First name"},
			components.Field{Label: "Middle name", Placeholder: "optional"},
			components.Field{Label: "Last name"},
			components.Field{Label: "Email", Placeholder: "you@example.com"},
			components.Field{Label: "Phone", Placeholder: "optional"},
			components.Field{Label: "Password", Secret: true},
		),
	}
}

func (m *RegisterModel) Activate() tea.Cmd {
	m.err = ""
	return m.form.Focus()
}

func (m RegisterModel) Capturing() bool { return m.form.Focused() }

func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = "registration failed: " + msg.err.Error()
			return m, m.form.Focus()
		}
		m.form.Reset()
		m.form.Blur()
		return m, tea.Batch(
			nav.Go(navigation.ViewLogin),
			nav.Status("account created for "+msg.email+", log in to continue"),
		)

	case tea.KeyMsg:
		if !m.form.Focused() {
			switch msg.String() {
			case "enter", "i":
				return m, m.form.Focus()
			case "l":
				return m, nav.Go(navigation.ViewLogin)
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
			return m, m.registerCmd(accountdto.RegisterInput{
				FirstName:   m.form.Value(fieldFirstName),
				MiddleName:  m.form.Value(fieldMiddleName),
				LastName:    m.form.Value(fieldLastName),
				Email:       m.form.Value(fieldEmail),
				PhoneNumber: m.form.Value(fieldPhone),
				Password:    m.form.Value(fieldPassword),
			})
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m RegisterModel) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Create an account") + "\n\n")
	sb.WriteString(m.form.View() + "\n\n")
	switch {
	case m.busy:
		sb.WriteString(theme.Muted.Render("registering…"))
	case m.err != "":
		sb.WriteString(theme.Bad.Render(m.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: next/submit   esc: leave form   l: log in instead"))
	}
	return theme.Pane.Render(sb.String())
}

func (m RegisterModel) registerCmd(input accountdto.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		err := m.port.Register(m.ctx, input)
		return registerDoneMsg{email: input.Email, err: err}
	}
}
