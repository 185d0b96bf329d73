// Package settings shows the account details and changes the phone number
// or password.
package settings

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	accountdto "caltrack/internal/modules/account/dto"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
)

type AccountPort interface {
	Details(ctx context.Context) (accountdto.DetailsOutput, error)
	UpdateSettings(ctx context.Context, phoneNumber, newPassword string) (accountdto.SettingsOutput, error)
}

type detailsMsg struct {
	details accountdto.DetailsOutput
	err     error
}

type updatedMsg struct {
	out accountdto.SettingsOutput
	err error
}

type Model struct {
	ctx     context.Context
	port    AccountPort
	details accountdto.DetailsOutput
	form    components.Form
	busy    bool
	err     string
}

func New(ctx context.Context, port AccountPort) Model {
	return Model{
		ctx:  ctx,
		port: port,
		form: components.NewForm(
			components.Field{Label: "New phone", Placeholder: "leave empty to keep"},
			components.Field{Label: "New password", Placeholder: "leave empty to keep", Secret: true},
		),
	}
}

func (m *Model) Activate() tea.Cmd {
	m.err = ""
	return tea.Batch(m.detailsCmd(), m.form.Focus())
}

func (m Model) Capturing() bool { return m.form.Focused() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailsMsg:
		if msg.err != nil {
			return m, nav.Failed("load account", msg.err)
		}
		m.details = msg.details
		return m, nil

	case updatedMsg:
		m.busy = false
		if msg.err != nil {
			if nav.AuthFailure(msg.err) {
				return m, nav.Failed("update settings", msg.err)
			}
			m.err = msg.err.Error()
			return m, nil
		}
		var done []string
		if msg.out.PhoneUpdated {
			done = append(done, "phone number")
		}
		if msg.out.PasswordUpdated {
			done = append(done, "password")
		}
		reset := m.form.Reset()
		return m, tea.Batch(reset, nav.Status(strings.Join(done, " and ")+" updated"), m.detailsCmd())

	case tea.KeyMsg:
		if !m.form.Focused() {
			if s := msg.String(); s == "enter" || s == "i" {
				return m, m.form.Focus()
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
			return m, m.updateCmd(m.form.Value(0), m.form.Value(1))
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	d := m.details
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Settings") + "\n\n")
	sb.WriteString(theme.Muted.Render("name:  ") + strings.TrimSpace(d.FirstName+" "+d.LastName) + "\n")
	sb.WriteString(theme.Muted.Render("email: ") + d.Email + "\n")
	phone := d.PhoneNumber
	if phone == "" {
		phone = theme.Muted.Render("none")
	}
	sb.WriteString(theme.Muted.Render("phone: ") + phone + "\n\n")
	sb.WriteString(m.form.View() + "\n\n")
	switch {
	case m.busy:
		sb.WriteString(theme.Muted.Render("saving…"))
	case m.err != "":
		sb.WriteString(theme.Bad.Render(m.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: next/submit   esc: leave form"))
	}
	return theme.Pane.Render(sb.String())
}

func (m Model) detailsCmd() tea.Cmd {
	return func() tea.Msg {
		d, err := m.port.Details(m.ctx)
		return detailsMsg{details: d, err: err}
	}
}

func (m Model) updateCmd(phone, password string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.UpdateSettings(m.ctx, phone, password)
		return updatedMsg{out: out, err: err}
	}
}
