// Package questionnaire renders the profile questionnaire. The same form
// serves onboarding and later edits of the profile.
package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	profiledto "caltrack/internal/modules/profile/dto"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
)

type ProfilePort interface {
	Get(ctx context.Context) (profiledto.ProfileOutput, error)
	Submit(ctx context.Context, input profiledto.QuestionnaireInput) (profiledto.SubmitOutput, error)
}

// SavedMsg reports an accepted submission. Onboarding is set when it came
// from the first-run questionnaire rather than the profile page.
type SavedMsg struct {
	Output     profiledto.SubmitOutput
	Onboarding bool
}

type loadedMsg struct {
	profile profiledto.ProfileOutput
	err     error
}

type submittedMsg struct {
	out profiledto.SubmitOutput
	err error
}

const (
	fieldGoal = iota
	fieldGender
	fieldHeightFeet
	fieldHeightInches
	fieldWeight
	fieldActivity
)

type Model struct {
	ctx        context.Context
	port       ProfilePort
	onboarding bool
	form       components.Form
	profile    profiledto.ProfileOutput
	loaded     bool
	busy       bool
	err        string
}

// New builds the first-run questionnaire when onboarding is set, otherwise
// the profile page which starts from the stored answers.
func New(ctx context.Context, port ProfilePort, onboarding bool) Model {
	return Model{
		ctx:        ctx,
		port:       port,
		onboarding: onboarding,
		form: components.NewForm(
			components.Field{Label: "Goal", Placeholder: "gain | lose | maintain"},
			components.Field{Label: "Gender", Placeholder: "male | female"},
			components.Field{Label: "Height (ft)", Placeholder: "0-8", CharLimit: 2},
			components.Field{Label: "Height (in)", Placeholder: "0-11", CharLimit: 2},
			components.Field{Label: "Weight (lbs)", CharLimit: 6},
			components.Field{Label: "Activity", Placeholder: "sedentary | lightly | moderately | very | extra"},
		),
	}
}

func (m *Model) Activate() tea.Cmd {
	m.err = ""
	if m.onboarding {
		return m.form.Focus()
	}
	m.busy = true
	return m.loadCmd()
}

func (m Model) Capturing() bool { return m.form.Focused() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, apperrors.ErrNotFound):
			m.loaded = false
		case msg.err != nil:
			return m, nav.Failed("load profile", msg.err)
		default:
			m.fill(msg.profile)
		}
		return m, m.form.Focus()

	case submittedMsg:
		m.busy = false
		if msg.err != nil {
			if nav.AuthFailure(msg.err) {
				return m, nav.Failed("save profile", msg.err)
			}
			m.err = msg.err.Error()
			return m, nil
		}
		m.fill(msg.out.Profile)
		m.form.Blur()
		saved := SavedMsg{Output: msg.out, Onboarding: m.onboarding}
		return m, tea.Batch(
			func() tea.Msg { return saved },
			nav.Status(fmt.Sprintf("profile saved, daily target %.0f kcal", msg.out.Profile.Target)),
		)

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
			return m, m.submitCmd(m.answers())
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m *Model) fill(p profiledto.ProfileOutput) {
	m.profile = p
	m.loaded = true
	m.form.SetValue(fieldGoal, p.Goal)
	m.form.SetValue(fieldGender, p.Gender)
	m.form.SetValue(fieldHeightFeet, strconv.Itoa(p.HeightFeet))
	m.form.SetValue(fieldHeightInches, strconv.Itoa(p.HeightInches))
	m.form.SetValue(fieldWeight, strconv.FormatFloat(p.WeightLbs, 'f', -1, 64))
	m.form.SetValue(fieldActivity, p.ActivityLevel)
}

func (m Model) answers() profiledto.QuestionnaireInput {
	return profiledto.QuestionnaireInput{
		Goal:          m.form.Value(fieldGoal),
		Gender:        m.form.Value(fieldGender),
		HeightFeet:    m.form.Value(fieldHeightFeet),
		HeightInches:  m.form.Value(fieldHeightInches),
		WeightLbs:     m.form.Value(fieldWeight),
		ActivityLevel: m.form.Value(fieldActivity),
	}
}

func (m Model) View() string {
	var sb strings.Builder
	if m.onboarding {
		sb.WriteString(theme.Title.Render("Tell us about yourself") + "\n")
		sb.WriteString(theme.Muted.Render("Your answers set the daily calorie target.") + "\n\n")
	} else {
		sb.WriteString(theme.Title.Render("Profile") + "\n\n")
	}
	sb.WriteString(m.form.View() + "\n\n")
	if m.loaded {
		p := m.profile
		sb.WriteString(fmt.Sprintf("%s %.0f   %s %.0f   %s %.0f\n",
			theme.Muted.Render("maintain"), p.MaintenanceCalories,
			theme.Muted.Render("gain"), p.GainCalories,
			theme.Muted.Render("lose"), p.LossCalories))
		sb.WriteString(theme.Muted.Render("target ") + theme.Hot.Render(fmt.Sprintf("%.0f kcal", p.Target)) + "\n\n")
	}
	switch {
	case m.busy:
		sb.WriteString(theme.Muted.Render("working…"))
	case m.err != "":
		sb.WriteString(theme.Bad.Render(m.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: next/submit   esc: leave form"))
	}
	return theme.Pane.Render(sb.String())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.port.Get(m.ctx)
		return loadedMsg{profile: p, err: err}
	}
}

func (m Model) submitCmd(input profiledto.QuestionnaireInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Submit(m.ctx, input)
		return submittedMsg{out: out, err: err}
	}
}
