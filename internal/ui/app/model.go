package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	accountdto "caltrack/internal/modules/account/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	fooddto "caltrack/internal/modules/food/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	profiledto "caltrack/internal/modules/profile/dto"
	"caltrack/internal/platform/logging"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
	authview "caltrack/internal/ui/views/auth"
	diaryview "caltrack/internal/ui/views/diary"
	homeview "caltrack/internal/ui/views/home"
	questionnaireview "caltrack/internal/ui/views/questionnaire"
	settingsview "caltrack/internal/ui/views/settings"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type AccountPort interface {
	Initialize(ctx context.Context) (accountdto.SessionOutput, error)
	Login(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	Logout(ctx context.Context) (accountdto.SessionOutput, error)
	Register(ctx context.Context, input accountdto.RegisterInput) error
	Details(ctx context.Context) (accountdto.DetailsOutput, error)
	UpdateSettings(ctx context.Context, phoneNumber, newPassword string) (accountdto.SettingsOutput, error)
}

type ProfilePort interface {
	Get(ctx context.Context) (profiledto.ProfileOutput, error)
	Target(ctx context.Context) float64
	Submit(ctx context.Context, input profiledto.QuestionnaireInput) (profiledto.SubmitOutput, error)
}

type FoodPort interface {
	Resolve(ctx context.Context, name, nixItemID string) (fooddto.NutrientOutput, error)
}

type SearchPort interface {
	Query(ctx context.Context, text string) ([]fooddto.SearchResultOutput, error)
	Cancel()
}

type Deps struct {
	Account   AccountPort
	Profile   ProfilePort
	Diary     diaryin.Usecase
	Food      FoodPort
	Typeahead SearchPort
	Logger    *slog.Logger
}

// ─── async messages ──────────────────────────────────────────────────────────

type sessionLoadedMsg struct {
	session accountdto.SessionOutput
	err     error
}

type loggedOutMsg struct {
	session accountdto.SessionOutput
	err     error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	BackTab key.Binding
	Help    key.Binding
	Palette key.Binding
	Logout  key.Binding
	Quit    key.Binding
	diary   []key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		BackTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Logout:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "log out")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		diary:   diaryview.Bindings(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.BackTab, k.Palette, k.Logout},
		k.diary,
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the session, routes every
// view change through the navigation gate and keeps the status line. All
// business logic sits behind the ports; all rendering below the tab bar is
// delegated to the views.
type Model struct {
	ctx     context.Context
	account AccountPort
	logger  *slog.Logger

	homeView          homeview.Model
	loginView         authview.LoginModel
	registerView      authview.RegisterModel
	questionnaireView questionnaireview.Model
	profileView       questionnaireview.Model
	diaryView         diaryview.Model
	settingsView      settingsview.Model

	session  accountdto.SessionOutput
	ready    bool
	view     navigation.View
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return Model{
		ctx:               ctx,
		account:           deps.Account,
		logger:            logger,
		homeView:          homeview.New(),
		loginView:         authview.NewLogin(ctx, deps.Account),
		registerView:      authview.NewRegister(ctx, deps.Account),
		questionnaireView: questionnaireview.New(ctx, deps.Profile, true),
		profileView:       questionnaireview.New(ctx, deps.Profile, false),
		diaryView:         diaryview.New(ctx, deps.Diary, deps.Profile, deps.Food, deps.Typeahead, logger),
		settingsView:      settingsview.New(ctx, deps.Account),
		view:              navigation.ViewHome,
		keys:              defaultKeys(),
		help:              help.New(),
		palette:           components.NewPalette(paletteCommands...),
		status:            "checking session…",
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadSessionCmd()
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case sessionLoadedMsg:
		m.ready = true
		if msg.err != nil {
			m.logger.Warn("session restore failed", slog.String("error", msg.err.Error()))
			m.status = "session: " + msg.err.Error()
		} else {
			m.status = "ready"
		}
		return m.setSession(msg.session, true)

	case loggedOutMsg:
		if msg.err != nil {
			m.status = "logout: " + msg.err.Error()
			return m, nil
		}
		m.status = "logged out"
		return m.setSession(msg.session, true)

	case nav.SessionMsg:
		m.status = "ready"
		return m.setSession(msg.Session, msg.Land)

	case nav.GoMsg:
		return m.enter(msg.View)

	case nav.StatusMsg:
		m.status = msg.Text
		return m, nil

	case nav.AuthFailedMsg:
		m.logger.Info("request refused", slog.String("view", string(m.view)), slog.String("error", msg.Err.Error()))
		m.view = navigation.ViewDenied
		m.status = "access denied: " + msg.Err.Error()
		return m, nil

	case questionnaireview.SavedMsg:
		m.session.ProfileComplete = m.session.ProfileComplete || msg.Output.ProfileComplete
		m.homeView.SetSession(m.session)
		if msg.Onboarding {
			return m.enter(navigation.Landing(m.access()))
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Name, msg.Args)

	case components.PaletteCancelMsg:
		return m, nil

	case tea.MouseMsg:
		msg.Y -= lipgloss.Height(m.renderTabBar())
		return m.updateActive(msg)

	case tea.KeyMsg:
		if m.showHelp {
			if s := msg.String(); s == "?" || s == "esc" || s == "q" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.capturing() {
			return m.updateActive(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			return m.cycle(1)
		case key.Matches(msg, m.keys.BackTab):
			return m.cycle(-1)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Logout):
			if m.session.Authenticated {
				return m, m.logoutCmd()
			}
			return m, nil
		}
		return m.updateActive(msg)
	}

	return m.broadcast(msg)
}

// setSession adopts s. With land set, or when the current view is no longer
// admitted, the model moves to the session's landing view.
func (m Model) setSession(s accountdto.SessionOutput, land bool) (tea.Model, tea.Cmd) {
	if s.Authenticated != m.session.Authenticated || s.Subject != m.session.Subject {
		m.diaryView.Reset()
	}
	m.session = s
	m.homeView.SetSession(s)
	if land || !navigation.CanEnter(m.view, m.access()) {
		return m.enter(navigation.Landing(m.access()))
	}
	return m, nil
}

// enter moves to view through the gate and activates the view shown.
func (m Model) enter(view navigation.View) (tea.Model, tea.Cmd) {
	shown := navigation.Resolve(view, m.access())
	m.view = shown
	if shown == navigation.ViewDenied && view != navigation.ViewDenied {
		m.status = "log in to open " + strings.ToLower(view.Title())
		return m, nil
	}
	var cmd tea.Cmd
	switch shown {
	case navigation.ViewLogin:
		cmd = m.loginView.Activate()
	case navigation.ViewRegister:
		cmd = m.registerView.Activate()
	case navigation.ViewQuestionnaire:
		cmd = m.questionnaireView.Activate()
	case navigation.ViewProfile:
		cmd = m.profileView.Activate()
	case navigation.ViewDiary:
		cmd = m.diaryView.Activate()
	case navigation.ViewSettings:
		cmd = m.settingsView.Activate()
	}
	return m, cmd
}

// cycle moves through the menu of the current session. A view outside the
// menu continues from its first entry.
func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	menu := navigation.Menu(m.access())
	if len(menu) == 0 {
		return m, nil
	}
	next := 0
	for i, v := range menu {
		if v == m.view {
			next = (i + step + len(menu)) % len(menu)
			break
		}
	}
	return m.enter(menu[next])
}

func (m Model) access() navigation.Access {
	return navigation.Access{Authenticated: m.session.Authenticated, ProfileComplete: m.session.ProfileComplete}
}

func (m Model) capturing() bool {
	switch m.view {
	case navigation.ViewLogin:
		return m.loginView.Capturing()
	case navigation.ViewRegister:
		return m.registerView.Capturing()
	case navigation.ViewQuestionnaire:
		return m.questionnaireView.Capturing()
	case navigation.ViewProfile:
		return m.profileView.Capturing()
	case navigation.ViewDiary:
		return m.diaryView.Capturing()
	case navigation.ViewSettings:
		return m.settingsView.Capturing()
	}
	return false
}

// updateActive hands input to the view on screen only.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case navigation.ViewHome:
		m.homeView, cmd = m.homeView.Update(msg)
	case navigation.ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case navigation.ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case navigation.ViewQuestionnaire:
		m.questionnaireView, cmd = m.questionnaireView.Update(msg)
	case navigation.ViewProfile:
		m.profileView, cmd = m.profileView.Update(msg)
	case navigation.ViewDiary:
		m.diaryView, cmd = m.diaryView.Update(msg)
	case navigation.ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

// broadcast delivers a non-input message to every view. Each view reacts
// only to its own message types, so responses arriving after the user
// navigated away still land in the view that asked.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 7)
	m.homeView, cmds[0] = m.homeView.Update(msg)
	m.loginView, cmds[1] = m.loginView.Update(msg)
	m.registerView, cmds[2] = m.registerView.Update(msg)
	m.questionnaireView, cmds[3] = m.questionnaireView.Update(msg)
	m.profileView, cmds[4] = m.profileView.Update(msg)
	m.diaryView, cmds[5] = m.diaryView.Update(msg)
	m.settingsView, cmds[6] = m.settingsView.Update(msg)
	return m, tea.Batch(cmds...)
}

func (m *Model) propagateSize() {
	chrome := lipgloss.Height(m.renderTabBar()) + lipgloss.Height(m.renderStatusBar())
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-chrome, 1)}
	m.homeView, _ = m.homeView.Update(sz)
	m.loginView, _ = m.loginView.Update(sz)
	m.registerView, _ = m.registerView.Update(sz)
	m.questionnaireView, _ = m.questionnaireView.Update(sz)
	m.profileView, _ = m.profileView.Update(sz)
	m.diaryView, _ = m.diaryView.Update(sz)
	m.settingsView, _ = m.settingsView.Update(sz)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.NewStyle().Height(contentH).MaxHeight(contentH).Render(m.activeView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.view {
	case navigation.ViewHome:
		return m.homeView.View()
	case navigation.ViewLogin:
		return m.loginView.View()
	case navigation.ViewRegister:
		return m.registerView.View()
	case navigation.ViewQuestionnaire:
		return m.questionnaireView.View()
	case navigation.ViewProfile:
		return m.profileView.View()
	case navigation.ViewDiary:
		return m.diaryView.View()
	case navigation.ViewSettings:
		return m.settingsView.View()
	case navigation.ViewDenied:
		return m.renderDenied()
	}
	return ""
}

func (m Model) renderDenied() string {
	var sb strings.Builder
	sb.WriteString(theme.Bad.Render("Access denied") + "\n\n")
	if m.session.Authenticated {
		sb.WriteString("The server refused this request. Your session may have expired.\n")
		sb.WriteString(theme.Muted.Render("ctrl+o: log out and sign in again   tab: back to the menu"))
	} else {
		sb.WriteString("You need to be logged in to see this page.\n")
		sb.WriteString(theme.Muted.Render("tab: go to login or register"))
	}
	return lipgloss.Place(m.width, max(m.height-4, 1), lipgloss.Center, lipgloss.Center, theme.Pane.Render(sb.String()))
}

func (m Model) renderTabBar() string {
	menu := navigation.Menu(m.access())
	parts := make([]string, len(menu))
	for i, v := range menu {
		if v == m.view {
			parts[i] = theme.Hot.Render(" " + v.Title() + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + v.Title() + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "caltrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	switch {
	case !m.ready:
	case m.session.Authenticated:
		left = theme.Good.Render("● "+m.session.Subject) + "  " + left
	default:
		left = theme.Muted.Render("○ guest") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

var paletteCommands = []components.PaletteCommand{
	{Name: "go", Usage: "<home|login|register|questionnaire|diary|profile|settings>"},
	{Name: "date", Usage: "<YYYY-MM-DD>"},
	{Name: "prev"},
	{Name: "next"},
	{Name: "refresh"},
	{Name: "logout"},
	{Name: "quit"},
}

func (m Model) executePalette(name string, args []string) (tea.Model, tea.Cmd) {
	switch name {
	case "":
		return m, nil

	case "go":
		if len(args) == 0 {
			m.status = "usage: go <view>"
			return m, nil
		}
		view, ok := navigation.ParseView(args[0])
		if !ok {
			m.status = "unknown view: " + args[0]
			return m, nil
		}
		return m.enter(view)

	case "date", "prev", "next", "refresh":
		if !navigation.CanEnter(navigation.ViewDiary, m.access()) {
			return m.enter(navigation.ViewDiary)
		}
		var enterCmd, cmd tea.Cmd
		if m.view != navigation.ViewDiary {
			var model tea.Model
			model, enterCmd = m.enter(navigation.ViewDiary)
			m = model.(Model)
		}
		switch name {
		case "date":
			if len(args) == 0 {
				m.status = "usage: date <YYYY-MM-DD>"
				return m, enterCmd
			}
			cmd = m.diaryView.SelectDate(args[0])
		case "prev":
			cmd = m.diaryView.Step(-1)
		case "next":
			cmd = m.diaryView.Step(1)
		case "refresh":
			cmd = m.diaryView.Refresh()
		}
		return m, tea.Batch(enterCmd, cmd)

	case "logout":
		if !m.session.Authenticated {
			m.status = "not logged in"
			return m, nil
		}
		return m, m.logoutCmd()

	case "quit":
		return m, tea.Quit

	default:
		m.status = "unknown command: " + name
	}
	return m, nil
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) loadSessionCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.account.Initialize(m.ctx)
		return sessionLoadedMsg{session: session, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.account.Logout(m.ctx)
		return loggedOutMsg{session: session, err: err}
	}
}
