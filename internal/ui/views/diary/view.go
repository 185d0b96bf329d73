// Package diary renders one day of the food diary: date navigation, the
// calorie balance, the logged entries and the food search used to add more.
package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	diarydto "caltrack/internal/modules/diary/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	fooddomain "caltrack/internal/modules/food/domain"
	fooddto "caltrack/internal/modules/food/dto"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
	"caltrack/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type TargetPort interface {
	Target(ctx context.Context) float64
}

type FoodPort interface {
	Resolve(ctx context.Context, name, nixItemID string) (fooddto.NutrientOutput, error)
}

type SearchPort interface {
	Query(ctx context.Context, text string) ([]fooddto.SearchResultOutput, error)
	Cancel()
}

// ─── messages ────────────────────────────────────────────────────────────────

type targetMsg struct{ target float64 }

type dayMsg struct{ err error }

type resultsMsg struct {
	query   string
	results []fooddto.SearchResultOutput
	err     error
}

type resolvedMsg struct {
	nutrient fooddto.NutrientOutput
	err      error
}

type mutatedMsg struct {
	what string
	date string
	err  error
}

// ─── keys ────────────────────────────────────────────────────────────────────

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Up      key.Binding
	Down    key.Binding
	Search  key.Binding
	Remove  key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous day")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search:  key.NewBinding(key.WithKeys("/", "a"), key.WithHelp("/", "add food")),
		Remove:  key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d", "remove")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

// Bindings lists the diary keys for the global help screen.
func Bindings() []key.Binding {
	k := defaultKeys()
	return []key.Binding{k.Prev, k.Next, k.Up, k.Down, k.Search, k.Remove, k.Refresh}
}

// searchTop is the row of the search box within the view.
const searchTop = 3

// ─── model ───────────────────────────────────────────────────────────────────

// Model draws what the diary view-model holds. It never keeps its own copy
// of the day beyond the last snapshot: every response re-reads the
// view-model, which has already discarded anything stale.
type Model struct {
	ctx     context.Context
	diary   diaryin.Usecase
	profile TargetPort
	food    FoodPort
	search  SearchPort
	logger  *slog.Logger

	state    diarydto.DayState
	cursor   int
	results  []fooddto.SearchResultOutput
	dropdown components.Dropdown
	servings textinput.Model
	pending  *fooddto.NutrientOutput
	busy     string
	spinner  spinner.Model
	keys     keyMap
	width    int
	height   int
}

func New(ctx context.Context, diary diaryin.Usecase, profile TargetPort, food FoodPort, search SearchPort, logger *slog.Logger) Model {
	dd := components.NewDropdown("search food to add")
	dd.Top = searchTop

	servings := textinput.New()
	servings.Placeholder = "1"
	servings.CharLimit = 8
	servings.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		ctx:      ctx,
		diary:    diary,
		profile:  profile,
		food:     food,
		search:   search,
		logger:   logging.Component(logger, "ui.diary"),
		state:    diary.Snapshot(),
		dropdown: dd,
		servings: servings,
		spinner:  sp,
		keys:     defaultKeys(),
	}
}

// Activate reloads the calorie target and re-enters the selected day. A
// day that is cached shows at once; one that failed before is fetched again.
func (m *Model) Activate() tea.Cmd {
	state, fetch, err := m.diary.Select(m.diary.Snapshot().Date)
	if err != nil {
		return nav.Failed("open diary", err)
	}
	return tea.Batch(m.show(state, fetch), m.targetCmd())
}

// Reset clears the diary of the previous session: cached days, the
// visible record, and any half-finished search or servings prompt.
func (m *Model) Reset() {
	m.search.Cancel()
	m.state = m.diary.Reset()
	m.cursor = 0
	m.busy = ""
	m.pending = nil
	m.results = nil
	m.servings.Blur()
	m.servings.SetValue("")
	m.dropdown.Clear()
	m.dropdown.Close()
}

// Capturing reports whether keys are going to the search box or the
// servings prompt.
func (m Model) Capturing() bool {
	return m.dropdown.Focused() || m.servings.Focused()
}

// SelectDate jumps to date, as typed in the command palette.
func (m *Model) SelectDate(date string) tea.Cmd {
	state, fetch, err := m.diary.Select(date)
	if err != nil {
		return nav.Failed("select date", err)
	}
	return m.show(state, fetch)
}

// Step moves the selected date by days.
func (m *Model) Step(days int) tea.Cmd {
	state, fetch := m.diary.Step(days)
	return m.show(state, fetch)
}

// Refresh reloads the selected day from the backend.
func (m *Model) Refresh() tea.Cmd {
	m.state.Loading = true
	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

func (m *Model) show(state diarydto.DayState, fetch bool) tea.Cmd {
	m.state = state
	m.clampCursor()
	if !fetch {
		return nil
	}
	return tea.Batch(m.fetchCmd(state.Date), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dropdown.Width = min(max(m.width-2, 20), 60)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading && m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case targetMsg:
		m.state = m.diary.SetTarget(msg.target)
		return m, nil

	case dayMsg:
		m.state = m.diary.Snapshot()
		m.clampCursor()
		if msg.err != nil && !errors.Is(msg.err, apperrors.ErrSuperseded) {
			return m, nav.Failed("load day", msg.err)
		}
		return m, nil

	case resultsMsg:
		if errors.Is(msg.err, apperrors.ErrSuperseded) || msg.query != m.dropdown.Value() {
			return m, nil
		}
		m.results = msg.results
		if msg.err != nil {
			m.logger.Warn("food search failed", slog.String("query", msg.query), slog.String("error", msg.err.Error()))
			m.results = nil
		}
		labels := make([]string, len(m.results))
		for i, r := range m.results {
			labels[i] = r.Label
		}
		m.dropdown.SetItems(labels)
		if msg.err != nil {
			return m, nav.Failed("search", msg.err)
		}
		return m, nil

	case components.DropdownQueryMsg:
		if utf8.RuneCountInString(strings.TrimSpace(msg.Text)) < fooddomain.MinQueryLength {
			m.search.Cancel()
			m.results = nil
			m.dropdown.SetItems(nil)
			m.dropdown.Hide()
			return m, nil
		}
		return m, m.searchCmd(msg.Text)

	case components.DropdownClosedMsg:
		m.search.Cancel()
		return m, nil

	case components.DropdownSelectMsg:
		if msg.Index < 0 || msg.Index >= len(m.results) {
			return m, nil
		}
		m.busy = "looking up " + m.results[msg.Index].FoodName
		return m, tea.Batch(m.resolveCmd(m.results[msg.Index]), m.spinner.Tick)

	case resolvedMsg:
		m.busy = ""
		if msg.err != nil {
			return m, nav.Failed("look up food", msg.err)
		}
		n := msg.nutrient
		m.pending = &n
		m.servings.SetValue("1")
		m.servings.CursorEnd()
		return m, m.servings.Focus()

	case mutatedMsg:
		m.busy = ""
		m.state = m.diary.Snapshot()
		m.clampCursor()
		switch {
		case msg.err == nil && msg.date != m.state.Date:
			return m, nav.Status(msg.what + ": saved to " + msg.date)
		case msg.err == nil:
			return m, nil
		case errors.Is(msg.err, apperrors.ErrSuperseded):
			// The session changed hands while the call was in flight.
			return m, nil
		default:
			return m, nav.Failed(msg.what, msg.err)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.dropdown, cmd = m.dropdown.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.dropdown, cmd = m.dropdown.Update(msg)
	cmds = append(cmds, cmd)
	m.servings, cmd = m.servings.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.servings.Focused() {
		switch msg.String() {
		case "esc":
			m.pending = nil
			m.servings.Blur()
			return m, nil
		case "enter":
			return m.addPending()
		}
		var cmd tea.Cmd
		m.servings, cmd = m.servings.Update(msg)
		return m, cmd
	}
	if m.dropdown.Focused() {
		var cmd tea.Cmd
		m.dropdown, cmd = m.dropdown.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Prev):
		return m, m.Step(-1)
	case key.Matches(msg, m.keys.Next):
		return m, m.Step(1)
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.pending = nil
		return m, m.dropdown.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refresh()
	case key.Matches(msg, m.keys.Remove):
		if len(m.state.Entries) == 0 || m.busy != "" {
			return m, nil
		}
		entry := m.state.Entries[m.cursor]
		if !entry.HasID {
			return m, nav.Failed("remove "+entry.Name, apperrors.ErrEntryWithoutID)
		}
		m.busy = "removing " + entry.Name
		return m, tea.Batch(m.removeCmd(m.state.Date, entry), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) addPending() (Model, tea.Cmd) {
	if m.pending == nil {
		m.servings.Blur()
		return m, nil
	}
	n := *m.pending
	servings := m.servings.Value()
	m.pending = nil
	m.servings.Blur()
	m.servings.SetValue("")
	m.dropdown.Clear()
	m.results = nil
	m.busy = "adding " + n.Name
	candidate := diarydto.Candidate{
		Name:               n.Name,
		Calories:           n.Calories,
		Protein:            n.Protein,
		ServingWeightGrams: n.ServingWeightGrams,
	}
	return m, tea.Batch(m.addCmd(m.state.Date, candidate, servings), m.spinner.Tick)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Entries) {
		m.cursor = len(m.state.Entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	s := m.state
	header := theme.Title.Render("Diary") + "  " +
		theme.Muted.Render("‹ ") + theme.Hot.Render(s.Date) + theme.Muted.Render(" ›")
	switch {
	case s.Loading:
		header += "  " + m.spinner.View() + theme.Muted.Render(" loading")
	case m.busy != "":
		header += "  " + m.spinner.View() + theme.Muted.Render(" "+m.busy)
	case s.Degraded:
		header += "  " + theme.Warn.Render("could not load this day, showing it empty")
	}
	totals := fmt.Sprintf("%s %s   %s %s   %s %s",
		theme.Muted.Render("target"), kcal(s.Target),
		theme.Muted.Render("consumed"), kcal(s.Consumed),
		theme.Muted.Render("remaining"), theme.Remaining(s.Remaining).Render(kcal(s.Remaining)))

	lines := []string{header, totals, "", m.dropdown.View()}
	if m.pending != nil {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			theme.Muted.Render("servings of"),
			theme.Hot.Render(m.pending.Name),
			theme.Muted.Render(fmt.Sprintf("(%s each):", kcal(m.pending.Calories))))+" "+m.servings.View())
	}
	lines = append(lines, "")

	if len(s.Entries) == 0 && !s.Loading {
		lines = append(lines, theme.Muted.Render("Nothing logged for this day."))
	}
	nameW := max(12, min(32, m.width-40))
	row := lipgloss.NewStyle().Width(nameW).MaxWidth(nameW)
	for i, e := range s.Entries {
		line := fmt.Sprintf("%s %9s %7.1f g protein %6.0f g", row.Render(e.Name), kcal(e.Calories), e.Protein, e.ServingWeightGrams)
		if !e.HasID {
			line += " " + theme.Warn.Render("unsynced")
		}
		if i == m.cursor {
			line = theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", theme.Muted.Render("←/→: day   /: add food   d: remove   r: refresh   esc: leave search"))
	return strings.Join(lines, "\n")
}

func kcal(v float64) string {
	return fmt.Sprintf("%.0f kcal", v)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) targetCmd() tea.Cmd {
	return func() tea.Msg {
		return targetMsg{target: m.profile.Target(m.ctx)}
	}
}

func (m Model) fetchCmd(date string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.diary.Fetch(m.ctx, date)
		return dayMsg{err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.diary.Refresh(m.ctx)
		return dayMsg{err: err}
	}
}

func (m Model) searchCmd(text string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.search.Query(m.ctx, text)
		return resultsMsg{query: text, results: results, err: err}
	}
}

func (m Model) resolveCmd(r fooddto.SearchResultOutput) tea.Cmd {
	return func() tea.Msg {
		n, err := m.food.Resolve(m.ctx, r.FoodName, r.NixItemID)
		return resolvedMsg{nutrient: n, err: err}
	}
}

// addCmd and removeCmd carry the date shown at keypress; the selection
// may move before the goroutine runs.
func (m Model) addCmd(date string, candidate diarydto.Candidate, servings string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.diary.AddEntryOn(m.ctx, date, candidate, servings)
		return mutatedMsg{what: "add " + candidate.Name, date: date, err: err}
	}
}

func (m Model) removeCmd(date string, entry diarydto.EntryOutput) tea.Cmd {
	return func() tea.Msg {
		_, err := m.diary.RemoveEntryByID(m.ctx, date, entry.ID)
		return mutatedMsg{what: "remove " + entry.Name, date: date, err: err}
	}
}
