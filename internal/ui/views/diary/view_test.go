package diary

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diaryoutadapter "caltrack/internal/modules/diary/adapter/out"
	"caltrack/internal/modules/diary/domain"
	diaryusecase "caltrack/internal/modules/diary/usecase"
	fooddto "caltrack/internal/modules/food/dto"
	"caltrack/internal/platform/clock"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
	"caltrack/internal/ui/components"
	"caltrack/internal/ui/nav"
)

type stubRecords struct {
	mu      sync.Mutex
	entries map[domain.Date][]domain.FoodEntry
	getErr  error
	nextID  int64
}

func (s *stubRecords) Get(_ context.Context, date domain.Date) (domain.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.DailyRecord{}, s.getErr
	}
	return domain.NewDailyRecord(append([]domain.FoodEntry(nil), s.entries[date]...)), nil
}

func (s *stubRecords) Add(_ context.Context, date domain.Date, entry domain.FoodEntry) (domain.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	entry.ID = &id
	s.entries[date] = append(s.entries[date], entry)
	return entry, nil
}

func (s *stubRecords) Remove(context.Context, int64) error { return nil }

type stubTarget float64

func (t stubTarget) Target(context.Context) float64 { return float64(t) }

type stubFood struct{}

func (stubFood) Resolve(_ context.Context, name, _ string) (fooddto.NutrientOutput, error) {
	return fooddto.NutrientOutput{Name: name, Calories: 70, Protein: 6, ServingWeightGrams: 50}, nil
}

type stubSearch struct {
	cancelled int
}

func (s *stubSearch) Query(_ context.Context, text string) ([]fooddto.SearchResultOutput, error) {
	return []fooddto.SearchResultOutput{{FoodName: "egg", Label: "egg"}, {FoodName: "egg white", Label: "egg white"}}, nil
}

func (s *stubSearch) Cancel() { s.cancelled++ }

var day = clock.Fixed{At: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

func newModel(t *testing.T, records *stubRecords) (Model, *stubSearch) {
	t.Helper()
	if records.entries == nil {
		records.entries = map[domain.Date][]domain.FoodEntry{}
	}
	vm := diaryusecase.NewViewModel(records, diaryoutadapter.NewMemoryCache(), day, logging.Discard())
	search := &stubSearch{}
	m := New(context.Background(), vm, stubTarget(2000), stubFood{}, search, logging.Discard())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, search
}

// run executes cmd and the commands of any batch it expands to. It must
// only be used on commands that return at once.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, run(c)...)
	}
	return out
}

func deliver(m Model, msgs []tea.Msg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func loadToday(t *testing.T, m Model) Model {
	t.Helper()
	m.Activate()
	require.True(t, m.state.Loading)
	m = deliver(m, run(m.fetchCmd(m.state.Date)))
	m = deliver(m, run(m.targetCmd()))
	require.False(t, m.state.Loading)
	return m
}

func typeText(m Model, text string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestActivateLoadsDayAndTarget(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t, &stubRecords{})
	m = loadToday(t, m)

	assert.Equal(t, "2024-03-01", m.state.Date)
	assert.Equal(t, 2000.0, m.state.Target)
	assert.Equal(t, 2000.0, m.state.Remaining)
	assert.Contains(t, m.View(), "Nothing logged for this day.")
}

func TestSearchPickAndRemove(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t, &stubRecords{})
	m = loadToday(t, m)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.Capturing())
	m = typeText(m, "egg")
	m, cmd := m.Update(components.DropdownQueryMsg{Text: "egg"})
	m = deliver(m, run(cmd))
	require.True(t, m.dropdown.Open())

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = m.Update(cmd())
	m = deliver(m, run(cmd))
	require.NotNil(t, m.pending)
	assert.Equal(t, "egg", m.pending.Name)
	require.True(t, m.servings.Focused())

	m.servings.SetValue("2")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, run(cmd))
	assert.Equal(t, 140.0, m.state.Consumed)
	assert.Equal(t, 1860.0, m.state.Remaining)
	require.Len(t, m.state.Entries, 1)
	assert.False(t, m.Capturing())
	assert.Empty(t, m.dropdown.Value())

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = deliver(m, run(cmd))
	assert.Empty(t, m.state.Entries)
	assert.Equal(t, 0.0, m.state.Consumed)
}

func TestInvalidServingsReported(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t, &stubRecords{})
	m = loadToday(t, m)
	m, _ = m.Update(resolvedMsg{nutrient: fooddto.NutrientOutput{Name: "egg", Calories: 70}})
	m.servings.SetValue("-1")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	var status *nav.StatusMsg
	for _, msg := range run(cmd) {
		var next tea.Cmd
		m, next = m.Update(msg)
		if next != nil {
			if s, ok := next().(nav.StatusMsg); ok {
				status = &s
			}
		}
	}
	require.NotNil(t, status)
	assert.Contains(t, status.Text, "invalid input")
	assert.Empty(t, m.state.Entries)
}

func TestStaleDayResponseLeavesNewSelection(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t, &stubRecords{})
	m.Activate()
	first := m.state.Date
	m.Step(1)
	require.Equal(t, "2024-03-02", m.state.Date)

	m, cmd := m.Update(run(m.fetchCmd(first))[0])
	assert.Nil(t, cmd)
	assert.Equal(t, "2024-03-02", m.state.Date)
	assert.True(t, m.state.Loading)
}

func TestShortQueryCancelsSearch(t *testing.T) {
	t.Parallel()
	m, search := newModel(t, &stubRecords{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = typeText(m, "e")

	m, cmd := m.Update(components.DropdownQueryMsg{Text: "e"})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, search.cancelled)
	assert.False(t, m.dropdown.Open())
	assert.True(t, m.Capturing())
}

func TestRejectedTokenRaisesAuthFailure(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t, &stubRecords{getErr: fmt.Errorf("GET /calories: %w", apperrors.ErrUnauthorized)})
	m.Activate()

	m, cmd := m.Update(run(m.fetchCmd(m.state.Date))[0])
	require.NotNil(t, cmd)
	_, ok := cmd().(nav.AuthFailedMsg)
	assert.True(t, ok)
	assert.True(t, m.state.Degraded)
}

func TestRemoveKeepsTheDateShownAtKeypress(t *testing.T) {
	t.Parallel()
	id := int64(7)
	records := &stubRecords{entries: map[domain.Date][]domain.FoodEntry{
		"2024-03-01": {{ID: &id, Name: "toast", Calories: 120}},
	}}
	m, _ := newModel(t, records)
	m = loadToday(t, m)
	require.Len(t, m.state.Entries, 1)

	m, removeCmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m.Step(1)
	require.Equal(t, "2024-03-02", m.state.Date)

	var status string
	for _, msg := range run(removeCmd) {
		var next tea.Cmd
		m, next = m.Update(msg)
		if next != nil {
			if s, ok := next().(nav.StatusMsg); ok {
				status = s.Text
			}
		}
	}
	assert.Equal(t, "remove toast: saved to 2024-03-01", status)
	assert.Equal(t, "2024-03-02", m.state.Date)

	m.Step(-1)
	assert.Equal(t, "2024-03-01", m.state.Date)
	assert.Empty(t, m.state.Entries, "the cached day still lists the removed entry")
}

func TestResetForgetsPreviousSession(t *testing.T) {
	t.Parallel()
	records := &stubRecords{}
	m, search := newModel(t, records)
	m = loadToday(t, m)
	m, _ = m.Update(resolvedMsg{nutrient: fooddto.NutrientOutput{Name: "egg", Calories: 70}})
	m.servings.SetValue("1")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, run(cmd))
	require.Len(t, m.state.Entries, 1)

	m.Reset()
	assert.Empty(t, m.state.Entries)
	assert.Nil(t, m.pending)
	assert.False(t, m.Capturing())
	assert.Equal(t, 1, search.cancelled)

	m.Activate()
	assert.True(t, m.state.Loading, "the day must be fetched again for the new session")
}
