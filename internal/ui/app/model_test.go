package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	accountdto "caltrack/internal/modules/account/dto"
	diaryoutadapter "caltrack/internal/modules/diary/adapter/out"
	"caltrack/internal/modules/diary/domain"
	diaryusecase "caltrack/internal/modules/diary/usecase"
	fooddto "caltrack/internal/modules/food/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	profiledto "caltrack/internal/modules/profile/dto"
	"caltrack/internal/platform/clock"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
	"caltrack/internal/ui/nav"
	questionnaireview "caltrack/internal/ui/views/questionnaire"
)

type fakeAccount struct {
	session accountdto.SessionOutput
}

func (f *fakeAccount) Initialize(context.Context) (accountdto.SessionOutput, error) {
	return f.session, nil
}

func (f *fakeAccount) Login(context.Context, string, string) (accountdto.SessionOutput, error) {
	return f.session, nil
}

func (f *fakeAccount) Logout(context.Context) (accountdto.SessionOutput, error) {
	f.session = accountdto.SessionOutput{}
	return f.session, nil
}

func (f *fakeAccount) Register(context.Context, accountdto.RegisterInput) error { return nil }

func (f *fakeAccount) Details(context.Context) (accountdto.DetailsOutput, error) {
	return accountdto.DetailsOutput{}, nil
}

func (f *fakeAccount) UpdateSettings(context.Context, string, string) (accountdto.SettingsOutput, error) {
	return accountdto.SettingsOutput{}, nil
}

type fakeProfile struct{}

func (fakeProfile) Get(context.Context) (profiledto.ProfileOutput, error) {
	return profiledto.ProfileOutput{}, apperrors.ErrNotFound
}

func (fakeProfile) Target(context.Context) float64 { return 2000 }

func (fakeProfile) Submit(context.Context, profiledto.QuestionnaireInput) (profiledto.SubmitOutput, error) {
	return profiledto.SubmitOutput{ProfileComplete: true}, nil
}

type fakeFood struct{}

func (fakeFood) Resolve(context.Context, string, string) (fooddto.NutrientOutput, error) {
	return fooddto.NutrientOutput{}, errors.New("not used")
}

type fakeSearch struct{}

func (fakeSearch) Query(context.Context, string) ([]fooddto.SearchResultOutput, error) { return nil, nil }
func (fakeSearch) Cancel() {}

type emptyDays struct{}

func (emptyDays) Get(context.Context, domain.Date) (domain.DailyRecord, error) {
	return domain.DailyRecord{}, nil
}

func (emptyDays) Add(context.Context, domain.Date, domain.FoodEntry) (domain.FoodEntry, error) {
	return domain.FoodEntry{}, errors.New("not used")
}

func (emptyDays) Remove(context.Context, int64) error { return nil }

func newTestModel(session accountdto.SessionOutput) (Model, *fakeAccount) {
	account := &fakeAccount{session: session}
	clk := clock.Fixed{At: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewModel(context.Background(), Deps{
		Account:   account,
		Profile:   fakeProfile{},
		Diary:     diaryusecase.NewViewModel(emptyDays{}, diaryoutadapter.NewMemoryCache(), clk, logging.Discard()),
		Food:      fakeFood{},
		Typeahead: fakeSearch{},
		Logger:    logging.Discard(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	next, _ = next.Update(m.Init()())
	return next.(Model), account
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

var onboarded = accountdto.SessionOutput{Authenticated: true, ProfileComplete: true, Subject: "a@b.com"}

func TestGuestLandsHomeAndIsDeniedDiary(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(accountdto.SessionOutput{})
	if m.view != navigation.ViewHome {
		t.Fatalf("view = %s, want home", m.view)
	}

	m = send(m, nav.GoMsg{View: navigation.ViewDiary})
	if m.view != navigation.ViewDenied {
		t.Fatalf("view = %s, want denied", m.view)
	}

	m = send(m, nav.GoMsg{View: navigation.ViewLogin})
	if m.view != navigation.ViewLogin {
		t.Fatalf("view = %s, want login", m.view)
	}
}

func TestLoginWithIncompleteProfileLandsOnQuestionnaire(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(accountdto.SessionOutput{})

	m = send(m, nav.SessionMsg{Session: accountdto.SessionOutput{Authenticated: true}, Land: true})
	if m.view != navigation.ViewQuestionnaire {
		t.Fatalf("view = %s, want questionnaire", m.view)
	}

	m = send(m, questionnaireview.SavedMsg{Output: profiledto.SubmitOutput{ProfileComplete: true}, Onboarding: true})
	if m.view != navigation.ViewDiary {
		t.Fatalf("view = %s, want diary", m.view)
	}
	if !m.session.ProfileComplete {
		t.Fatal("profile completion not recorded on the session")
	}
}

func TestTabCyclesTheOnboardedMenu(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(onboarded)
	if m.view != navigation.ViewDiary {
		t.Fatalf("view = %s, want diary", m.view)
	}

	var seen []navigation.View
	for i := 0; i < 3; i++ {
		m = send(m, tea.KeyMsg{Type: tea.KeyTab})
		seen = append(seen, m.view)
		if m.capturing() {
			m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
		}
	}
	want := []navigation.View{navigation.ViewProfile, navigation.ViewSettings, navigation.ViewDiary}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("tab order = %v, want %v", seen, want)
		}
	}
}

func TestRefusedRequestShowsDenied(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(onboarded)

	m = send(m, nav.AuthFailedMsg{Err: apperrors.ErrUnauthorized})
	if m.view != navigation.ViewDenied {
		t.Fatalf("view = %s, want denied", m.view)
	}
}

func TestLogoutReturnsHome(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(onboarded)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if cmd == nil {
		t.Fatal("ctrl+o did not start a logout")
	}
	m = send(next.(Model), cmd())
	if m.view != navigation.ViewHome || m.session.Authenticated {
		t.Fatalf("view = %s authenticated = %v, want a guest at home", m.view, m.session.Authenticated)
	}
}

func TestPaletteUnknownViewKeepsPlace(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(onboarded)

	next, _ := m.executePalette("go", []string{"nowhere"})
	m = next.(Model)
	if m.view != navigation.ViewDiary || m.status != "unknown view: nowhere" {
		t.Fatalf("view = %s status = %q", m.view, m.status)
	}
}
