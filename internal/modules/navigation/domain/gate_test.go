package domain

import (
	"reflect"
	"testing"
)

func TestCanEnterPolicy(t *testing.T) {
	t.Parallel()
	guest := Access{}
	member := Access{Authenticated: true}
	onboarded := Access{Authenticated: true, ProfileComplete: true}

	cases := []struct {
		view   View
		access Access
		want   bool
	}{
		{ViewHome, guest, true},
		{ViewRegister, guest, true},
		{ViewLogin, guest, true},
		{ViewLogin, onboarded, true},
		{ViewQuestionnaire, guest, false},
		{ViewQuestionnaire, member, true},
		{ViewDiary, guest, false},
		{ViewDiary, member, true},
		{ViewProfile, member, true},
		{ViewSettings, guest, false},
		{ViewSettings, onboarded, true},
		{View("admin"), onboarded, false},
	}
	for _, tc := range cases {
		if got := CanEnter(tc.view, tc.access); got != tc.want {
			t.Fatalf("CanEnter(%s, %+v) = %v, want %v", tc.view, tc.access, got, tc.want)
		}
	}
}

func TestResolveRedirectsToDenied(t *testing.T) {
	t.Parallel()
	if got := Resolve(ViewDiary, Access{}); got != ViewDenied {
		t.Fatalf("expected denied, got %s", got)
	}
	if got := Resolve(ViewDiary, Access{Authenticated: true}); got != ViewDiary {
		t.Fatalf("expected diary, got %s", got)
	}
}

func TestLanding(t *testing.T) {
	t.Parallel()
	if got := Landing(Access{}); got != ViewHome {
		t.Fatalf("guest landing = %s", got)
	}
	if got := Landing(Access{Authenticated: true}); got != ViewQuestionnaire {
		t.Fatalf("incomplete profile landing = %s", got)
	}
	if got := Landing(Access{Authenticated: true, ProfileComplete: true}); got != ViewDiary {
		t.Fatalf("onboarded landing = %s", got)
	}
}

func TestMenuHidesMemberViewsUntilOnboarded(t *testing.T) {
	t.Parallel()
	if got := Menu(Access{}); !reflect.DeepEqual(got, []View{ViewHome, ViewLogin, ViewRegister}) {
		t.Fatalf("guest menu = %v", got)
	}
	if got := Menu(Access{Authenticated: true}); !reflect.DeepEqual(got, []View{ViewQuestionnaire}) {
		t.Fatalf("member menu = %v", got)
	}
	if got := Menu(Access{Authenticated: true, ProfileComplete: true}); !reflect.DeepEqual(got, []View{ViewDiary, ViewProfile, ViewSettings}) {
		t.Fatalf("onboarded menu = %v", got)
	}
}

func TestParseView(t *testing.T) {
	t.Parallel()
	if v, ok := ParseView(" Diary "); !ok || v != ViewDiary {
		t.Fatalf("expected diary, got %q %v", v, ok)
	}
	if _, ok := ParseView("admin"); ok {
		t.Fatalf("expected unknown view to be rejected")
	}
}
