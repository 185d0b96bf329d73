// Package domain holds the navigation gate: which top-level view a session
// may enter, where it lands after login, and what the menu offers.
package domain

import "strings"

type View string

const (
	ViewHome          View = "home"
	ViewRegister      View = "register"
	ViewLogin         View = "login"
	ViewQuestionnaire View = "questionnaire"
	ViewDiary         View = "diary"
	ViewProfile       View = "profile"
	ViewSettings      View = "settings"
	ViewDenied        View = "denied"
)

// Access is the part of the session the gate decides on.
type Access struct {
	Authenticated   bool
	ProfileComplete bool
}

var guestViews = map[View]struct{}{
	ViewHome:     {},
	ViewRegister: {},
	ViewLogin:    {},
	ViewDenied:   {},
}

var memberViews = map[View]struct{}{
	ViewQuestionnaire: {},
	ViewDiary:         {},
	ViewProfile:       {},
	ViewSettings:      {},
}

func ParseView(raw string) (View, bool) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := guestViews[v]; ok {
		return v, true
	}
	if _, ok := memberViews[v]; ok {
		return v, true
	}
	return "", false
}

// CanEnter is the pure gate decision. Profile completion is not a hard
// requirement for any view.
func CanEnter(view View, access Access) bool {
	if _, ok := guestViews[view]; ok {
		return true
	}
	if _, ok := memberViews[view]; ok {
		return access.Authenticated
	}
	return false
}

// Resolve returns the view actually shown for a navigation request:
// the requested view when admitted, otherwise the denied view.
func Resolve(view View, access Access) View {
	if CanEnter(view, access) {
		return view
	}
	return ViewDenied
}

// Landing is where a session is sent after login or at startup.
func Landing(access Access) View {
	switch {
	case !access.Authenticated:
		return ViewHome
	case !access.ProfileComplete:
		return ViewQuestionnaire
	default:
		return ViewDiary
	}
}

// Menu lists the views offered in the navigation menu, in display order.
func Menu(access Access) []View {
	switch {
	case !access.Authenticated:
		return []View{ViewHome, ViewLogin, ViewRegister}
	case !access.ProfileComplete:
		return []View{ViewQuestionnaire}
	default:
		return []View{ViewDiary, ViewProfile, ViewSettings}
	}
}

func (v View) Title() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewRegister:
		return "Register"
	case ViewLogin:
		return "Login"
	case ViewQuestionnaire:
		return "Questionnaire"
	case ViewDiary:
		return "Diary"
	case ViewProfile:
		return "Profile"
	case ViewSettings:
		return "Settings"
	case ViewDenied:
		return "Access denied"
	default:
		return string(v)
	}
}
