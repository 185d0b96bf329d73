// Package nav carries the messages views send to the root model to change
// the session, the current view or the status line.
package nav

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	accountdto "caltrack/internal/modules/account/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	apperrors "caltrack/internal/platform/errors"
)

// GoMsg asks the root model to enter View. The gate still applies.
type GoMsg struct{ View navigation.View }

// SessionMsg replaces the session held by the root model. When Land is set
// the root model then moves to the session's landing view.
type SessionMsg struct {
	Session accountdto.SessionOutput
	Land    bool
}

// AuthFailedMsg reports a call rejected for a missing or refused credential.
type AuthFailedMsg struct{ Err error }

type StatusMsg struct{ Text string }

func Go(v navigation.View) tea.Cmd {
	return func() tea.Msg { return GoMsg{View: v} }
}

func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// AuthFailure reports whether err came from a missing or refused credential.
func AuthFailure(err error) bool {
	return errors.Is(err, apperrors.ErrNotAuthenticated) || errors.Is(err, apperrors.ErrUnauthorized)
}

// Failed turns err into the message the root model acts on: an
// authentication failure or a status line.
func Failed(what string, err error) tea.Cmd {
	if AuthFailure(err) {
		return func() tea.Msg { return AuthFailedMsg{Err: err} }
	}
	return Status(what + ": " + err.Error())
}
