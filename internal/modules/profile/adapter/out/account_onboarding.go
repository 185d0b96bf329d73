package out

import (
	"context"

	accountdto "caltrack/internal/modules/account/dto"
	profileout "caltrack/internal/modules/profile/port/out"
)

type accountSession interface {
	CompleteProfile(ctx context.Context) (accountdto.SessionOutput, error)
}

// AccountOnboarding forwards questionnaire completion to the account
// module, which owns the persisted profile-complete flag.
type AccountOnboarding struct {
	session accountSession
}

func NewAccountOnboarding(session accountSession) profileout.Onboarding {
	return &AccountOnboarding{session: session}
}

func (a *AccountOnboarding) MarkProfileComplete(ctx context.Context) error {
	_, err := a.session.CompleteProfile(ctx)
	return err
}
