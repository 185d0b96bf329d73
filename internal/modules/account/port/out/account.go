package out

import (
	"context"

	"caltrack/internal/modules/account/domain"
)

// CredentialStore persists the bearer token and profile-complete flag.
type CredentialStore interface {
	Load(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
}

type AccountAPI interface {
	Login(ctx context.Context, email, password string) (domain.LoginResult, error)
	Register(ctx context.Context, registration domain.Registration) error
	Details(ctx context.Context) (domain.UserDetails, error)
	UpdatePhone(ctx context.Context, phoneNumber string) error
	UpdatePassword(ctx context.Context, password string) error
}

// SessionListener hears that the session changed hands, after a login or
// a logout. Implementations drop state that belongs to the previous user.
type SessionListener interface {
	SessionChanged(ctx context.Context)
}
