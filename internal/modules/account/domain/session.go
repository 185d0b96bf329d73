package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "caltrack/internal/platform/errors"
)

// Session is the client-held authentication and onboarding status.
type Session struct {
	Authenticated   bool
	ProfileComplete bool
	Subject         string
	ExpiresAt       time.Time
}

// Guest is the session of a user holding no credential.
func Guest() Session {
	return Session{}
}

// Credentials are the values persisted between runs.
type Credentials struct {
	Token           string
	ProfileComplete bool
}

func (c Credentials) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// LoginResult is what the backend hands back on a successful login.
type LoginResult struct {
	JWT             string
	ProfileComplete bool
}

type Registration struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

func (r Registration) Normalize() Registration {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	return r
}

func (r Registration) Validate() error {
	missing := make([]string, 0, 4)
	if r.FirstName == "" {
		missing = append(missing, "first name")
	}
	if r.LastName == "" {
		missing = append(missing, "last name")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", apperrors.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return ValidateEmail(r.Email)
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", apperrors.ErrInvalidInput, email)
	}
	return nil
}

type UserDetails struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}
