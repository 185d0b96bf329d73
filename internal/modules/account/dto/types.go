package dto

import "time"

type SessionOutput struct {
	Authenticated   bool
	ProfileComplete bool
	Subject         string
	ExpiresAt       time.Time
}

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

type DetailsOutput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

type SettingsInput struct {
	PhoneNumber string
	NewPassword string
}

type SettingsOutput struct {
	PhoneUpdated    bool
	PasswordUpdated bool
}
