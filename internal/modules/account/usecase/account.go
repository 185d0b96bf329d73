package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"caltrack/internal/modules/account/domain"
	"caltrack/internal/modules/account/dto"
	accountin "caltrack/internal/modules/account/port/in"
	accountout "caltrack/internal/modules/account/port/out"
	"caltrack/internal/modules/account/service"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
)

type Interactor struct {
	svc       *service.SessionService
	api       accountout.AccountAPI
	listeners []accountout.SessionListener
	logger    *slog.Logger
}

func NewInteractor(svc *service.SessionService, api accountout.AccountAPI, logger *slog.Logger, listeners ...accountout.SessionListener) accountin.Usecase {
	return &Interactor{svc: svc, api: api, listeners: listeners, logger: logging.Component(logger, "account")}
}

func (i *Interactor) sessionChanged(ctx context.Context) {
	for _, l := range i.listeners {
		l.SessionChanged(ctx)
	}
}

func (i *Interactor) Initialize(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Initialize(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

// Login persists credentials only after the backend accepts them; a
// failed call leaves the stored session untouched.
func (i *Interactor) Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return dto.SessionOutput{}, fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidInput)
	}
	result, err := i.api.Login(ctx, email, input.Password)
	if err != nil {
		i.logger.Warn("login failed", slog.String("error", err.Error()))
		return dto.SessionOutput{}, fmt.Errorf("login: %w", err)
	}
	i.sessionChanged(ctx)
	session, err := i.svc.Login(ctx, result.JWT, result.ProfileComplete)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

// Logout forgets the previous user's local state even when clearing the
// stored credentials fails.
func (i *Interactor) Logout(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Logout(ctx)
	i.sessionChanged(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func (i *Interactor) CompleteProfile(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.CompleteProfile(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func (i *Interactor) Register(ctx context.Context, input dto.RegisterInput) error {
	registration := domain.Registration{
		FirstName:   input.FirstName,
		MiddleName:  input.MiddleName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Password:    input.Password,
	}.Normalize()
	if err := registration.Validate(); err != nil {
		return err
	}
	if err := i.api.Register(ctx, registration); err != nil {
		i.logger.Warn("registration failed", slog.String("error", err.Error()))
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (i *Interactor) Details(ctx context.Context) (dto.DetailsOutput, error) {
	details, err := i.api.Details(ctx)
	if err != nil {
		return dto.DetailsOutput{}, fmt.Errorf("user details: %w", err)
	}
	return dto.DetailsOutput{
		FirstName:   details.FirstName,
		LastName:    details.LastName,
		Email:       details.Email,
		PhoneNumber: details.PhoneNumber,
	}, nil
}

// UpdateSettings sends the phone number and the password independently,
// each only when provided. A phone update that succeeded is still reported
// when the password update fails afterwards.
func (i *Interactor) UpdateSettings(ctx context.Context, input dto.SettingsInput) (dto.SettingsOutput, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" && input.NewPassword == "" {
		return dto.SettingsOutput{}, fmt.Errorf("%w: nothing to update", apperrors.ErrInvalidInput)
	}
	out := dto.SettingsOutput{}
	if phone != "" {
		if err := i.api.UpdatePhone(ctx, phone); err != nil {
			return out, fmt.Errorf("update phone: %w", err)
		}
		out.PhoneUpdated = true
	}
	if input.NewPassword != "" {
		if err := i.api.UpdatePassword(ctx, input.NewPassword); err != nil {
			return out, fmt.Errorf("update password: %w", err)
		}
		out.PasswordUpdated = true
	}
	return out, nil
}

func toOutput(s domain.Session) dto.SessionOutput {
	return dto.SessionOutput{
		Authenticated:   s.Authenticated,
		ProfileComplete: s.ProfileComplete,
		Subject:         s.Subject,
		ExpiresAt:       s.ExpiresAt,
	}
}
