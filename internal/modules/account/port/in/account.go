package in

import (
	"context"

	"caltrack/internal/modules/account/dto"
)

type Usecase interface {
	Initialize(ctx context.Context) (dto.SessionOutput, error)
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Logout(ctx context.Context) (dto.SessionOutput, error)
	CompleteProfile(ctx context.Context) (dto.SessionOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) error
	Details(ctx context.Context) (dto.DetailsOutput, error)
	UpdateSettings(ctx context.Context, input dto.SettingsInput) (dto.SettingsOutput, error)
}
