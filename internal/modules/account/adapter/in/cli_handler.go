package in

import (
	"context"

	"caltrack/internal/modules/account/dto"
	accountin "caltrack/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Initialize(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Initialize(ctx)
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (dto.SessionOutput, error) {
	return h.usecase.Login(ctx, dto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Logout(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) CompleteProfile(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.CompleteProfile(ctx)
}

func (h CLIHandler) Register(ctx context.Context, input dto.RegisterInput) error {
	return h.usecase.Register(ctx, input)
}

func (h CLIHandler) Details(ctx context.Context) (dto.DetailsOutput, error) {
	return h.usecase.Details(ctx)
}

func (h CLIHandler) UpdateSettings(ctx context.Context, phoneNumber, newPassword string) (dto.SettingsOutput, error) {
	return h.usecase.UpdateSettings(ctx, dto.SettingsInput{PhoneNumber: phoneNumber, NewPassword: newPassword})
}
