package in

import (
	"context"

	"caltrack/internal/modules/profile/dto"
	profilein "caltrack/internal/modules/profile/port/in"
)

type CLIHandler struct {
	usecase profilein.Usecase
}

func NewCLIHandler(usecase profilein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Get(ctx context.Context) (dto.ProfileOutput, error) {
	return h.usecase.Get(ctx)
}

func (h CLIHandler) Target(ctx context.Context) float64 {
	return h.usecase.Target(ctx)
}

func (h CLIHandler) Submit(ctx context.Context, input dto.QuestionnaireInput) (dto.SubmitOutput, error) {
	return h.usecase.Submit(ctx, input)
}
