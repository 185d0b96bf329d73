package in

import (
	"context"

	"caltrack/internal/modules/profile/dto"
)

type Usecase interface {
	Get(ctx context.Context) (dto.ProfileOutput, error)
	// Target never fails: a profile that cannot be fetched yields 0.
	Target(ctx context.Context) float64
	Submit(ctx context.Context, input dto.QuestionnaireInput) (dto.SubmitOutput, error)
}
