package out

import (
	"context"

	"caltrack/internal/modules/profile/domain"
)

type ProfileAPI interface {
	Get(ctx context.Context) (domain.Profile, error)
	Submit(ctx context.Context, q domain.Questionnaire) (domain.Profile, error)
}

// Onboarding records that the held session finished the questionnaire.
type Onboarding interface {
	MarkProfileComplete(ctx context.Context) error
}
