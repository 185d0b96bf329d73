package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"caltrack/internal/modules/profile/domain"
	"caltrack/internal/modules/profile/dto"
	profilein "caltrack/internal/modules/profile/port/in"
	profileout "caltrack/internal/modules/profile/port/out"
	"caltrack/internal/platform/logging"
)

type Interactor struct {
	api        profileout.ProfileAPI
	onboarding profileout.Onboarding
	logger     *slog.Logger
}

func NewInteractor(api profileout.ProfileAPI, onboarding profileout.Onboarding, logger *slog.Logger) profilein.Usecase {
	return &Interactor{api: api, onboarding: onboarding, logger: logging.Component(logger, "profile")}
}

func (i *Interactor) Get(ctx context.Context) (dto.ProfileOutput, error) {
	p, err := i.api.Get(ctx)
	if err != nil {
		return dto.ProfileOutput{}, fmt.Errorf("get profile: %w", err)
	}
	return toOutput(p), nil
}

func (i *Interactor) Target(ctx context.Context) float64 {
	p, err := i.api.Get(ctx)
	if err != nil {
		i.logger.Warn("profile unavailable, using zero target", slog.String("error", err.Error()))
		return 0
	}
	return p.Target()
}

// Submit validates the answers before anything is sent. The session is
// marked complete only after the backend accepted them.
func (i *Interactor) Submit(ctx context.Context, input dto.QuestionnaireInput) (dto.SubmitOutput, error) {
	q, err := domain.ParseQuestionnaire(domain.QuestionnaireForm{
		Goal:          input.Goal,
		Gender:        input.Gender,
		HeightFeet:    input.HeightFeet,
		HeightInches:  input.HeightInches,
		WeightLbs:     input.WeightLbs,
		ActivityLevel: input.ActivityLevel,
	})
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	p, err := i.api.Submit(ctx, q)
	if err != nil {
		i.logger.Warn("profile submit failed", slog.String("error", err.Error()))
		return dto.SubmitOutput{}, fmt.Errorf("submit profile: %w", err)
	}
	if p.Goal == "" {
		p.Goal = q.Goal
		p.Gender = q.Gender
		p.HeightFeet = q.HeightFeet
		p.HeightInches = q.HeightInches
		p.WeightLbs = q.WeightLbs
		p.ActivityLevel = q.ActivityLevel
	}
	out := dto.SubmitOutput{Profile: toOutput(p)}
	if err := i.onboarding.MarkProfileComplete(ctx); err != nil {
		return out, fmt.Errorf("mark profile complete: %w", err)
	}
	out.ProfileComplete = true
	i.logger.Info("profile submitted", slog.String("goal", string(p.Goal)))
	return out, nil
}

func toOutput(p domain.Profile) dto.ProfileOutput {
	return dto.ProfileOutput{
		FirstName:           p.FirstName,
		Goal:                string(p.Goal),
		Gender:              string(p.Gender),
		HeightFeet:          p.HeightFeet,
		HeightInches:        p.HeightInches,
		WeightLbs:           p.WeightLbs,
		ActivityLevel:       string(p.ActivityLevel),
		MaintenanceCalories: p.MaintenanceCalories,
		GainCalories:        p.GainCalories,
		LossCalories:        p.LossCalories,
		Target:              p.Target(),
	}
}
