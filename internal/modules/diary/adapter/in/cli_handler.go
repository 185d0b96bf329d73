package in

import (
	"context"
	"errors"

	"caltrack/internal/modules/diary/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	apperrors "caltrack/internal/platform/errors"
)

type CLIHandler struct {
	usecase diaryin.Usecase
}

func NewCLIHandler(usecase diaryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context, date string, target float64) (dto.DayState, error) {
	h.usecase.SetTarget(target)
	return h.usecase.SelectDate(ctx, date)
}

func (h CLIHandler) Refresh(ctx context.Context, date string, target float64) (dto.DayState, error) {
	h.usecase.SetTarget(target)
	if _, err := h.usecase.SelectDate(ctx, date); err != nil {
		return h.usecase.Snapshot(), err
	}
	return h.usecase.Refresh(ctx)
}

// Add loads date first so the returned totals cover the whole day. A day
// that failed to load is still writable, as in the interactive diary.
func (h CLIHandler) Add(ctx context.Context, date string, candidate dto.Candidate, servings string) (dto.DayState, error) {
	if _, err := h.usecase.SelectDate(ctx, date); errors.Is(err, apperrors.ErrInvalidInput) {
		return h.usecase.Snapshot(), err
	}
	return h.usecase.AddEntry(ctx, candidate, servings)
}

// Remove addresses entries by their position in the day as listed by Show.
func (h CLIHandler) Remove(ctx context.Context, date string, index int) (dto.DayState, error) {
	if _, err := h.usecase.SelectDate(ctx, date); err != nil {
		return h.usecase.Snapshot(), err
	}
	return h.usecase.RemoveEntry(ctx, index)
}
