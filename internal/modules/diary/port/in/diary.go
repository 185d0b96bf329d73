package in

import (
	"context"

	"caltrack/internal/modules/diary/dto"
)

// Usecase is the daily diary view-model. Select and Step are synchronous
// and report whether a Fetch must follow; the remaining operations may
// block on the backend.
type Usecase interface {
	Select(date string) (dto.DayState, bool, error)
	Step(days int) (dto.DayState, bool)
	Fetch(ctx context.Context, date string) (dto.DayState, error)
	SelectDate(ctx context.Context, date string) (dto.DayState, error)
	PreviousDay(ctx context.Context) (dto.DayState, error)
	NextDay(ctx context.Context) (dto.DayState, error)
	Refresh(ctx context.Context) (dto.DayState, error)
	AddEntry(ctx context.Context, candidate dto.Candidate, servings string) (dto.DayState, error)
	AddEntryOn(ctx context.Context, date string, candidate dto.Candidate, servings string) (dto.DayState, error)
	RemoveEntry(ctx context.Context, index int) (dto.DayState, error)
	RemoveEntryByID(ctx context.Context, date string, id int64) (dto.DayState, error)
	SetTarget(target float64) dto.DayState
	Snapshot() dto.DayState
	// Reset drops every cached and visible record.
	Reset() dto.DayState
}
