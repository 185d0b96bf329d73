package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEntryWithoutID   = errors.New("food entry has no id")
	ErrDayLoading       = errors.New("day is still loading")
	ErrSuperseded       = errors.New("superseded by a newer request")
	ErrTimeout          = errors.New("request timed out")
)
