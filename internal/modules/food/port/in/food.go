package in

import (
	"context"

	"caltrack/internal/modules/food/dto"
)

type Usecase interface {
	Search(ctx context.Context, query string) ([]dto.SearchResultOutput, error)
	Resolve(ctx context.Context, result dto.SearchResultOutput) (dto.NutrientOutput, error)
}

// Typeahead runs searches for text typed incrementally. Each Query
// cancels the one before it; a cancelled query returns ErrSuperseded.
type Typeahead interface {
	Query(ctx context.Context, text string) ([]dto.SearchResultOutput, error)
}
