package in

import (
	"context"
	"fmt"
	"strings"

	"caltrack/internal/modules/food/dto"
	foodin "caltrack/internal/modules/food/port/in"
	apperrors "caltrack/internal/platform/errors"
)

type CLIHandler struct {
	usecase foodin.Usecase
}

func NewCLIHandler(usecase foodin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Search(ctx context.Context, query string) ([]dto.SearchResultOutput, error) {
	return h.usecase.Search(ctx, query)
}

// Resolve looks up a branded item when nixItemID is set, otherwise the
// common food called name.
func (h CLIHandler) Resolve(ctx context.Context, name, nixItemID string) (dto.NutrientOutput, error) {
	return h.usecase.Resolve(ctx, dto.SearchResultOutput{FoodName: name, NixItemID: nixItemID})
}

// Pick searches for query and resolves the result at index.
func (h CLIHandler) Pick(ctx context.Context, query string, index int) (dto.NutrientOutput, error) {
	results, err := h.usecase.Search(ctx, query)
	if err != nil {
		return dto.NutrientOutput{}, err
	}
	if index < 0 || index >= len(results) {
		return dto.NutrientOutput{}, fmt.Errorf("%w: %d results for %q, no result %d", apperrors.ErrInvalidInput, len(results), strings.TrimSpace(query), index)
	}
	return h.usecase.Resolve(ctx, results[index])
}
