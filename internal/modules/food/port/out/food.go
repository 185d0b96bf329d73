package out

import (
	"context"

	"caltrack/internal/modules/food/domain"
)

type NutritionIndex interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	BrandedNutrients(ctx context.Context, nixItemID string) (domain.NormalizedNutrient, error)
	CommonNutrients(ctx context.Context, foodName string) (domain.NormalizedNutrient, error)
}
