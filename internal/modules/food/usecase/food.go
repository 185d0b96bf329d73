package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"caltrack/internal/modules/food/domain"
	"caltrack/internal/modules/food/dto"
	foodin "caltrack/internal/modules/food/port/in"
	foodout "caltrack/internal/modules/food/port/out"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
)

type Interactor struct {
	index  foodout.NutritionIndex
	logger *slog.Logger
}

func NewInteractor(index foodout.NutritionIndex, logger *slog.Logger) foodin.Usecase {
	return &Interactor{index: index, logger: logging.Component(logger, "food")}
}

// Search returns nothing for queries shorter than the minimum length.
func (i *Interactor) Search(ctx context.Context, query string) ([]dto.SearchResultOutput, error) {
	query = strings.TrimSpace(query)
	if !domain.ShouldSearch(query) {
		return nil, nil
	}
	results, err := i.index.Search(ctx, query)
	if err != nil {
		if ctx.Err() == nil {
			i.logger.Warn("food search failed", slog.String("query", query), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	out := make([]dto.SearchResultOutput, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.FoodName) == "" {
			continue
		}
		out = append(out, dto.SearchResultOutput{
			FoodName:  r.FoodName,
			BrandName: r.BrandName,
			NixItemID: r.NixItemID,
			TagID:     r.TagID,
			Label:     r.Label(),
		})
	}
	return out, nil
}

// Resolve looks up one serving of result: branded items by their item id,
// everything else by food name.
func (i *Interactor) Resolve(ctx context.Context, result dto.SearchResultOutput) (dto.NutrientOutput, error) {
	r := domain.SearchResult{
		FoodName:  strings.TrimSpace(result.FoodName),
		BrandName: strings.TrimSpace(result.BrandName),
		NixItemID: strings.TrimSpace(result.NixItemID),
		TagID:     result.TagID,
	}
	var (
		n   domain.NormalizedNutrient
		err error
	)
	switch {
	case r.Branded():
		n, err = i.index.BrandedNutrients(ctx, r.NixItemID)
	case r.FoodName != "":
		n, err = i.index.CommonNutrients(ctx, r.FoodName)
	default:
		return dto.NutrientOutput{}, fmt.Errorf("%w: search result has neither item id nor name", apperrors.ErrInvalidInput)
	}
	if err != nil {
		i.logger.Warn("nutrient lookup failed", slog.String("food", r.FoodName), slog.Bool("branded", r.Branded()), slog.String("error", err.Error()))
		return dto.NutrientOutput{}, fmt.Errorf("resolve %q: %w", r.Label(), err)
	}
	if strings.TrimSpace(n.Name) == "" {
		n.Name = r.FoodName
	}
	if n.BrandName == "" {
		n.BrandName = r.BrandName
	}
	return dto.NutrientOutput{
		Name:               n.Name,
		BrandName:          n.BrandName,
		Calories:           n.Calories,
		Protein:            n.Protein,
		ServingWeightGrams: n.ServingWeightGrams,
	}, nil
}
