package out

import (
	"context"
	"net/http"
	"net/url"

	"caltrack/internal/modules/food/domain"
	foodout "caltrack/internal/modules/food/port/out"
	"caltrack/internal/platform/httpapi"
)

// HTTPNutritionIndex talks to the unauthenticated nutrition endpoints.
type HTTPNutritionIndex struct {
	client *httpapi.Client
}

func NewHTTPNutritionIndex(client *httpapi.Client) foodout.NutritionIndex {
	return &HTTPNutritionIndex{client: client}
}

type searchItem struct {
	TagID     string `json:"tagId"`
	FoodName  string `json:"foodName"`
	BrandName string `json:"brandName"`
	NixItemID string `json:"nixItemId"`
}

type nutrientPayload struct {
	FoodName           string         `json:"foodName"`
	BrandName          string         `json:"brandName"`
	Calories           httpapi.Number `json:"calories"`
	Protein            httpapi.Number `json:"protein"`
	ServingWeightGrams httpapi.Number `json:"servingWeightGrams"`
}

func (a *HTTPNutritionIndex) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	var items []searchItem
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/search?query=" + url.QueryEscape(query),
	}, &items)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, len(items))
	for _, it := range items {
		out = append(out, domain.SearchResult{
			FoodName:  it.FoodName,
			BrandName: it.BrandName,
			NixItemID: it.NixItemID,
			TagID:     it.TagID,
		})
	}
	return out, nil
}

func (a *HTTPNutritionIndex) BrandedNutrients(ctx context.Context, nixItemID string) (domain.NormalizedNutrient, error) {
	var resp nutrientPayload
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/food/branded/" + url.PathEscape(nixItemID) + "/nutrients",
	}, &resp)
	if err != nil {
		return domain.NormalizedNutrient{}, err
	}
	return resp.toDomain(), nil
}

func (a *HTTPNutritionIndex) CommonNutrients(ctx context.Context, foodName string) (domain.NormalizedNutrient, error) {
	var resp nutrientPayload
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/food/common/" + url.PathEscape(foodName) + "/nutrients",
	}, &resp)
	if err != nil {
		return domain.NormalizedNutrient{}, err
	}
	return resp.toDomain(), nil
}

func (p nutrientPayload) toDomain() domain.NormalizedNutrient {
	return domain.NormalizedNutrient{
		Name:               p.FoodName,
		BrandName:          p.BrandName,
		Calories:           float64(p.Calories),
		Protein:            float64(p.Protein),
		ServingWeightGrams: float64(p.ServingWeightGrams),
	}
}
