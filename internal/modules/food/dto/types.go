package dto

type SearchResultOutput struct {
	FoodName  string
	BrandName string
	NixItemID string
	TagID     string
	Label     string
}

type NutrientOutput struct {
	Name               string
	BrandName          string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}
