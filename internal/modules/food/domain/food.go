package domain

import (
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest query sent to the nutrition index.
const MinQueryLength = 2

type SearchResult struct {
	FoodName  string
	BrandName string
	NixItemID string
	TagID     string
}

// Branded reports whether the result resolves through the branded-item
// endpoint rather than by common food name.
func (r SearchResult) Branded() bool {
	return strings.TrimSpace(r.NixItemID) != ""
}

func (r SearchResult) Label() string {
	if brand := strings.TrimSpace(r.BrandName); brand != "" {
		return r.FoodName + " (" + brand + ")"
	}
	return r.FoodName
}

// NormalizedNutrient is one serving of a food. Missing or unparseable
// numbers are 0.
type NormalizedNutrient struct {
	Name               string
	BrandName          string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}

func ShouldSearch(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}
