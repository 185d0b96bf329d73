package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "caltrack/internal/platform/errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form.
type Date string

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, raw)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// AddDays shifts d by n calendar days. Arithmetic runs in UTC so DST
// transitions cannot skip or repeat a day.
func (d Date) AddDays(n int) Date {
	t, err := time.ParseInLocation(dateLayout, string(d), time.UTC)
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

func (d Date) String() string { return string(d) }

// FoodEntry is one consumed item. ID is assigned by the backend; an entry
// without one cannot be removed.
type FoodEntry struct {
	ID                 *int64
	Name               string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}

func (e FoodEntry) HasID() bool { return e.ID != nil }

// DailyRecord is the diary of one day. TotalCalories always equals the
// sum of the entries' calories; build records with NewDailyRecord.
type DailyRecord struct {
	TotalCalories float64
	FoodEntries   []FoodEntry
}

func NewDailyRecord(entries []FoodEntry) DailyRecord {
	copied := make([]FoodEntry, len(entries))
	copy(copied, entries)
	total := 0.0
	for _, e := range copied {
		total += e.Calories
	}
	return DailyRecord{TotalCalories: total, FoodEntries: copied}
}

func (r DailyRecord) Clone() DailyRecord {
	return NewDailyRecord(r.FoodEntries)
}

func (r DailyRecord) Append(e FoodEntry) DailyRecord {
	entries := make([]FoodEntry, 0, len(r.FoodEntries)+1)
	entries = append(entries, r.FoodEntries...)
	return NewDailyRecord(append(entries, e))
}

func (r DailyRecord) HasEntry(id int64) bool {
	for _, e := range r.FoodEntries {
		if e.ID != nil && *e.ID == id {
			return true
		}
	}
	return false
}

// WithoutID drops every entry carrying id.
func (r DailyRecord) WithoutID(id int64) DailyRecord {
	entries := make([]FoodEntry, 0, len(r.FoodEntries))
	for _, e := range r.FoodEntries {
		if e.ID != nil && *e.ID == id {
			continue
		}
		entries = append(entries, e)
	}
	return NewDailyRecord(entries)
}

// Candidate is a resolved nutrient record for one serving.
type Candidate struct {
	Name               string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}

// Scale multiplies the per-serving values by servings.
func (c Candidate) Scale(servings float64) FoodEntry {
	return FoodEntry{
		Name:               c.Name,
		Calories:           nonNegative(c.Calories) * servings,
		Protein:            nonNegative(c.Protein) * servings,
		ServingWeightGrams: nonNegative(c.ServingWeightGrams) * servings,
	}
}

// ParseServings reads the free-text servings field. Empty means one
// serving; anything else must be a finite number greater than 0.
func ParseServings(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: servings must be a number greater than 0, got %q", apperrors.ErrInvalidInput, raw)
	}
	return v, nil
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
