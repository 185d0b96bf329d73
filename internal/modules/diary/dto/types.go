package dto

type EntryOutput struct {
	ID                 int64
	HasID              bool
	Name               string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}

// DayState is the visible state of the diary for the selected date.
// Remaining may be negative when the day is over budget.
type DayState struct {
	Date      string
	Loading   bool
	Degraded  bool
	Target    float64
	Consumed  float64
	Remaining float64
	Entries   []EntryOutput
}

// Candidate is one serving of a resolved food.
type Candidate struct {
	Name               string
	Calories           float64
	Protein            float64
	ServingWeightGrams float64
}
