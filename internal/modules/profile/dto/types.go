package dto

type ProfileOutput struct {
	FirstName           string
	Goal                string
	Gender              string
	HeightFeet          int
	HeightInches        int
	WeightLbs           float64
	ActivityLevel       string
	MaintenanceCalories float64
	GainCalories        float64
	LossCalories        float64
	Target              float64
}

// QuestionnaireInput carries the answers exactly as typed.
type QuestionnaireInput struct {
	Goal          string
	Gender        string
	HeightFeet    string
	HeightInches  string
	WeightLbs     string
	ActivityLevel string
}

type SubmitOutput struct {
	Profile         ProfileOutput
	ProfileComplete bool
}
