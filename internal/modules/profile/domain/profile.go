package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "caltrack/internal/platform/errors"
)

type Goal string

const (
	GoalGain     Goal = "gain"
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLightly    ActivityLevel = "lightly"
	ActivityModerately ActivityLevel = "moderately"
	ActivityVery       ActivityLevel = "very"
	ActivityExtra      ActivityLevel = "extra"
)

var ActivityLevels = []ActivityLevel{ActivitySedentary, ActivityLightly, ActivityModerately, ActivityVery, ActivityExtra}

// Profile is owned by the backend; the client only reads it and submits
// questionnaire answers. Goal is kept verbatim so an unknown value
// survives the round trip.
type Profile struct {
	FirstName           string
	Goal                Goal
	Gender              Gender
	HeightFeet          int
	HeightInches        int
	WeightLbs           float64
	ActivityLevel       ActivityLevel
	MaintenanceCalories float64
	GainCalories        float64
	LossCalories        float64
}

// Target is the calorie goal selected by the profile's goal, or 0 when
// the goal is not recognized.
func (p Profile) Target() float64 {
	switch p.Goal {
	case GoalGain:
		return p.GainCalories
	case GoalLose:
		return p.LossCalories
	case GoalMaintain:
		return p.MaintenanceCalories
	default:
		return 0
	}
}

// Questionnaire is a validated set of onboarding answers.
type Questionnaire struct {
	Goal          Goal
	Gender        Gender
	HeightFeet    int
	HeightInches  int
	WeightLbs     float64
	ActivityLevel ActivityLevel
}

// QuestionnaireForm is the raw free-text form as typed by the user.
type QuestionnaireForm struct {
	Goal          string
	Gender        string
	HeightFeet    string
	HeightInches  string
	WeightLbs     string
	ActivityLevel string
}

func ParseGoal(raw string) (Goal, error) {
	switch g := Goal(normalize(raw)); g {
	case GoalGain, GoalLose, GoalMaintain:
		return g, nil
	case "":
		return "", fmt.Errorf("%w: goal is required", apperrors.ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: goal must be gain, lose or maintain, got %q", apperrors.ErrInvalidInput, raw)
	}
}

func ParseGender(raw string) (Gender, error) {
	switch g := Gender(normalize(raw)); g {
	case GenderMale, GenderFemale:
		return g, nil
	case "":
		return "", fmt.Errorf("%w: gender is required", apperrors.ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: gender must be male or female, got %q", apperrors.ErrInvalidInput, raw)
	}
}

func ParseActivityLevel(raw string) (ActivityLevel, error) {
	level := ActivityLevel(normalize(raw))
	if level == "" {
		return "", fmt.Errorf("%w: activity level is required", apperrors.ErrInvalidInput)
	}
	for _, known := range ActivityLevels {
		if level == known {
			return level, nil
		}
	}
	return "", fmt.Errorf("%w: unknown activity level %q", apperrors.ErrInvalidInput, raw)
}

func ParseHeightFeet(raw string) (int, error) {
	return parseBoundedInt("height feet", raw, 0, 8)
}

func ParseHeightInches(raw string) (int, error) {
	return parseBoundedInt("height inches", raw, 0, 11)
}

func ParseWeightLbs(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: weight is required", apperrors.ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: weight must be a number greater than 0, got %q", apperrors.ErrInvalidInput, raw)
	}
	return v, nil
}

// ParseQuestionnaire validates every field and reports all failures at once.
func ParseQuestionnaire(form QuestionnaireForm) (Questionnaire, error) {
	var (
		q    Questionnaire
		errs []error
		err  error
	)
	if q.Goal, err = ParseGoal(form.Goal); err != nil {
		errs = append(errs, err)
	}
	if q.Gender, err = ParseGender(form.Gender); err != nil {
		errs = append(errs, err)
	}
	if q.HeightFeet, err = ParseHeightFeet(form.HeightFeet); err != nil {
		errs = append(errs, err)
	}
	if q.HeightInches, err = ParseHeightInches(form.HeightInches); err != nil {
		errs = append(errs, err)
	}
	if q.WeightLbs, err = ParseWeightLbs(form.WeightLbs); err != nil {
		errs = append(errs, err)
	}
	if q.ActivityLevel, err = ParseActivityLevel(form.ActivityLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Questionnaire{}, errors.Join(errs...)
	}
	return q, nil
}

// FormFromProfile pre-fills the questionnaire with a fetched profile.
func FormFromProfile(p Profile) QuestionnaireForm {
	form := QuestionnaireForm{
		Goal:          string(p.Goal),
		Gender:        string(p.Gender),
		ActivityLevel: string(p.ActivityLevel),
	}
	if p.HeightFeet > 0 || p.HeightInches > 0 {
		form.HeightFeet = strconv.Itoa(p.HeightFeet)
		form.HeightInches = strconv.Itoa(p.HeightInches)
	}
	if p.WeightLbs > 0 {
		form.WeightLbs = strconv.FormatFloat(p.WeightLbs, 'f', -1, 64)
	}
	return form
}

func parseBoundedInt(field, raw string, lo, hi int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: %s is required", apperrors.ErrInvalidInput, field)
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be a whole number from %d to %d, got %q", apperrors.ErrInvalidInput, field, lo, hi, raw)
	}
	return v, nil
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
