package domain

import (
	"errors"
	"strings"
	"testing"

	apperrors "caltrack/internal/platform/errors"
)

func TestTargetFollowsGoal(t *testing.T) {
	t.Parallel()
	p := Profile{MaintenanceCalories: 2200, GainCalories: 2700, LossCalories: 1700}
	cases := map[Goal]float64{
		GoalGain:     2700,
		GoalLose:     1700,
		GoalMaintain: 2200,
		"bulk":       0,
		"":           0,
	}
	for goal, want := range cases {
		p.Goal = goal
		if got := p.Target(); got != want {
			t.Fatalf("Target() with goal %q = %v, want %v", goal, got, want)
		}
	}
}

func TestParseQuestionnaireAcceptsValidForm(t *testing.T) {
	t.Parallel()
	q, err := ParseQuestionnaire(QuestionnaireForm{
		Goal: " Lose ", Gender: "female", HeightFeet: "5", HeightInches: "11", WeightLbs: "150.5", ActivityLevel: "moderately",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Questionnaire{Goal: GoalLose, Gender: GenderFemale, HeightFeet: 5, HeightInches: 11, WeightLbs: 150.5, ActivityLevel: ActivityModerately}
	if q != want {
		t.Fatalf("got %+v, want %+v", q, want)
	}
}

func TestParseQuestionnaireReportsEveryField(t *testing.T) {
	t.Parallel()
	_, err := ParseQuestionnaire(QuestionnaireForm{HeightFeet: "9", HeightInches: "x", WeightLbs: "0"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	for _, part := range []string{"goal is required", "gender is required", "height feet", "height inches", "weight", "activity level is required"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("expected %q in %v", part, err)
		}
	}
}

func TestBoundedFieldEdges(t *testing.T) {
	t.Parallel()
	if v, err := ParseHeightFeet("8"); err != nil || v != 8 {
		t.Fatalf("feet 8: %v %v", v, err)
	}
	if _, err := ParseHeightFeet("-1"); err == nil {
		t.Fatalf("expected negative feet rejected")
	}
	if v, err := ParseHeightInches("0"); err != nil || v != 0 {
		t.Fatalf("inches 0: %v %v", v, err)
	}
	if _, err := ParseHeightInches("12"); err == nil {
		t.Fatalf("expected 12 inches rejected")
	}
	if _, err := ParseWeightLbs("abc"); err == nil {
		t.Fatalf("expected non-numeric weight rejected")
	}
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf", "1e400"} {
		if _, err := ParseWeightLbs(raw); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("weight %q: err = %v, want invalid input", raw, err)
		}
	}
	if _, err := ParseGoal("bulk"); err == nil {
		t.Fatalf("expected unknown goal rejected")
	}
}

func TestFormFromProfile(t *testing.T) {
	t.Parallel()
	form := FormFromProfile(Profile{Goal: GoalGain, Gender: GenderMale, HeightFeet: 6, HeightInches: 0, WeightLbs: 180, ActivityLevel: ActivityVery})
	want := QuestionnaireForm{Goal: "gain", Gender: "male", HeightFeet: "6", HeightInches: "0", WeightLbs: "180", ActivityLevel: "very"}
	if form != want {
		t.Fatalf("got %+v, want %+v", form, want)
	}
}
