package out

import (
	"context"
	"net/http"

	"caltrack/internal/modules/profile/domain"
	profileout "caltrack/internal/modules/profile/port/out"
	"caltrack/internal/platform/httpapi"
)

type HTTPProfileAPI struct {
	client *httpapi.Client
}

func NewHTTPProfileAPI(client *httpapi.Client) profileout.ProfileAPI {
	return &HTTPProfileAPI{client: client}
}

type profilePayload struct {
	FirstName           string         `json:"firstName,omitempty"`
	Goal                string         `json:"goal"`
	Gender              string         `json:"gender"`
	HeightFeet          httpapi.Number `json:"heightFeet"`
	HeightInches        httpapi.Number `json:"heightInches"`
	WeightLbs           httpapi.Number `json:"weightLbs"`
	ActivityLevel       string         `json:"activityLevel"`
	MaintenanceCalories httpapi.Number `json:"maintenanceCalories"`
	GainCalories        httpapi.Number `json:"gainCalories"`
	LossCalories        httpapi.Number `json:"lossCalories"`
}

type submitRequest struct {
	Goal          string  `json:"goal"`
	Gender        string  `json:"gender"`
	HeightFeet    int     `json:"heightFeet"`
	HeightInches  int     `json:"heightInches"`
	WeightLbs     float64 `json:"weightLbs"`
	ActivityLevel string  `json:"activityLevel"`
}

func (a *HTTPProfileAPI) Get(ctx context.Context) (domain.Profile, error) {
	var resp profilePayload
	if err := a.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/profile/get", Auth: true}, &resp); err != nil {
		return domain.Profile{}, err
	}
	return resp.toDomain(), nil
}

func (a *HTTPProfileAPI) Submit(ctx context.Context, q domain.Questionnaire) (domain.Profile, error) {
	var resp profilePayload
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/profile/submit",
		Body: submitRequest{
			Goal:          string(q.Goal),
			Gender:        string(q.Gender),
			HeightFeet:    q.HeightFeet,
			HeightInches:  q.HeightInches,
			WeightLbs:     q.WeightLbs,
			ActivityLevel: string(q.ActivityLevel),
		},
		Auth: true,
	}, &resp)
	if err != nil {
		return domain.Profile{}, err
	}
	return resp.toDomain(), nil
}

func (p profilePayload) toDomain() domain.Profile {
	return domain.Profile{
		FirstName:           p.FirstName,
		Goal:                domain.Goal(p.Goal),
		Gender:              domain.Gender(p.Gender),
		HeightFeet:          int(p.HeightFeet),
		HeightInches:        int(p.HeightInches),
		WeightLbs:           float64(p.WeightLbs),
		ActivityLevel:       domain.ActivityLevel(p.ActivityLevel),
		MaintenanceCalories: float64(p.MaintenanceCalories),
		GainCalories:        float64(p.GainCalories),
		LossCalories:        float64(p.LossCalories),
	}
}
