package out

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"caltrack/internal/modules/diary/domain"
	diaryout "caltrack/internal/modules/diary/port/out"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/httpapi"
)

type HTTPRecordAPI struct {
	client *httpapi.Client
}

func NewHTTPRecordAPI(client *httpapi.Client) diaryout.RecordAPI {
	return &HTTPRecordAPI{client: client}
}

type entryPayload struct {
	ID                 *int64         `json:"id,omitempty"`
	Name               string         `json:"name"`
	Calories           httpapi.Number `json:"calories"`
	Protein            httpapi.Number `json:"protein"`
	ServingWeightGrams httpapi.Number `json:"servingWeightGrams"`
}

type recordPayload struct {
	TotalCalories httpapi.Number `json:"totalCalories"`
	FoodEntries   []entryPayload `json:"foodEntries"`
}

// Get treats a 404 and an empty body alike: the day has no entries yet.
// The backend total is not trusted; it is recomputed from the entries.
func (a *HTTPRecordAPI) Get(ctx context.Context, date domain.Date) (domain.DailyRecord, error) {
	var resp recordPayload
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/calories/date/" + url.PathEscape(date.String()),
		Auth:   true,
	}, &resp)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.NewDailyRecord(nil), nil
	}
	if err != nil {
		return domain.DailyRecord{}, err
	}
	entries := make([]domain.FoodEntry, 0, len(resp.FoodEntries))
	for _, e := range resp.FoodEntries {
		entries = append(entries, e.toDomain())
	}
	return domain.NewDailyRecord(entries), nil
}

func (a *HTTPRecordAPI) Add(ctx context.Context, date domain.Date, entry domain.FoodEntry) (domain.FoodEntry, error) {
	var resp entryPayload
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/calories/date/" + url.PathEscape(date.String()) + "/addFood",
		Body: entryPayload{
			Name:               entry.Name,
			Calories:           httpapi.Number(entry.Calories),
			Protein:            httpapi.Number(entry.Protein),
			ServingWeightGrams: httpapi.Number(entry.ServingWeightGrams),
		},
		Auth: true,
	}, &resp)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	return resp.toDomain(), nil
}

func (a *HTTPRecordAPI) Remove(ctx context.Context, id int64) error {
	return a.client.Do(ctx, httpapi.Request{
		Method: http.MethodDelete,
		Path:   "/calories/food/" + strconv.FormatInt(id, 10),
		Auth:   true,
	}, nil)
}

func (e entryPayload) toDomain() domain.FoodEntry {
	return domain.FoodEntry{
		ID:                 e.ID,
		Name:               e.Name,
		Calories:           float64(e.Calories),
		Protein:            float64(e.Protein),
		ServingWeightGrams: float64(e.ServingWeightGrams),
	}
}
