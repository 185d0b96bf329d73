package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	out "caltrack/internal/modules/diary/adapter/out"
	"caltrack/internal/modules/diary/domain"
	"caltrack/internal/platform/httpapi"
)

type tokens string

func (t tokens) Token(context.Context) (string, error) { return string(t), nil }

func newAPI(t *testing.T, h http.HandlerFunc) (*httptest.Server, func() *httpapi.Client) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, func() *httpapi.Client {
		return &httpapi.Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Tokens: tokens("T")}
	}
}

func TestGetRecomputesTotalAndKeepsMissingIDs(t *testing.T) {
	t.Parallel()
	_, client := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calories/date/2024-03-01", r.URL.Path)
		_, _ = w.Write([]byte(`{"totalCalories":999,"foodEntries":[
			{"id":7,"name":"Toast","calories":"120","protein":4,"servingWeightGrams":30},
			{"name":"Jam","calories":80,"protein":null,"servingWeightGrams":"n/a"}]}`))
	})
	api := out.NewHTTPRecordAPI(client())

	r, err := api.Get(context.Background(), "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 200.0, r.TotalCalories)
	require.Len(t, r.FoodEntries, 2)
	require.NotNil(t, r.FoodEntries[0].ID)
	assert.Equal(t, int64(7), *r.FoodEntries[0].ID)
	assert.Nil(t, r.FoodEntries[1].ID)
	assert.Equal(t, 0.0, r.FoodEntries[1].ServingWeightGrams)
}

func TestGetNotFoundAndEmptyBodyAreEmptyDays(t *testing.T) {
	t.Parallel()
	_, client := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calories/date/2024-01-01" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`null`))
	})
	api := out.NewHTTPRecordAPI(client())

	for _, date := range []domain.Date{"2024-01-01", "2024-01-02"} {
		r, err := api.Get(context.Background(), date)
		require.NoError(t, err)
		assert.Equal(t, 0.0, r.TotalCalories)
		assert.Empty(t, r.FoodEntries)
	}
}

func TestAddAndRemoveRoutes(t *testing.T) {
	t.Parallel()
	var sent map[string]any
	var deleted string
	_, client := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/calories/date/2024-03-01/addFood", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&sent)
			_, _ = w.Write([]byte(`{"id":42,"name":"Egg","calories":140,"protein":12,"servingWeightGrams":100}`))
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	})
	api := out.NewHTTPRecordAPI(client())
	ctx := context.Background()

	created, err := api.Add(ctx, "2024-03-01", domain.FoodEntry{Name: "Egg", Calories: 140, Protein: 12, ServingWeightGrams: 100})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Equal(t, int64(42), *created.ID)
	assert.Equal(t, "Egg", sent["name"])
	assert.Equal(t, 140.0, sent["calories"])
	_, hasID := sent["id"]
	assert.False(t, hasID)

	require.NoError(t, api.Remove(ctx, 42))
	assert.Equal(t, "/calories/food/42", deleted)
}
