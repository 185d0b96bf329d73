package out_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	out "caltrack/internal/modules/food/adapter/out"
	"caltrack/internal/modules/food/domain"
	"caltrack/internal/platform/httpapi"
)

func TestNutritionIndexRoutesAndNormalization(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/search":
			assert.Equal(t, "peanut butter", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`[{"foodName":"peanut butter","tagId":"1"},{"foodName":"PB Bar","brandName":"Acme","nixItemId":"nix 9"}]`))
		case r.Method == http.MethodGet && r.URL.EscapedPath() == "/food/branded/nix%209/nutrients":
			_, _ = w.Write([]byte(`{"foodName":"PB Bar","brandName":"Acme","calories":"210","protein":"9 g","servingWeightGrams":null}`))
		case r.Method == http.MethodPost && r.URL.EscapedPath() == "/food/common/peanut%20butter/nutrients":
			_, _ = w.Write([]byte(`{"foodName":"peanut butter","calories":188,"protein":"oops","servingWeightGrams":32}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer ts.Close()
	index := out.NewHTTPNutritionIndex(&httpapi.Client{BaseURL: ts.URL, HTTPClient: ts.Client()})
	ctx := context.Background()

	results, err := index.Search(ctx, "peanut butter")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Branded())
	assert.True(t, results[1].Branded())

	branded, err := index.BrandedNutrients(ctx, "nix 9")
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedNutrient{Name: "PB Bar", BrandName: "Acme", Calories: 210, Protein: 9}, branded)

	common, err := index.CommonNutrients(ctx, "peanut butter")
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedNutrient{Name: "peanut butter", Calories: 188, ServingWeightGrams: 32}, common)
}
