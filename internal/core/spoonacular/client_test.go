package spoonacular

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-assistant/internal/core/upstream"
	"food-assistant/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.SpoonacularConfig{
		UpstreamConfig: config.UpstreamConfig{APIKey: "sp-key", BaseURL: srv.URL},
	})
}

func TestDecodeCandidatesShapes(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		shape Shape
		ids   []int
	}{
		{"complex search", `{"results":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"offset":0,"totalResults":2}`, ShapeResults, []int{1, 2}},
		{"random", `{"recipes":[{"id":9,"title":"R"}]}`, ShapeRecipes, []int{9}},
		{"find by ingredients", `[{"id":5,"title":"F","usedIngredientCount":2}]`, ShapeArray, []int{5}},
		{"empty results", `{"results":[]}`, ShapeResults, nil},
		{"null recipes", `{"recipes":null}`, ShapeRecipes, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, shape, err := DecodeCandidates([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.shape, shape)
			var ids []int
			for _, c := range list {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestDecodeCandidatesRejectsUnknownShapes(t *testing.T) {
	for _, body := range []string{``, `{"items":[]}`, `{"results":{"id":1}}`, `"text"`, `<html>`} {
		_, _, err := DecodeCandidates([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestComplexSearchQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/complexSearch", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "chicken,broccoli", q.Get("includeIngredients"))
		assert.Equal(t, "spicy", q.Get("query"))
		assert.Equal(t, "main course", q.Get("type"))
		assert.Equal(t, "true", q.Get("addRecipeInformation"))
		assert.Equal(t, "true", q.Get("fillIngredients"))
		assert.Equal(t, "true", q.Get("instructionsRequired"))
		assert.Equal(t, "10", q.Get("number"))
		assert.Equal(t, "sp-key", q.Get("apiKey"))
		_, _ = w.Write([]byte(`{"results":[{"id":42,"title":"Spicy Chicken"}]}`))
	})

	list, err := client.ComplexSearch(context.Background(), SearchParams{
		Ingredients: []string{"chicken", "broccoli"},
		Query:       "spicy",
	})
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{ID: 42, Title: "Spicy Chicken"}}, list)
}

func TestComplexSearchOmitsEmptyFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("query"))
		assert.Equal(t, "rice", q.Get("includeIngredients"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	list, err := client.ComplexSearch(context.Background(), SearchParams{Ingredients: []string{"rice"}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRandomQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/random", r.URL.Path)
		assert.Equal(t, "main course", r.URL.Query().Get("tags"))
		assert.Equal(t, "1", r.URL.Query().Get("number"))
		_, _ = w.Write([]byte(`{"recipes":[{"id":7,"title":"Surprise"}]}`))
	})

	list, err := client.Random(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].ID)
}

func TestUnknownShapeIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.Random(context.Background())
	assert.Equal(t, upstream.KindMalformedResponse, upstream.KindOf(err))
}

func TestGetInformation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/42/information", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("includeNutrition"))
		_, _ = w.Write([]byte(`{
			"id": 42,
			"title": "Spicy Chicken",
			"servings": 4,
			"readyInMinutes": "45",
			"sourceUrl": "https://example.com/spicy",
			"extendedIngredients": [{"original": "1 lb chicken"}, {"original": "2 cups broccoli"}],
			"instructions": "<ol><li>Cook.</li></ol>",
			"healthScore": 61.5
		}`))
	})

	info, err := client.GetInformation(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "4", info.Servings.String())
	assert.Equal(t, "45", info.ReadyInMinutes.String())
	require.NotNil(t, info.HealthScore)
	assert.Equal(t, 61.5, *info.HealthScore)
	assert.Len(t, info.ExtendedIngredients, 2)
}

func TestGetNutritionWidget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/42/nutritionWidget.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"calories":"584","carbs":"84g","fat":"20g"}`))
	})

	widget, err := client.GetNutritionWidget(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "584", widget.Calories.String())
	assert.Equal(t, "84g", widget.Carbs.String())
	assert.Equal(t, "N/A", widget.Protein.String())
}

func TestQuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"status":"failure","code":402,"message":"Your daily points limit of 150 has been reached."}`))
	})

	_, err := client.ComplexSearch(context.Background(), SearchParams{Query: "soup"})
	assert.Equal(t, upstream.KindQuotaExceeded, upstream.KindOf(err))
	assert.Contains(t, upstream.Message(err), "daily points limit")
}

func TestValueJSON(t *testing.T) {
	var v struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":4,"b":"2-3","c":null}`), &v))
	assert.Equal(t, "4", v.A.String())
	assert.Equal(t, "2-3", v.B.String())
	assert.False(t, v.C.Known())
	assert.Equal(t, "N/A", v.D.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":4,"b":"2-3","c":null,"d":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
