package fdc

import (
	"context"
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
	return NewClient(config.UpstreamConfig{APIKey: "fdc-key", BaseURL: srv.URL})
}

func TestSearchFoodsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "broccoli", q.Get("query"))
		assert.Equal(t, "1", q.Get("pageSize"))
		assert.Equal(t, "Foundation,SR Legacy,Survey (FNDDS)", q.Get("dataType"))
		assert.Equal(t, "fdc-key", q.Get("api_key"))
		_, _ = w.Write([]byte(`{"totalHits":1,"foods":[{"fdcId":170379,"description":"Broccoli, raw","dataType":"SR Legacy"}]}`))
	})

	result, err := client.SearchFoods(context.Background(), "broccoli", 1)
	require.NoError(t, err)
	require.Len(t, result.Foods, 1)
	assert.Equal(t, 170379, result.Foods[0].FdcID)
	assert.Equal(t, "Broccoli, raw", result.Foods[0].Description)
}

func TestGetFoodDecodesNutrients(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/170379", r.URL.Path)
		assert.Equal(t, "fdc-key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{
			"fdcId": 170379,
			"description": "Broccoli, raw",
			"foodNutrients": [
				{"amount": 2.82, "nutrient": {"id": 1003, "number": "203", "name": "Protein", "unitName": "g"}},
				{"amount": 1.7, "nutrient": {"id": 2000, "name": "Sugars, total including NLEA", "unitName": "G"}},
				{"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}}
			]
		}`))
	})

	food, err := client.GetFood(context.Background(), 170379)
	require.NoError(t, err)
	assert.Equal(t, "Broccoli, raw", food.Description)
	require.Len(t, food.FoodNutrients, 3)
	assert.Equal(t, 2.82, food.FoodNutrients[0].Amount)
	assert.Equal(t, "G", food.FoodNutrients[1].Nutrient.UnitName)
	assert.Zero(t, food.FoodNutrients[2].Amount)
}

func TestGetFoodErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    upstream.Kind
	}{
		{"forbidden", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) }, upstream.KindAuthenticationFailed},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }, upstream.KindQuotaExceeded},
		{"missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }, upstream.KindNotFound},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }, upstream.KindMalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.GetFood(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tc.want, upstream.KindOf(err))
		})
	}
}
