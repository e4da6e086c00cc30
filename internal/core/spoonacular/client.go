// Package spoonacular 是 Spoonacular 食譜 API 的查詢客戶端。
package spoonacular

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"food-assistant/internal/core/upstream"
	"food-assistant/internal/infrastructure/config"
)

// ServiceName 用於錯誤訊息與日誌
const ServiceName = "Spoonacular"

const (
	defaultMealType    = "main course"
	defaultSearchLimit = 10
)

// SearchParams complexSearch 參數
type SearchParams struct {
	Ingredients []string
	Query       string
}

// Client Spoonacular 客戶端
type Client struct {
	client      *resty.Client
	mealType    string
	searchLimit int
}

// NewClient 創建 Spoonacular 客戶端
func NewClient(cfg config.SpoonacularConfig) *Client {
	mealType := cfg.MealType
	if mealType == "" {
		mealType = defaultMealType
	}
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return &Client{
		client: upstream.NewClient(upstream.Options{
			Service:    ServiceName,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			RetryCount: cfg.RetryCount,
			AuthParam:  "apiKey",
			APIKey:     cfg.APIKey,
		}),
		mealType:    mealType,
		searchLimit: limit,
	}
}

// ComplexSearch 依食材與關鍵字搜尋，直接附帶食譜資訊
func (c *Client) ComplexSearch(ctx context.Context, params SearchParams) ([]Candidate, error) {
	query := map[string]string{
		"type":                 c.mealType,
		"addRecipeInformation": "true",
		"fillIngredients":      "true",
		"instructionsRequired": "true",
		"number":               strconv.Itoa(c.searchLimit),
	}
	if len(params.Ingredients) > 0 {
		query["includeIngredients"] = strings.Join(params.Ingredients, ",")
	}
	if params.Query != "" {
		query["query"] = params.Query
	}
	return c.candidates(ctx, "complex search", "/recipes/complexSearch", query)
}

// Random 隨機取得一道食譜
func (c *Client) Random(ctx context.Context) ([]Candidate, error) {
	return c.candidates(ctx, "random recipe", "/recipes/random", map[string]string{
		"tags":   c.mealType,
		"number": "1",
	})
}

func (c *Client) candidates(ctx context.Context, op, path string, query map[string]string) ([]Candidate, error) {
	resp, err := upstream.Get(ctx, c.client, ServiceName, op, path, nil, query)
	if err != nil {
		return nil, err
	}

	list, _, err := DecodeCandidates(resp.Body())
	if err != nil {
		return nil, &upstream.Error{Kind: upstream.KindMalformedResponse, Service: ServiceName, Op: op, Err: err}
	}
	return list, nil
}

// GetInformation 取得食譜詳細資料，不含營養資訊
func (c *Client) GetInformation(ctx context.Context, id int) (*RecipeInformation, error) {
	const op = "recipe information"
	resp, err := upstream.Get(ctx, c.client, ServiceName, op, "/recipes/{id}/information",
		map[string]string{"id": strconv.Itoa(id)},
		map[string]string{"includeNutrition": "false"})
	if err != nil {
		return nil, err
	}

	var info RecipeInformation
	if err := upstream.Decode(ServiceName, op, resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetNutritionWidget 取得每份的熱量與三大營養素
func (c *Client) GetNutritionWidget(ctx context.Context, id int) (*NutritionWidget, error) {
	const op = "nutrition widget"
	resp, err := upstream.Get(ctx, c.client, ServiceName, op, "/recipes/{id}/nutritionWidget.json",
		map[string]string{"id": strconv.Itoa(id)}, nil)
	if err != nil {
		return nil, err
	}

	var widget NutritionWidget
	if err := upstream.Decode(ServiceName, op, resp, &widget); err != nil {
		return nil, err
	}
	return &widget, nil
}
