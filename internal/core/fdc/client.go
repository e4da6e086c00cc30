// Package fdc 是 USDA FoodData Central 的查詢客戶端。
package fdc

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"food-assistant/internal/core/upstream"
	"food-assistant/internal/infrastructure/config"
)

// ServiceName 用於錯誤訊息與日誌
const ServiceName = "FoodData Central"

// DefaultDataTypes 只查詢這些資料類別
var DefaultDataTypes = []string{"Foundation", "SR Legacy", "Survey (FNDDS)"}

// SearchResult /foods/search 響應
type SearchResult struct {
	TotalHits int          `json:"totalHits"`
	Foods     []SearchFood `json:"foods"`
}

// SearchFood 搜尋結果中的食物
type SearchFood struct {
	FdcID       int    `json:"fdcId"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
}

// Food /food/{id} 響應
type Food struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []FoodNutrient `json:"foodNutrients"`
}

// FoodNutrient 單一營養素
type FoodNutrient struct {
	Amount   float64  `json:"amount"`
	Nutrient Nutrient `json:"nutrient"`
}

// Nutrient 營養素定義
type Nutrient struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// Client FoodData Central 客戶端
type Client struct {
	client    *resty.Client
	dataTypes []string
}

// NewClient 創建 FoodData Central 客戶端
func NewClient(cfg config.UpstreamConfig) *Client {
	dataTypes := cfg.DataTypes
	if len(dataTypes) == 0 {
		dataTypes = DefaultDataTypes
	}
	return &Client{
		client: upstream.NewClient(upstream.Options{
			Service:    ServiceName,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			RetryCount: cfg.RetryCount,
			AuthParam:  "api_key",
			APIKey:     cfg.APIKey,
		}),
		dataTypes: dataTypes,
	}
}

// SearchFoods 以關鍵字搜尋食物
func (c *Client) SearchFoods(ctx context.Context, query string, pageSize int) (*SearchResult, error) {
	resp, err := upstream.Get(ctx, c.client, ServiceName, "search foods", "/foods/search", nil, map[string]string{
		"query":    query,
		"pageSize": strconv.Itoa(pageSize),
		"dataType": strings.Join(c.dataTypes, ","),
	})
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := upstream.Decode(ServiceName, "search foods", resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFood 取得食物的完整營養資料
func (c *Client) GetFood(ctx context.Context, fdcID int) (*Food, error) {
	resp, err := upstream.Get(ctx, c.client, ServiceName, "get food", "/food/{fdcId}",
		map[string]string{"fdcId": strconv.Itoa(fdcID)}, nil)
	if err != nil {
		return nil, err
	}

	var food Food
	if err := upstream.Decode(ServiceName, "get food", resp, &food); err != nil {
		return nil, err
	}
	return &food, nil
}
