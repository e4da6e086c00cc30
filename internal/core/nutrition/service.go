// Package nutrition 判斷食物是否健康並整理營養素摘要。
package nutrition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"food-assistant/internal/core/fdc"
	"food-assistant/internal/core/upstream"
	"food-assistant/internal/pkg/common"
)

var errMissingFdcID = errors.New("top search result has no fdcId")

// FoodSource 食物資料來源
type FoodSource interface {
	SearchFoods(ctx context.Context, query string, pageSize int) (*fdc.SearchResult, error)
	GetFood(ctx context.Context, fdcID int) (*fdc.Food, error)
}

// Service 營養分析服務
type Service struct {
	source FoodSource
}

// NewService 創建營養分析服務
func NewService(source FoodSource) *Service {
	return &Service{source: source}
}

// Lookup 搜尋食物並取得完整營養資料
func (s *Service) Lookup(ctx context.Context, ingredient string) (FoodLookupResult, int, error) {
	result, err := s.source.SearchFoods(ctx, ingredient, 1)
	if err != nil {
		return FoodLookupResult{}, 0, fmt.Errorf("搜尋食物失敗: %w", err)
	}
	if len(result.Foods) == 0 {
		return FoodLookupResult{}, 0, upstream.NewError(upstream.KindNotFound, fdc.ServiceName, "search foods", ingredient)
	}

	top := result.Foods[0]
	if top.FdcID <= 0 {
		return FoodLookupResult{}, 0, &upstream.Error{
			Kind:    upstream.KindMalformedResponse,
			Service: fdc.ServiceName,
			Op:      "search foods",
			Err:     errMissingFdcID,
		}
	}

	food, err := s.source.GetFood(ctx, top.FdcID)
	if err != nil {
		return FoodLookupResult{}, 0, fmt.Errorf("取得食物詳細資料失敗: %w", err)
	}

	lookup := FoodLookupResult{Description: food.Description}
	for _, n := range food.FoodNutrients {
		if n.Nutrient.Name == "" {
			continue
		}
		lookup.Nutrients = append(lookup.Nutrients, NutrientEntry{
			Name:   n.Nutrient.Name,
			Amount: n.Amount,
			Unit:   n.Nutrient.UnitName,
		})
	}
	return lookup, top.FdcID, nil
}

// Analyze 分析食物並回傳結構化報告
func (s *Service) Analyze(ctx context.Context, ingredient string) (*Report, error) {
	ingredient = strings.TrimSpace(ingredient)
	lookup, fdcID, err := s.Lookup(ctx, ingredient)
	if err != nil {
		return nil, err
	}

	breakdown, verdict := Classify(lookup)

	name := lookup.Description
	if name == "" {
		name = ingredient
	}

	common.LogDebug("食物分析完成",
		zap.String("ingredient", ingredient),
		zap.Int("fdc_id", fdcID),
		zap.Bool("healthy", verdict.Healthy),
		zap.String("reason", verdict.Reason.String()),
	)

	return &Report{
		FoodName:  displayName(name),
		FdcID:     fdcID,
		Verdict:   verdict,
		Breakdown: breakdown,
	}, nil
}

// CheckHealthiness 分析食物並回傳給使用者的文字，錯誤也轉為文字
func (s *Service) CheckHealthiness(ctx context.Context, ingredient string) string {
	report, err := s.Analyze(ctx, ingredient)
	if err != nil {
		common.LogWarn("食物分析失敗",
			zap.String("ingredient", ingredient),
			zap.String("kind", string(upstream.KindOf(err))),
			zap.Error(err),
		)
		return ErrorMessage(ingredient, err)
	}
	return report.Render()
}

// ErrorMessage 將分析錯誤轉為使用者訊息
func ErrorMessage(ingredient string, err error) string {
	switch {
	case upstream.KindOf(err) == upstream.KindNotFound:
		return fmt.Sprintf("Sorry, I couldn't find any information for '%s'.", ingredient)
	case errors.Is(err, errMissingFdcID):
		return fmt.Sprintf("Could not retrieve a valid ID for '%s'.", ingredient)
	default:
		return upstream.Message(err)
	}
}
