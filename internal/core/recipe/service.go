// Package recipe 搜尋並整理食譜，並說明食譜的健康分數。
package recipe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"food-assistant/internal/core/spoonacular"
	"food-assistant/internal/core/upstream"
	"food-assistant/internal/pkg/common"
)

// RecipeSource 食譜資料來源
type RecipeSource interface {
	ComplexSearch(ctx context.Context, params spoonacular.SearchParams) ([]spoonacular.Candidate, error)
	Random(ctx context.Context) ([]spoonacular.Candidate, error)
	GetInformation(ctx context.Context, id int) (*spoonacular.RecipeInformation, error)
	GetNutritionWidget(ctx context.Context, id int) (*spoonacular.NutritionWidget, error)
}

// Service 食譜服務
type Service struct {
	source RecipeSource
	pick   func(n int) int
}

// Option 服務選項
type Option func(*Service)

// WithPicker 替換候選食譜的選擇方式
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) {
		s.pick = pick
	}
}

// NewService 創建食譜服務
func NewService(source RecipeSource, opts ...Option) *Service {
	s := &Service{source: source, pick: rand.Intn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// notFoundError 搜尋沒有結果，訊息帶上使用者的條件
type notFoundError struct {
	req Request
}

func (e *notFoundError) Error() string {
	return "no candidates"
}

func (e *notFoundError) message() string {
	var parts []string
	if e.req.Wish != "" {
		parts = append(parts, fmt.Sprintf("wish: '%s'", e.req.Wish))
	}
	if len(e.req.Ingredients) > 0 {
		parts = append(parts, "ingredients: "+strings.Join(e.req.Ingredients, ", "))
	}
	if len(parts) == 0 {
		return "😢 I couldn't find a random main course recipe right now. Please try again."
	}
	return fmt.Sprintf("😢 No main course recipes found matching %s.", strings.Join(parts, " and "))
}

// Find 依條件搜尋，隨機挑選一道並取得完整資料
func (s *Service) Find(ctx context.Context, req Request) (*Summary, error) {
	req = req.Normalize()

	var (
		candidates []spoonacular.Candidate
		err        error
	)
	if req.Empty() {
		candidates, err = s.source.Random(ctx)
	} else {
		candidates, err = s.source.ComplexSearch(ctx, spoonacular.SearchParams{
			Ingredients: req.Ingredients,
			Query:       req.Wish,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("搜尋食譜失敗: %w", err)
	}
	if len(candidates) == 0 {
		return nil, &upstream.Error{
			Kind:    upstream.KindNotFound,
			Service: spoonacular.ServiceName,
			Op:      "search recipes",
			Err:     &notFoundError{req: req},
		}
	}

	chosen := candidates[s.pick(len(candidates))]
	if chosen.ID <= 0 {
		return nil, upstream.NewError(upstream.KindMissingID, spoonacular.ServiceName, "search recipes", chosen.Title)
	}

	info, err := s.source.GetInformation(ctx, chosen.ID)
	if err != nil {
		return nil, fmt.Errorf("取得食譜詳細資料失敗: %w", err)
	}

	summary := &Summary{
		ID:             chosen.ID,
		Title:          firstNonEmpty(info.Title, chosen.Title, "Untitled Recipe"),
		Servings:       info.Servings,
		ReadyInMinutes: info.ReadyInMinutes,
		SourceURL:      info.SourceURL,
		Instructions:   CleanInstructions(info.Instructions),
	}
	for _, ing := range info.ExtendedIngredients {
		summary.Ingredients = append(summary.Ingredients, firstNonEmpty(ing.Original, "Unknown ingredient"))
	}

	common.LogDebug("食譜搜尋完成",
		zap.Int("recipe_id", summary.ID),
		zap.String("title", summary.Title),
		zap.Int("candidates", len(candidates)),
		zap.Bool("random", req.Empty()),
	)
	return summary, nil
}

// FindRecipe 回傳給使用者的文字與選中的食譜標題、ID，失敗時標題為空、ID 為 0
func (s *Service) FindRecipe(ctx context.Context, ingredients []string, wish string) (string, string, int) {
	summary, err := s.Find(ctx, Request{Ingredients: ingredients, Wish: wish})
	if err != nil {
		common.LogWarn("食譜搜尋失敗",
			zap.Strings("ingredients", ingredients),
			zap.String("wish", wish),
			zap.String("kind", string(upstream.KindOf(err))),
			zap.Error(err),
		)
		return ErrorMessage(err), "", 0
	}
	return summary.Render(), summary.Title, summary.ID
}

// ErrorMessage 將食譜相關錯誤轉為使用者訊息
func ErrorMessage(err error) string {
	var nf *notFoundError
	if errors.As(err, &nf) {
		return nf.message()
	}
	if upstream.KindOf(err) == upstream.KindMissingID {
		return "Error: Found recipes, but could not retrieve a valid recipe ID."
	}
	return upstream.Message(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = trim(v); v != "" {
			return v
		}
	}
	return ""
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
