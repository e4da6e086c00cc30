// Package assistant 把對話層傳來的參數交給營養與食譜服務，並保存對話上下文。
package assistant

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"food-assistant/internal/core/session"
	"food-assistant/internal/pkg/common"
)

const (
	msgSpoonacularNotConfigured = "The SPOONACULAR_API_KEY is not configured. Please set it to use this feature."
	msgFDCNotConfigured         = "The FDC_API_KEY is not configured. Please set it to use this feature."
	msgAskFoodItem              = "Which food item do you want to know about?"
	msgNoRecipeInContext        = "I don't have a recipe in context. Could you ask for a recipe first?"
)

// RecipeFinder 找食譜與說明健康分數
type RecipeFinder interface {
	FindRecipe(ctx context.Context, ingredients []string, wish string) (string, string, int)
	ExplainHealth(ctx context.Context, recipeID int, title string) string
}

// HealthChecker 判斷食物是否健康
type HealthChecker interface {
	CheckHealthiness(ctx context.Context, ingredient string) string
}

// Reply 回覆給對話層的內容
type Reply struct {
	Text        string `json:"text"`
	Speech      string `json:"speech"`
	RecipeTitle string `json:"recipe_title,omitempty"`
	RecipeID    int    `json:"recipe_id,omitempty"`
}

func newReply(text string) Reply {
	return Reply{Text: text, Speech: SpeechText(text)}
}

// Options 金鑰是否已設定
type Options struct {
	SpoonacularConfigured bool
	FDCConfigured         bool
}

// Assistant 對話動作
type Assistant struct {
	recipes  RecipeFinder
	health   HealthChecker
	sessions session.Store
	opts     Options
}

// New 創建對話動作
func New(recipes RecipeFinder, health HealthChecker, sessions session.Store, opts Options) *Assistant {
	return &Assistant{
		recipes:  recipes,
		health:   health,
		sessions: sessions,
		opts:     opts,
	}
}

// SearchRecipe 找食譜，成功時把標題與 ID 存入對話上下文
func (a *Assistant) SearchRecipe(ctx context.Context, senderID string, ingredients []string, wish string) Reply {
	if !a.opts.SpoonacularConfigured {
		return newReply(msgSpoonacularNotConfigured)
	}

	text, title, id := a.recipes.FindRecipe(ctx, common.SplitList(ingredients...), strings.TrimSpace(wish))
	reply := newReply(text)
	if title == "" || id <= 0 {
		return reply
	}

	reply.RecipeTitle = title
	reply.RecipeID = id

	if senderID != "" && a.sessions != nil {
		err := a.sessions.Set(ctx, senderID, &session.Context{LastRecipeTitle: title, LastRecipeID: id})
		if err != nil {
			common.LogWarn("保存對話上下文失敗",
				zap.String("sender_id", senderID),
				zap.Int("recipe_id", id),
				zap.Error(err),
			)
		}
	}
	return reply
}

// CheckHealthiness 判斷食物是否健康
func (a *Assistant) CheckHealthiness(ctx context.Context, foodItem string) Reply {
	foodItem = strings.TrimSpace(foodItem)
	if foodItem == "" {
		return newReply(msgAskFoodItem)
	}
	if !a.opts.FDCConfigured {
		return newReply(msgFDCNotConfigured)
	}
	return newReply(a.health.CheckHealthiness(ctx, foodItem))
}

// ExplainRecommendation 說明上一道食譜的健康分數，override 帶有食譜 ID 時優先使用。
// 標題為空時由食譜資訊補上。
func (a *Assistant) ExplainRecommendation(ctx context.Context, senderID string, override *session.Context) Reply {
	recipe := override
	if !recipe.HasRecipe() {
		recipe = a.lookup(ctx, senderID)
	}
	if !recipe.HasRecipe() {
		return newReply(msgNoRecipeInContext)
	}
	if !a.opts.SpoonacularConfigured {
		return newReply(msgSpoonacularNotConfigured)
	}

	title := strings.TrimSpace(recipe.LastRecipeTitle)
	reply := newReply(a.recipes.ExplainHealth(ctx, recipe.LastRecipeID, title))
	reply.RecipeTitle = title
	reply.RecipeID = recipe.LastRecipeID
	return reply
}

// Forget 清除對話上下文
func (a *Assistant) Forget(ctx context.Context, senderID string) error {
	if a.sessions == nil || senderID == "" {
		return nil
	}
	return a.sessions.Delete(ctx, senderID)
}

func (a *Assistant) lookup(ctx context.Context, senderID string) *session.Context {
	if senderID == "" || a.sessions == nil {
		return nil
	}
	stored, err := a.sessions.Get(ctx, senderID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			common.LogWarn("讀取對話上下文失敗", zap.String("sender_id", senderID), zap.Error(err))
		}
		return nil
	}
	return stored
}
