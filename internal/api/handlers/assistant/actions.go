// Package assistant 提供對話層呼叫的 HTTP 動作端點。
package assistant

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-assistant/internal/api/middleware"
	core "food-assistant/internal/core/assistant"
	"food-assistant/internal/core/session"
	"food-assistant/internal/pkg/common"
)

// SearchRecipeRequest 找食譜請求
type SearchRecipeRequest struct {
	SenderID    string   `json:"sender_id"`
	Ingredients []string `json:"ingredients"`
	Wish        string   `json:"wish"`
}

// CheckHealthRequest 食物健康查詢請求
type CheckHealthRequest struct {
	FoodItem string `json:"food_item"`
}

// ExplainRequest 說明食譜請求，未帶食譜時使用對話上下文
type ExplainRequest struct {
	SenderID    string `json:"sender_id"`
	RecipeID    int    `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title"`
}

// ActionResponse 動作響應
type ActionResponse struct {
	RequestID string `json:"request_id"`
	core.Reply
}

// Handler 動作處理器
type Handler struct {
	assistant *core.Assistant
	debug     bool
}

// NewHandler 創建動作處理器
func NewHandler(a *core.Assistant, debug bool) *Handler {
	return &Handler{assistant: a, debug: debug}
}

func (h *Handler) bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		common.LogWarn("請求格式錯誤",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
		middleware.AbortWithError(c, common.ErrInvalidRequest.WithErr(err), h.debug)
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, reply core.Reply) {
	c.JSON(http.StatusOK, ActionResponse{RequestID: requestid.Get(c), Reply: reply})
}

// SearchRecipe POST /api/v1/assistant/recipes/search
func (h *Handler) SearchRecipe(c *gin.Context) {
	var req SearchRecipeRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, h.assistant.SearchRecipe(c.Request.Context(), req.SenderID, req.Ingredients, req.Wish))
}

// CheckHealth POST /api/v1/assistant/foods/health
func (h *Handler) CheckHealth(c *gin.Context) {
	var req CheckHealthRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, h.assistant.CheckHealthiness(c.Request.Context(), req.FoodItem))
}

// ExplainRecommendation POST /api/v1/assistant/recipes/explain
func (h *Handler) ExplainRecommendation(c *gin.Context) {
	var req ExplainRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, h.assistant.ExplainRecommendation(c.Request.Context(), req.SenderID, req.override()))
}

// ForgetSession DELETE /api/v1/assistant/sessions/:sender_id
func (h *Handler) ForgetSession(c *gin.Context) {
	senderID := strings.TrimSpace(c.Param("sender_id"))
	if err := h.assistant.Forget(c.Request.Context(), senderID); err != nil {
		common.LogError("清除對話上下文失敗", zap.String("sender_id", senderID), zap.Error(err))
		middleware.AbortWithError(c, common.ErrServiceUnavailable.WithErr(err), h.debug)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r ExplainRequest) override() *session.Context {
	if r.RecipeID <= 0 {
		return nil
	}
	return &session.Context{LastRecipeTitle: strings.TrimSpace(r.RecipeTitle), LastRecipeID: r.RecipeID}
}
