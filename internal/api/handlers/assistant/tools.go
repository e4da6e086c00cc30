package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-assistant/internal/api/middleware"
	core "food-assistant/internal/core/assistant"
	"food-assistant/internal/pkg/common"
)

// 工具名稱
const (
	ToolSearchRecipe          = "search_recipe"
	ToolCheckHealthiness      = "check_healthiness"
	ToolExplainRecommendation = "explain_recommendation"
)

type toolFunc func(ctx context.Context, req *protocol.CallToolRequest) (core.Reply, error)

func (h *Handler) tools() map[string]toolFunc {
	return map[string]toolFunc{
		ToolSearchRecipe: func(ctx context.Context, req *protocol.CallToolRequest) (core.Reply, error) {
			var params SearchRecipeRequest
			if err := extractParams(req, &params); err != nil {
				return core.Reply{}, err
			}
			return h.assistant.SearchRecipe(ctx, params.SenderID, params.Ingredients, params.Wish), nil
		},
		ToolCheckHealthiness: func(ctx context.Context, req *protocol.CallToolRequest) (core.Reply, error) {
			var params CheckHealthRequest
			if err := extractParams(req, &params); err != nil {
				return core.Reply{}, err
			}
			return h.assistant.CheckHealthiness(ctx, params.FoodItem), nil
		},
		ToolExplainRecommendation: func(ctx context.Context, req *protocol.CallToolRequest) (core.Reply, error) {
			var params ExplainRequest
			if err := extractParams(req, &params); err != nil {
				return core.Reply{}, err
			}
			return h.assistant.ExplainRecommendation(ctx, params.SenderID, params.override()), nil
		},
	}
}

// extractParams 將 Arguments 轉為參數結構
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	data, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := common.ParseJSONBytes(data, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// CallTool POST /api/v1/tools/call
func (h *Handler) CallTool(c *gin.Context) {
	var req protocol.CallToolRequest
	if !h.bind(c, &req) {
		return
	}
	c.Set("tool", req.Name)

	tool, ok := h.tools()[req.Name]
	if !ok {
		common.LogWarn("Unknown tool", zap.String("tool", req.Name), zap.String("request_id", requestid.Get(c)))
		middleware.AbortWithError(c, common.ErrUnknownTool.WithErr(fmt.Errorf("unknown tool: %s", req.Name)), h.debug)
		return
	}

	reply, err := tool(c.Request.Context(), &req)
	if err != nil {
		middleware.AbortWithError(c, common.ErrInvalidRequest.WithErr(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: reply.Text,
			},
		},
	})
}
