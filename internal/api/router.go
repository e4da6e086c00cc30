package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	assistantHandler "food-assistant/internal/api/handlers/assistant"
	"food-assistant/internal/api/handlers/health"
	"food-assistant/internal/api/middleware"
	"food-assistant/internal/core/assistant"
	"food-assistant/internal/core/fdc"
	"food-assistant/internal/core/nutrition"
	"food-assistant/internal/core/recipe"
	"food-assistant/internal/core/session"
	"food-assistant/internal/core/spoonacular"
	"food-assistant/internal/infrastructure/config"
	"food-assistant/internal/pkg/common"
)

const (
	searchRecipePath = "/api/v1/assistant/recipes/search"
	toolCallPath     = "/api/v1/tools/call"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store session.Store) (*gin.Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	// 找食譜的請求可能走隨機路徑，相同參數重送時不去重
	router.Use(middleware.NewDeduplicator(cfg.DedupWindow, searchRecipePath, toolCallPath).Middleware())
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// 設置配置與對話儲存
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Set("session_store", store)
		c.Next()
	})

	fdcConfigured := !config.IsPlaceholderKey(cfg.FDC.APIKey)
	spoonacularConfigured := !config.IsPlaceholderKey(cfg.Spoonacular.APIKey)

	common.LogInfo("Initializing services",
		zap.Bool("fdc_configured", fdcConfigured),
		zap.Bool("spoonacular_configured", spoonacularConfigured),
		zap.String("session_driver", cfg.Session.Driver),
		zap.Duration("timeout", cfg.RequestTimeout),
	)

	nutritionSvc := nutrition.NewService(fdc.NewClient(cfg.FDC))
	recipeSvc := recipe.NewService(spoonacular.NewClient(cfg.Spoonacular))
	actions := assistant.New(recipeSvc, nutritionSvc, store, assistant.Options{
		SpoonacularConfigured: spoonacularConfigured,
		FDCConfigured:         fdcConfigured,
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	handler := assistantHandler.NewHandler(actions, cfg.App.Debug)

	// API 路由組
	api := router.Group("/api/v1")
	{
		assistantGroup := api.Group("/assistant")
		{
			assistantGroup.POST("/recipes/search", handler.SearchRecipe)
			assistantGroup.POST("/recipes/explain", handler.ExplainRecommendation)
			assistantGroup.POST("/foods/health", handler.CheckHealth)
			assistantGroup.DELETE("/sessions/:sender_id", handler.ForgetSession)
		}

		api.POST("/tools/call", handler.CallTool)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.MaxBodyBytes),
	)

	return router, nil
}
